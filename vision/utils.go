package vision

import "image"

// minInt returns the minimum of two int values
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// maxInt returns the maximum of two int values
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// clampRect clips r to bounds, returning an empty rectangle when nothing
// overlaps
func clampRect(r, bounds image.Rectangle) image.Rectangle {
	clipped := r.Intersect(bounds)
	if clipped.Empty() {
		return image.Rectangle{}
	}
	return clipped
}
