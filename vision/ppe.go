package vision

import (
	"image"
	"log"
	"math"

	"gocv.io/x/gocv"
)

// hsvRange is an inclusive HSV color band (OpenCV hue scale, 0-180).
type hsvRange struct {
	lower gocv.Scalar
	upper gocv.Scalar
}

// Helmet colors: yellow, white, orange, red.
var helmetRanges = []hsvRange{
	{gocv.NewScalar(22, 150, 150, 0), gocv.NewScalar(28, 255, 255, 0)},
	{gocv.NewScalar(0, 0, 220, 0), gocv.NewScalar(180, 25, 255, 0)},
	{gocv.NewScalar(12, 150, 150, 0), gocv.NewScalar(18, 255, 255, 0)},
	{gocv.NewScalar(0, 150, 150, 0), gocv.NewScalar(8, 255, 255, 0)},
}

// High-visibility vest colors: orange, yellow, green.
var vestRanges = []hsvRange{
	{gocv.NewScalar(12, 150, 150, 0), gocv.NewScalar(22, 255, 255, 0)},
	{gocv.NewScalar(22, 150, 150, 0), gocv.NewScalar(32, 255, 255, 0)},
	{gocv.NewScalar(45, 150, 150, 0), gocv.NewScalar(75, 255, 255, 0)},
}

const (
	minHelmetContourArea = 800
	minHelmetCircularity = 0.3
	minVestContourArea   = 1500
	minVestAspect        = 0.5
	maxVestAspect        = 2.0
)

// PPEDetector checks person regions for protective equipment using
// color segmentation and contour shape filters.
type PPEDetector struct{}

// NewPPEDetector returns a PPE detector.
func NewPPEDetector() *PPEDetector {
	return &PPEDetector{}
}

// DetectHelmet reports whether a helmet-colored, roughly circular blob
// appears in the head zone. With a person region the head zone is the
// upper quarter of that box; without one it is the top 30% of the frame.
// Any internal failure reports false, never a panic.
func (d *PPEDetector) DetectHelmet(frame gocv.Mat, person *Box) (detected bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ppe: helmet detection recovered from panic: %v", r)
			detected = false
		}
	}()

	if frame.Empty() {
		return false
	}

	var zone image.Rectangle
	if person != nil {
		r := person.Rect()
		zone = image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+r.Dy()/4)
	} else {
		zone = image.Rect(0, 0, frame.Cols(), frame.Rows()*30/100)
	}

	return scanZone(frame, zone, helmetRanges, func(contour gocv.PointVector, area float64) bool {
		perimeter := gocv.ArcLength(contour, true)
		if area < minHelmetContourArea || perimeter <= 0 {
			return false
		}
		circularity := 4 * math.Pi * area / (perimeter * perimeter)
		return circularity > minHelmetCircularity
	})
}

// DetectVest reports whether a high-visibility colored blob with a
// torso-like aspect ratio appears in the torso zone: the middle half of
// the person region, or of the frame when no region is given.
func (d *PPEDetector) DetectVest(frame gocv.Mat, person *Box) (detected bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ppe: vest detection recovered from panic: %v", r)
			detected = false
		}
	}()

	if frame.Empty() {
		return false
	}

	var zone image.Rectangle
	if person != nil {
		r := person.Rect()
		zone = image.Rect(r.Min.X, r.Min.Y+r.Dy()/4, r.Max.X, r.Min.Y+r.Dy()*3/4)
	} else {
		zone = image.Rect(0, frame.Rows()/4, frame.Cols(), frame.Rows()*3/4)
	}

	return scanZone(frame, zone, vestRanges, func(contour gocv.PointVector, area float64) bool {
		if area < minVestContourArea {
			return false
		}
		rect := gocv.BoundingRect(contour)
		if rect.Dy() == 0 {
			return false
		}
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		return aspect > minVestAspect && aspect < maxVestAspect
	})
}

// scanZone masks the zone by the given color ranges and reports whether
// any contour passes the shape filter.
func scanZone(frame gocv.Mat, zone image.Rectangle, ranges []hsvRange, accept func(gocv.PointVector, float64) bool) bool {
	zone = clampRect(zone, image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if zone.Empty() {
		return false
	}

	roi := frame.Region(zone)
	region := roi.Clone()
	roi.Close()
	defer region.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.Zeros(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()

	for _, band := range ranges {
		bandMask := gocv.NewMat()
		gocv.InRangeWithScalar(hsv, band.lower, band.upper, &bandMask)
		gocv.BitwiseOr(mask, bandMask, &mask)
		bandMask.Close()
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if accept(contour, gocv.ContourArea(contour)) {
			return true
		}
	}
	return false
}
