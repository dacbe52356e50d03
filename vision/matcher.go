package vision

import (
	"image"
	"log"
	"math"
	"time"

	"gocv.io/x/gocv"
)

// DefaultMatchTolerance is the maximum Euclidean distance at which an
// encoding is accepted as a match.
const DefaultMatchTolerance = 0.6

// Matcher recognizes faces in frames against the enrolled gallery.
type Matcher struct {
	detector  *FaceDetector
	encoder   *FaceEncoder
	gallery   *FeatureGallery
	tolerance float64
}

// NewMatcher wires a detector, encoder and gallery together. A tolerance
// of zero or less falls back to DefaultMatchTolerance.
func NewMatcher(detector *FaceDetector, encoder *FaceEncoder, gallery *FeatureGallery, tolerance float64) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultMatchTolerance
	}
	return &Matcher{
		detector:  detector,
		encoder:   encoder,
		gallery:   gallery,
		tolerance: tolerance,
	}
}

// RecognizeFaces detects every face in frame and matches it against the
// gallery. Faces that cannot be encoded or matched come back as unknown
// with confidence 0. Any internal failure yields nil, never a panic.
func (m *Matcher) RecognizeFaces(frame gocv.Mat) (results []MatchResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("matcher: recognition recovered from panic: %v", r)
			results = nil
		}
	}()

	if frame.Empty() {
		return nil
	}

	now := time.Now()
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())

	for _, rect := range m.detector.DetectFaces(frame) {
		result := MatchResult{
			EmployeeID: UnknownEmployeeID,
			Name:       UnknownName,
			Confidence: 0,
			Box:        BoxFromRect(rect),
			Timestamp:  now,
		}

		region := clampRect(rect, bounds)
		if m.encoder != nil && m.encoder.Enabled && !region.Empty() {
			face := frame.Region(region)
			encoding := m.encoder.ExtractEncoding(face)
			face.Close()

			if len(encoding) > 0 {
				id, name, confidence := m.MatchEncoding(encoding)
				result.EmployeeID = id
				result.Name = name
				result.Confidence = confidence
			}
		}

		results = append(results, result)
	}
	return results
}

// MatchEncoding finds the nearest gallery entry by Euclidean distance.
// Entries beyond the tolerance are rejected; ties keep the earliest
// enrolled entry. Confidence is 1 minus the winning distance.
func (m *Matcher) MatchEncoding(probe []float32) (employeeID, name string, confidence float64) {
	if len(probe) == 0 {
		return UnknownEmployeeID, UnknownName, 0
	}

	snapshot := m.gallery.Snapshot()
	best := math.MaxFloat64
	bestIdx := -1
	for i, entry := range snapshot {
		d := euclideanDistance(probe, entry.Encoding)
		if d < best {
			best = d
			bestIdx = i
		}
	}

	if bestIdx < 0 || best > m.tolerance {
		return UnknownEmployeeID, UnknownName, 0
	}

	entry := snapshot[bestIdx]
	return entry.EmployeeID, entry.Name, 1 - best
}

func euclideanDistance(a, b []float32) float64 {
	n := minInt(len(a), len(b))
	if n == 0 || len(a) != len(b) {
		return math.MaxFloat64
	}

	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
