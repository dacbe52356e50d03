package vision

import (
	"image"
	"log"
	"os"

	"gocv.io/x/gocv"
)

// Minimum contour area for the geometric person fallback.
const minPersonContourArea = 5000

// PersonLocalizer finds person regions in a frame. The primary path is a
// full-body Haar cascade; when it finds nothing (or is unavailable) an
// edge/contour heuristic takes over.
type PersonLocalizer struct {
	cascade gocv.CascadeClassifier
	Enabled bool
}

// NewPersonLocalizer loads the body cascade from cascadePath. A missing
// file disables the primary path; the contour fallback still runs.
func NewPersonLocalizer(cascadePath string) *PersonLocalizer {
	if cascadePath == "" {
		log.Println("persons: cascade path is empty, using contour fallback only")
		return &PersonLocalizer{Enabled: false}
	}

	if _, err := os.Stat(cascadePath); os.IsNotExist(err) {
		log.Printf("persons: cascade file does not exist: %s", cascadePath)
		return &PersonLocalizer{Enabled: false}
	}

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cascadePath) {
		log.Printf("persons: failed to load cascade from %s", cascadePath)
		cascade.Close()
		return &PersonLocalizer{Enabled: false}
	}

	log.Printf("persons: loaded cascade from %s", cascadePath)
	return &PersonLocalizer{cascade: cascade, Enabled: true}
}

// Close releases the cascade.
func (p *PersonLocalizer) Close() {
	if p != nil && p.Enabled {
		p.cascade.Close()
		p.Enabled = false
	}
}

// Detect returns person candidates from the frame itself: the cascade
// first, the contour heuristic when the cascade yields nothing. Any
// internal failure yields an empty result, never a panic.
func (p *PersonLocalizer) Detect(frame gocv.Mat) (detections []Detection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("persons: detection recovered from panic: %v", r)
			detections = nil
		}
	}()

	if frame.Empty() {
		return nil
	}

	if p != nil && p.Enabled {
		gray := gocv.NewMat()
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
		rects := p.cascade.DetectMultiScaleWithParams(
			gray, 1.1, 3, 0,
			image.Pt(50, 100), image.Pt(0, 0),
		)
		gray.Close()

		if len(rects) > 0 {
			for _, r := range rects {
				detections = append(detections, Detection{Box: BoxFromRect(r), Source: SourcePrimary})
			}
			return detections
		}
	}

	for _, r := range contourRegions(frame, minPersonContourArea) {
		detections = append(detections, Detection{Box: BoxFromRect(r), Source: SourceFallback})
	}
	return detections
}

// FromFace expands a face box into an estimated person region: the face
// sits roughly in the top quarter of a body about twice as wide.
func FromFace(face Box) Detection {
	x := maxInt(0, face.X-face.W/2)
	y := maxInt(0, face.Y-face.H/4)
	return Detection{
		Box:    Box{X: x, Y: y, W: face.W * 2, H: face.H * 4},
		Source: SourceFace,
	}
}

// Candidates merges frame-level detections with regions derived from
// matched faces. Frame detections come first so downstream consumers
// prefer directly observed persons.
func (p *PersonLocalizer) Candidates(frame gocv.Mat, faces []MatchResult) []Detection {
	detections := p.Detect(frame)
	for _, face := range faces {
		detections = append(detections, FromFace(face.Box))
	}
	return detections
}

// contourRegions finds large upright regions via edge detection. Shared
// by the person fallback and the degraded face path.
func contourRegions(frame gocv.Mat, minArea float64) []image.Rectangle {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var regions []image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) < minArea {
			continue
		}
		rect := gocv.BoundingRect(contour)
		// people are taller than wide
		if float64(rect.Dy()) > 0.8*float64(rect.Dx()) {
			regions = append(regions, rect)
		}
	}
	return regions
}
