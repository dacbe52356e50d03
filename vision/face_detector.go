package vision

import (
	"image"
	"log"
	"os"

	"gocv.io/x/gocv"
)

// FaceDetector locates face regions in a frame with a Haar cascade. When
// the cascade is unavailable it degrades to geometric contour detection
// so the rest of the pipeline keeps producing (unknown) results.
type FaceDetector struct {
	cascade gocv.CascadeClassifier
	Enabled bool
}

// NewFaceDetector loads the face cascade from cascadePath. A missing file
// disables the detector rather than failing startup.
func NewFaceDetector(cascadePath string) *FaceDetector {
	if cascadePath == "" {
		log.Println("faces: cascade path is empty, using geometric fallback")
		return &FaceDetector{Enabled: false}
	}

	if _, err := os.Stat(cascadePath); os.IsNotExist(err) {
		log.Printf("faces: cascade file does not exist: %s", cascadePath)
		return &FaceDetector{Enabled: false}
	}

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cascadePath) {
		log.Printf("faces: failed to load cascade from %s", cascadePath)
		cascade.Close()
		return &FaceDetector{Enabled: false}
	}

	log.Printf("faces: loaded cascade from %s", cascadePath)
	return &FaceDetector{cascade: cascade, Enabled: true}
}

// Close releases the cascade.
func (d *FaceDetector) Close() {
	if d != nil && d.Enabled {
		d.cascade.Close()
		d.Enabled = false
	}
}

// DetectFaces returns face regions found in frame. Regions from the
// geometric fallback are still face candidates; the matcher reports
// them as unknown when no encoder is available.
func (d *FaceDetector) DetectFaces(frame gocv.Mat) []image.Rectangle {
	if frame.Empty() {
		return nil
	}

	if d == nil || !d.Enabled {
		return contourRegions(frame, minPersonContourArea)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	return d.cascade.DetectMultiScaleWithParams(
		gray, 1.1, 5, 0,
		image.Pt(30, 30), image.Pt(0, 0),
	)
}
