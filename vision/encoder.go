package vision

import (
	"image"
	"log"
	"math"
	"os"

	"gocv.io/x/gocv"
)

// EncodingSize is the dimensionality of a face encoding vector.
const EncodingSize = 128

// FaceEncoder extracts fixed-length feature vectors from face regions
// using a FaceNet-style embedding network. When no model is configured
// the encoder stays disabled and callers fall back to unknown matches.
type FaceEncoder struct {
	Net     gocv.Net
	Enabled bool

	inputSize int
}

// NewFaceEncoder loads the embedding network from modelPath. An empty or
// missing path disables the encoder rather than failing startup.
func NewFaceEncoder(modelPath string) *FaceEncoder {
	if modelPath == "" {
		log.Println("encoder: model path is empty, face matching disabled")
		return &FaceEncoder{Enabled: false}
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		log.Printf("encoder: model file does not exist: %s", modelPath)
		return &FaceEncoder{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		log.Printf("encoder: ReadNet returned an empty network for %s", modelPath)
		return &FaceEncoder{Enabled: false}
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.Printf("encoder: loaded embedding model from %s", modelPath)
	return &FaceEncoder{
		Net:       net,
		Enabled:   true,
		inputSize: 160,
	}
}

// Close releases the underlying network.
func (e *FaceEncoder) Close() {
	if e != nil && e.Enabled {
		e.Net.Close()
		e.Enabled = false
	}
}

// ExtractEncoding computes the L2-normalized encoding for a face region.
// Returns nil when the encoder is disabled or the region is unusable.
func (e *FaceEncoder) ExtractEncoding(faceRegion gocv.Mat) []float32 {
	if e == nil || !e.Enabled || faceRegion.Empty() {
		return nil
	}

	processed := e.preprocess(faceRegion)
	if processed.Empty() {
		return nil
	}
	defer processed.Close()

	blob := gocv.BlobFromImage(processed, 1.0/255.0, image.Pt(e.inputSize, e.inputSize), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.Net.SetInput(blob, "")
	output := e.Net.Forward("")
	defer output.Close()

	return normalizeEncoding(flattenOutput(output))
}

// preprocess converts the face region to RGB float32 at the network's
// input resolution.
func (e *FaceEncoder) preprocess(faceRegion gocv.Mat) gocv.Mat {
	var rgb gocv.Mat
	if faceRegion.Channels() == 3 {
		rgb = gocv.NewMat()
		gocv.CvtColor(faceRegion, &rgb, gocv.ColorBGRToRGB)
	} else {
		rgb = faceRegion.Clone()
	}
	defer rgb.Close()

	resized := gocv.NewMat()
	gocv.Resize(rgb, &resized, image.Pt(e.inputSize, e.inputSize), 0, 0, gocv.InterpolationLinear)

	converted := gocv.NewMat()
	resized.ConvertTo(&converted, gocv.MatTypeCV32F)
	resized.Close()
	return converted
}

func flattenOutput(output gocv.Mat) []float32 {
	if len(output.Size()) == 0 {
		return nil
	}

	flattened := output.Reshape(1, 1)
	defer flattened.Close()

	encoding := make([]float32, flattened.Cols())
	for i := range encoding {
		encoding[i] = flattened.GetFloatAt(0, i)
	}
	return encoding
}

func normalizeEncoding(encoding []float32) []float32 {
	if len(encoding) == 0 {
		return nil
	}

	var norm float32
	for _, v := range encoding {
		norm += v * v
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm == 0 {
		return encoding
	}

	normalized := make([]float32, len(encoding))
	for i, v := range encoding {
		normalized[i] = v / norm
	}
	return normalized
}
