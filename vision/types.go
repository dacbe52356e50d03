// vision/types.go
package vision

import (
	"image"
	"time"
)

// Identity values used when a face cannot be matched against the gallery
const (
	UnknownEmployeeID = "UNKNOWN"
	UnknownName       = "Unknown Person"
)

// Detection sources, in the order candidates are emitted
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
	SourceFace     = "face-derived"
)

// Safety statuses produced by the classifier
const (
	StatusCompliant        = "compliant"
	StatusMinorViolation   = "minor_violation"
	StatusMajorViolation   = "major_violation"
	StatusCritical         = "critical"
	StatusNoPersonDetected = "no_person_detected"
	StatusSystemError      = "system_error"
)

// Violation labels
const (
	ViolationNoHelmet    = "Hard hat required"
	ViolationNoVest      = "Safety vest required"
	ViolationNoPerson    = "No person detected for safety assessment"
	ViolationSystemError = "Safety system error"
)

// Box is a pixel-space region (x, y, width, height)
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rect converts the box to an image.Rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// BoxFromRect converts an image.Rectangle to a Box
func BoxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Detection is a candidate person region. Transient, never persisted.
type Detection struct {
	Box    Box    `json:"box"`
	Source string `json:"source"`
}

// MatchResult is one recognized (or unknown) face in a frame.
type MatchResult struct {
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence"`
	Box        Box       `json:"bbox"`
	Timestamp  time.Time `json:"timestamp"`
}

// Recognized reports whether the result maps to an enrolled employee.
func (m MatchResult) Recognized() bool {
	return m.EmployeeID != UnknownEmployeeID
}

// SafetyAssessment is the fused per-frame compliance result.
type SafetyAssessment struct {
	Violations      []string  `json:"violations"`
	SafetyScore     float64   `json:"safety_score"`
	Status          string    `json:"status"`
	PersonsDetected int       `json:"persons_detected"`
	HasHelmet       bool      `json:"has_helmet"`
	HasVest         bool      `json:"has_vest"`
	Timestamp       time.Time `json:"timestamp"`
}

// FrameAnalysis is the combined output of one pipeline run over one frame.
type FrameAnalysis struct {
	Faces  []MatchResult    `json:"faces"`
	Safety SafetyAssessment `json:"safety"`
}
