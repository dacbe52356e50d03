package vision

import (
	"log"
	"time"
)

// Classifier fuses person and PPE observations into a per-frame safety
// assessment.
type Classifier struct{}

// NewClassifier returns a safety classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Assess maps the observations onto a score and status. With no person
// the frame is inconclusive (0.5) rather than compliant. Any internal
// failure degrades to the system-error assessment.
func (c *Classifier) Assess(personsDetected int, hasHelmet, hasVest bool) (out SafetyAssessment) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("classifier: assessment recovered from panic: %v", r)
			out = SystemErrorAssessment()
		}
	}()

	now := time.Now()

	if personsDetected == 0 {
		return SafetyAssessment{
			Violations:      []string{ViolationNoPerson},
			SafetyScore:     0.5,
			Status:          StatusNoPersonDetected,
			PersonsDetected: 0,
			Timestamp:       now,
		}
	}

	violations := []string{}
	if !hasHelmet {
		violations = append(violations, ViolationNoHelmet)
	}
	if !hasVest {
		violations = append(violations, ViolationNoVest)
	}

	var score float64
	var status string
	switch len(violations) {
	case 0:
		score, status = 1.0, StatusCompliant
	case 1:
		score, status = 0.7, StatusMinorViolation
	case 2:
		score, status = 0.4, StatusMajorViolation
	default:
		score, status = 0.1, StatusCritical
	}

	return SafetyAssessment{
		Violations:      violations,
		SafetyScore:     score,
		Status:          status,
		PersonsDetected: personsDetected,
		HasHelmet:       hasHelmet,
		HasVest:         hasVest,
		Timestamp:       now,
	}
}

// SystemErrorAssessment is the assessment recorded when the pipeline
// itself fails.
func SystemErrorAssessment() SafetyAssessment {
	return SafetyAssessment{
		Violations:  []string{ViolationSystemError},
		SafetyScore: 0,
		Status:      StatusSystemError,
		Timestamp:   time.Now(),
	}
}
