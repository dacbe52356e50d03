package vision

import "testing"

func TestAssessCompliant(t *testing.T) {
	c := NewClassifier()
	out := c.Assess(1, true, true)

	if out.Status != StatusCompliant {
		t.Errorf("expected status %q, got %q", StatusCompliant, out.Status)
	}
	if out.SafetyScore != 1.0 {
		t.Errorf("expected score 1.0, got %f", out.SafetyScore)
	}
	if len(out.Violations) != 0 {
		t.Errorf("expected no violations, got %v", out.Violations)
	}
	if out.PersonsDetected != 1 {
		t.Errorf("expected 1 person, got %d", out.PersonsDetected)
	}
}

func TestAssessSingleViolation(t *testing.T) {
	c := NewClassifier()

	out := c.Assess(1, false, true)
	if out.Status != StatusMinorViolation || out.SafetyScore != 0.7 {
		t.Errorf("missing helmet: expected minor_violation/0.7, got %s/%f", out.Status, out.SafetyScore)
	}
	if len(out.Violations) != 1 || out.Violations[0] != ViolationNoHelmet {
		t.Errorf("expected [%q], got %v", ViolationNoHelmet, out.Violations)
	}

	out = c.Assess(2, true, false)
	if out.Status != StatusMinorViolation || out.SafetyScore != 0.7 {
		t.Errorf("missing vest: expected minor_violation/0.7, got %s/%f", out.Status, out.SafetyScore)
	}
	if len(out.Violations) != 1 || out.Violations[0] != ViolationNoVest {
		t.Errorf("expected [%q], got %v", ViolationNoVest, out.Violations)
	}
}

func TestAssessTwoViolations(t *testing.T) {
	c := NewClassifier()
	out := c.Assess(3, false, false)

	if out.Status != StatusMajorViolation {
		t.Errorf("expected status %q, got %q", StatusMajorViolation, out.Status)
	}
	if out.SafetyScore != 0.4 {
		t.Errorf("expected score 0.4, got %f", out.SafetyScore)
	}
	if len(out.Violations) != 2 {
		t.Errorf("expected 2 violations, got %v", out.Violations)
	}
	if out.Violations[0] != ViolationNoHelmet || out.Violations[1] != ViolationNoVest {
		t.Errorf("violations out of order: %v", out.Violations)
	}
}

func TestAssessNoPerson(t *testing.T) {
	c := NewClassifier()
	out := c.Assess(0, true, true)

	if out.Status != StatusNoPersonDetected {
		t.Errorf("expected status %q, got %q", StatusNoPersonDetected, out.Status)
	}
	if out.SafetyScore != 0.5 {
		t.Errorf("expected score 0.5, got %f", out.SafetyScore)
	}
	if len(out.Violations) != 1 || out.Violations[0] != ViolationNoPerson {
		t.Errorf("expected [%q], got %v", ViolationNoPerson, out.Violations)
	}
	if out.HasHelmet || out.HasVest {
		t.Error("PPE flags should not carry through an empty frame")
	}
}

func TestSystemErrorAssessment(t *testing.T) {
	out := SystemErrorAssessment()

	if out.Status != StatusSystemError {
		t.Errorf("expected status %q, got %q", StatusSystemError, out.Status)
	}
	if out.SafetyScore != 0 {
		t.Errorf("expected score 0, got %f", out.SafetyScore)
	}
	if len(out.Violations) != 1 || out.Violations[0] != ViolationSystemError {
		t.Errorf("expected [%q], got %v", ViolationSystemError, out.Violations)
	}
}
