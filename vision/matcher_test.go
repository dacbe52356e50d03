package vision

import (
	"math"
	"testing"
)

func unitVector(hot int) []float32 {
	v := make([]float32, EncodingSize)
	v[hot] = 1
	return v
}

func testMatcher(t *testing.T, entries ...GalleryEntry) *Matcher {
	t.Helper()
	g := NewFeatureGallery()
	for _, e := range entries {
		if err := g.Register(e.EmployeeID, e.Name, e.Encoding); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	return NewMatcher(nil, nil, g, DefaultMatchTolerance)
}

func TestMatchEncodingExact(t *testing.T) {
	enc := unitVector(0)
	m := testMatcher(t, GalleryEntry{EmployeeID: "EMP001", Name: "Alice", Encoding: enc})

	id, name, confidence := m.MatchEncoding(enc)
	if id != "EMP001" || name != "Alice" {
		t.Errorf("expected EMP001/Alice, got %s/%s", id, name)
	}
	if confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %f", confidence)
	}
}

func TestMatchEncodingBeyondTolerance(t *testing.T) {
	// orthogonal unit vectors are sqrt(2) apart, well past 0.6
	m := testMatcher(t, GalleryEntry{EmployeeID: "EMP001", Name: "Alice", Encoding: unitVector(0)})

	id, name, confidence := m.MatchEncoding(unitVector(1))
	if id != UnknownEmployeeID || name != UnknownName {
		t.Errorf("expected unknown, got %s/%s", id, name)
	}
	if confidence != 0 {
		t.Errorf("expected confidence 0, got %f", confidence)
	}
}

func TestMatchEncodingNearestWins(t *testing.T) {
	base := unitVector(0)
	near := make([]float32, EncodingSize)
	copy(near, base)
	near[1] = 0.1

	m := testMatcher(t,
		GalleryEntry{EmployeeID: "EMP001", Name: "Alice", Encoding: unitVector(1)},
		GalleryEntry{EmployeeID: "EMP002", Name: "Bob", Encoding: near},
	)

	id, _, confidence := m.MatchEncoding(base)
	if id != "EMP002" {
		t.Errorf("expected nearest entry EMP002, got %s", id)
	}
	want := 1 - 0.1
	if math.Abs(confidence-want) > 1e-6 {
		t.Errorf("expected confidence %f, got %f", want, confidence)
	}
}

func TestMatchEncodingTieKeepsEarliest(t *testing.T) {
	enc := unitVector(0)
	m := testMatcher(t,
		GalleryEntry{EmployeeID: "EMP001", Name: "Alice", Encoding: enc},
		GalleryEntry{EmployeeID: "EMP002", Name: "Bob", Encoding: enc},
	)

	id, _, _ := m.MatchEncoding(enc)
	if id != "EMP001" {
		t.Errorf("tie should keep the earliest enrolled entry, got %s", id)
	}
}

func TestMatchEncodingEmptyGallery(t *testing.T) {
	m := testMatcher(t)

	id, name, confidence := m.MatchEncoding(unitVector(0))
	if id != UnknownEmployeeID || name != UnknownName || confidence != 0 {
		t.Errorf("expected unknown with confidence 0, got %s/%s/%f", id, name, confidence)
	}
}

func TestMatchEncodingDimensionMismatch(t *testing.T) {
	m := testMatcher(t, GalleryEntry{EmployeeID: "EMP001", Name: "Alice", Encoding: unitVector(0)})

	id, _, _ := m.MatchEncoding([]float32{1, 0})
	if id != UnknownEmployeeID {
		t.Errorf("mismatched dimensions should never match, got %s", id)
	}
}
