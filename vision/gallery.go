package vision

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// ErrAlreadyRegistered is returned when an employee ID is enrolled twice.
var ErrAlreadyRegistered = errors.New("employee already registered in gallery")

// GalleryEntry is one enrolled identity held in memory for matching.
type GalleryEntry struct {
	EmployeeID string
	Name       string
	Encoding   []float32
}

// GallerySource provides enrolled identities, typically backed by the
// employee repository.
type GallerySource interface {
	FetchEnrolledIdentities() ([]GalleryEntry, error)
}

// FeatureGallery holds the in-memory set of enrolled face encodings.
// Reads take an atomic snapshot so matching never blocks on a reload.
type FeatureGallery struct {
	mu       sync.Mutex // serializes Load and Register
	snapshot atomic.Value
}

// NewFeatureGallery returns an empty gallery.
func NewFeatureGallery() *FeatureGallery {
	g := &FeatureGallery{}
	g.snapshot.Store([]GalleryEntry{})
	return g
}

// Load replaces the gallery contents with the identities from source.
// Entries without an encoding are skipped.
func (g *FeatureGallery) Load(source GallerySource) error {
	entries, err := source.FetchEnrolledIdentities()
	if err != nil {
		return fmt.Errorf("failed to fetch enrolled identities: %w", err)
	}

	loaded := make([]GalleryEntry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Encoding) == 0 {
			continue
		}
		loaded = append(loaded, entry)
	}

	g.mu.Lock()
	g.snapshot.Store(loaded)
	g.mu.Unlock()

	log.Printf("gallery: loaded %d enrolled identities", len(loaded))
	return nil
}

// Register adds a single identity without a full reload. Returns
// ErrAlreadyRegistered if the employee ID is already present.
func (g *FeatureGallery) Register(employeeID, name string, encoding []float32) error {
	if len(encoding) == 0 {
		return errors.New("encoding must not be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	current := g.Snapshot()
	for _, entry := range current {
		if entry.EmployeeID == employeeID {
			return fmt.Errorf("%w: %s", ErrAlreadyRegistered, employeeID)
		}
	}

	updated := make([]GalleryEntry, len(current), len(current)+1)
	copy(updated, current)
	updated = append(updated, GalleryEntry{EmployeeID: employeeID, Name: name, Encoding: encoding})
	g.snapshot.Store(updated)
	return nil
}

// Snapshot returns the current gallery contents. Callers must not mutate
// the returned slice.
func (g *FeatureGallery) Snapshot() []GalleryEntry {
	return g.snapshot.Load().([]GalleryEntry)
}

// Len returns the number of enrolled identities.
func (g *FeatureGallery) Len() int {
	return len(g.Snapshot())
}
