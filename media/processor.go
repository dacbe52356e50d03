package media

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"log"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const snapshotJPEGQuality = 80

// Processor turns raw frames into stored evidence snapshots.
type Processor struct {
	store   Store
	maxSize int // longest edge of a stored snapshot, in pixels
}

// NewProcessor creates a snapshot processor writing through store.
func NewProcessor(store Store, maxSize int) *Processor {
	if maxSize <= 0 {
		maxSize = 300
	}
	return &Processor{store: store, maxSize: maxSize}
}

// SaveSnapshot downscales a JPEG-encoded frame and stores it under a
// date bucket with a generated filename. Returns the relative path.
func (p *Processor) SaveSnapshot(frameJPEG []byte, capturedAt time.Time) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(frameJPEG))
	if err != nil {
		return "", fmt.Errorf("failed to decode snapshot frame: %w", err)
	}

	thumb := imaging.Fit(img, p.maxSize, p.maxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: snapshotJPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dateBucket := capturedAt.Format("2006-01-02")
	filename := uuid.NewString() + ".jpg"

	relPath, err := p.store.Save(AssetTypeSnapshot, dateBucket, filename, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to store snapshot: %w", err)
	}

	log.Printf("media.processor: saved snapshot %s", relPath)
	return relPath, nil
}

// SaveEnrollmentPhoto stores the original enrollment photo for an
// employee, replacing any previous one for the same employee ID.
func (p *Processor) SaveEnrollmentPhoto(employeeID string, photo []byte) (string, error) {
	relPath, err := p.store.Save(AssetTypeEnrollment, "", employeeID+".jpg", bytes.NewReader(photo))
	if err != nil {
		return "", fmt.Errorf("failed to store enrollment photo: %w", err)
	}
	return relPath, nil
}
