package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
)

// PhotoMetadata describes an enrollment photo: dimensions from the image
// header plus capture details when EXIF data is present.
type PhotoMetadata struct {
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	CameraMake  *string `json:"camera_make,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`
	TakenAt     *int64  `json:"taken_at,omitempty"`
}

// ExtractPhotoMetadata reads dimensions and EXIF fields from an in-memory
// photo. Missing EXIF data is not an error.
func ExtractPhotoMetadata(photo []byte) (*PhotoMetadata, error) {
	meta := &PhotoMetadata{}

	config, _, err := image.DecodeConfig(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to decode image header: %w", err)
	}
	w, h := config.Width, config.Height
	meta.Width = &w
	meta.Height = &h

	exifData, err := exif.Decode(bytes.NewReader(photo))
	if err != nil {
		// file might just lack EXIF data
		return meta, nil
	}

	meta.CameraMake = getString(exifData, exif.Make)
	meta.CameraModel = getString(exifData, exif.Model)

	if dt, err := exifData.DateTime(); err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	}

	return meta, nil
}

// getString safely gets a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val := tag.String()
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	if val == "" {
		return nil
	}
	return &val
}
