package models

import "math"

// Employee statuses
const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

// Employee represents an enrolled worker using GORM.
// It corresponds to the 'employees' table.
type Employee struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID string  `gorm:"uniqueIndex;not null" json:"employee_id"`
	Name       string  `gorm:"not null" json:"name"`
	Department string  `json:"department"`
	Position   string  `json:"position"`
	Email      *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone      string  `json:"phone"`
	Status     string  `gorm:"not null;default:'active';index" json:"status"`

	// FaceEncoding holds the 128-dimensional reference vector as a BLOB.
	// Replacing it writes a whole new value; in-memory galleries only ever
	// see fully built snapshots.
	FaceEncoding      []byte `gorm:"column:face_encoding" json:"-"`
	EncodingUpdatedAt *int64 `json:"encoding_updated_at,omitempty"`

	// reference photo metadata extracted at enrollment
	PhotoWidth   *int   `json:"photo_width,omitempty"`
	PhotoHeight  *int   `json:"photo_height,omitempty"`
	PhotoTakenAt *int64 `json:"photo_taken_at,omitempty"`

	CreatedAt     int64  `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt     int64  `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp
	DeactivatedAt *int64 `json:"deactivated_at,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Employee) TableName() string {
	return "employees"
}

// HasEncoding reports whether a reference face encoding is stored.
func (e *Employee) HasEncoding() bool {
	return len(e.FaceEncoding) > 0
}

// GetEncoding converts the BLOB data to []float32
func (e *Employee) GetEncoding() []float32 {
	if len(e.FaceEncoding) == 0 {
		return nil
	}

	encoding := make([]float32, len(e.FaceEncoding)/4) // 4 bytes per float32
	for i := 0; i < len(encoding); i++ {
		offset := i * 4
		bits := uint32(e.FaceEncoding[offset]) |
			uint32(e.FaceEncoding[offset+1])<<8 |
			uint32(e.FaceEncoding[offset+2])<<16 |
			uint32(e.FaceEncoding[offset+3])<<24
		encoding[i] = math.Float32frombits(bits)
	}
	return encoding
}

// SetEncoding converts []float32 to BLOB data
func (e *Employee) SetEncoding(encoding []float32) {
	if len(encoding) == 0 {
		e.FaceEncoding = nil
		return
	}

	e.FaceEncoding = make([]byte, len(encoding)*4) // 4 bytes per float32
	for i, val := range encoding {
		offset := i * 4
		bits := math.Float32bits(val)
		e.FaceEncoding[offset] = byte(bits)
		e.FaceEncoding[offset+1] = byte(bits >> 8)
		e.FaceEncoding[offset+2] = byte(bits >> 16)
		e.FaceEncoding[offset+3] = byte(bits >> 24)
	}
}
