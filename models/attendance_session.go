package models

// Detection methods recorded on attendance sessions
const (
	DetectionMethodFaceRecognition = "face_recognition"
	DetectionMethodManual          = "manual"
)

// AttendanceSession represents a single employee's presence for one calendar
// day. The unique (employee_id, date) index is what guarantees at most one
// open session per employee per day even under concurrent writers.
type AttendanceSession struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID      string  `gorm:"not null;uniqueIndex:idx_employee_date" json:"employee_id"`
	Date            string  `gorm:"not null;uniqueIndex:idx_employee_date" json:"date"` // YYYY-MM-DD, local processing time
	CheckInTime     int64   `gorm:"not null" json:"check_in_time"`
	CheckOutTime    *int64  `json:"check_out_time,omitempty"`
	Confidence      float64 `gorm:"not null" json:"confidence"` // max observed over the day, never decreases
	DetectionMethod string  `gorm:"not null;default:'face_recognition'" json:"detection_method"`
	CreatedAt       int64   `gorm:"not null" json:"created_at"`
	UpdatedAt       int64   `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}
