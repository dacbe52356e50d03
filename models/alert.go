package models

// Alert priorities and statuses
const (
	AlertPriorityHigh   = "high"
	AlertPriorityMedium = "medium"
	AlertStatusActive   = "active"

	AlertTypeSafetyViolation = "safety_violation"
)

// Alert is raised when a safety event carries at least one violation. Its
// lifecycle (acknowledgement by an operator) is independent of the event that
// produced it.
type Alert struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID     string  `gorm:"not null;index" json:"employee_id"`
	Type           string  `gorm:"not null;index" json:"type"`
	Message        string  `gorm:"not null" json:"message"`
	Priority       string  `gorm:"not null;index" json:"priority"`
	Status         string  `gorm:"not null;default:'active';index" json:"status"`
	SnapshotPath   *string `json:"snapshot_path,omitempty"` // relative path into the media store
	Acknowledged   bool    `gorm:"not null;default:false" json:"acknowledged"`
	AcknowledgedBy *string `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *int64  `json:"acknowledged_at,omitempty"`
	CreatedAt      int64   `gorm:"not null;index" json:"created_at"`
	UpdatedAt      int64   `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Alert) TableName() string {
	return "alerts"
}
