package models

// SystemEmployeeID is recorded on safety events that could not be attributed
// to a recognized employee.
const SystemEmployeeID = "SYSTEM"

// SafetyEvent is one append-only record per assessed frame, compliant or not.
// It corresponds to the 'safety_events' table.
type SafetyEvent struct {
	ID              uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID      string   `gorm:"not null;index" json:"employee_id"` // employee id or SYSTEM
	Status          string   `gorm:"not null;index" json:"status"`
	Violations      []string `gorm:"serializer:json" json:"violations"`
	ViolationCount  int      `gorm:"not null" json:"violation_count"`
	SafetyScore     float64  `gorm:"not null" json:"safety_score"`
	PersonsDetected int      `gorm:"not null" json:"persons_detected"`
	HasHelmet       bool     `gorm:"not null" json:"has_helmet"`
	HasVest         bool     `gorm:"not null" json:"has_vest"`
	EventType       string   `gorm:"not null;default:'safety_monitoring'" json:"event_type"`
	Timestamp       int64    `gorm:"not null;index" json:"timestamp"`
	CreatedAt       int64    `gorm:"not null" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (SafetyEvent) TableName() string {
	return "safety_events"
}
