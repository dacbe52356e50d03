package repository

import (
	"time"

	"github.com/camden-git/worksitebackend/media"
	"github.com/camden-git/worksitebackend/models"
)

// EmployeeRepositoryInterface defines the methods for employee data operations
type EmployeeRepositoryInterface interface {
	Create(employee *models.Employee) error
	GetByEmployeeID(employeeID string) (*models.Employee, error)
	ListAll(includeInactive bool) ([]models.Employee, error)
	ListWithEncodings() ([]models.Employee, error)
	Update(employee *models.Employee) error
	SetFaceEncoding(employeeID string, encoding []float32, photoMeta *media.PhotoMetadata) error
	Deactivate(employeeID string) error
	Reactivate(employeeID string) error
	Delete(employeeID string) error
}

// AttendanceRepositoryInterface defines the methods for attendance data operations
type AttendanceRepositoryInterface interface {
	RecordPresence(employeeID string, observedAt time.Time, confidence float64) (*models.AttendanceSession, error)
	GetForDay(employeeID, date string) (*models.AttendanceSession, error)
	ListByDate(date string) ([]models.AttendanceSession, error)
	ListByEmployee(employeeID string, limit int) ([]models.AttendanceSession, error)
}

// SafetyEventRepositoryInterface defines the methods for safety event data operations
type SafetyEventRepositoryInterface interface {
	Record(event *models.SafetyEvent, snapshotPath *string) (*models.Alert, error)
	ListRecent(limit int) ([]models.SafetyEvent, error)
	ListRange(start, end int64) ([]models.SafetyEvent, error)
}

// AlertRepositoryInterface defines the methods for alert data operations
type AlertRepositoryInterface interface {
	ListRecent(limit int) ([]models.Alert, error)
	ListActive() ([]models.Alert, error)
	Acknowledge(alertID uint, acknowledgedBy string) error
}
