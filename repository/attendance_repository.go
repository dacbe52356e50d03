package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/worksitebackend/models"
)

// AttendanceRepository handles database operations for AttendanceSession entities
type AttendanceRepository struct {
	DB *gorm.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

// RecordPresence registers one sighting of an employee. The first sighting
// of a calendar day opens the session (check-in); every later sighting
// updates check-out and keeps the maximum confidence. The whole operation
// runs in a transaction so concurrent sightings cannot create a second
// session for the same day.
func (r *AttendanceRepository) RecordPresence(employeeID string, observedAt time.Time, confidence float64) (*models.AttendanceSession, error) {
	date := observedAt.Format("2006-01-02")
	ts := observedAt.Unix()

	var session models.AttendanceSession
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("employee_id = ? AND date = ?", employeeID, date).First(&session).Error
		if err == nil {
			updates := map[string]interface{}{
				"check_out_time": ts,
				"updated_at":     ts,
			}
			if confidence > session.Confidence {
				updates["confidence"] = confidence
				session.Confidence = confidence
			}
			if uerr := tx.Model(&session).Updates(updates).Error; uerr != nil {
				return fmt.Errorf("failed to update attendance for %s on %s: %w", employeeID, date, uerr)
			}
			session.CheckOutTime = &ts
			session.UpdatedAt = ts
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to look up attendance for %s on %s: %w", employeeID, date, err)
		}

		session = models.AttendanceSession{
			EmployeeID:      employeeID,
			Date:            date,
			CheckInTime:     ts,
			Confidence:      confidence,
			DetectionMethod: models.DetectionMethodFaceRecognition,
			CreatedAt:       ts,
			UpdatedAt:       ts,
		}
		if cerr := tx.Create(&session).Error; cerr != nil {
			return fmt.Errorf("failed to create attendance for %s on %s: %w", employeeID, date, cerr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetForDay retrieves the session for an employee on a YYYY-MM-DD date
func (r *AttendanceRepository) GetForDay(employeeID, date string) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	err := r.DB.Where("employee_id = ? AND date = ?", employeeID, date).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get attendance for %s on %s: %w", employeeID, date, err)
	}
	return &session, nil
}

// ListByDate retrieves all sessions for a YYYY-MM-DD date
func (r *AttendanceRepository) ListByDate(date string) ([]models.AttendanceSession, error) {
	var sessions []models.AttendanceSession
	err := r.DB.Where("date = ?", date).Order("check_in_time ASC").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}
	return sessions, nil
}

// ListByEmployee retrieves an employee's most recent sessions, newest first
func (r *AttendanceRepository) ListByEmployee(employeeID string, limit int) ([]models.AttendanceSession, error) {
	if limit <= 0 {
		limit = 30
	}
	var sessions []models.AttendanceSession
	err := r.DB.Where("employee_id = ?", employeeID).
		Order("date DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", employeeID, err)
	}
	return sessions, nil
}
