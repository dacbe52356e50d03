package repository

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/worksitebackend/models"
)

// SafetyEventRepository handles database operations for SafetyEvent entities
type SafetyEventRepository struct {
	DB *gorm.DB
}

// NewSafetyEventRepository creates a new instance of SafetyEventRepository
func NewSafetyEventRepository(db *gorm.DB) *SafetyEventRepository {
	return &SafetyEventRepository{DB: db}
}

// Record appends a safety event. When the event carries violations, a
// high-priority alert is created in the same transaction and returned.
// Compliant events produce no alert.
func (r *SafetyEventRepository) Record(event *models.SafetyEvent, snapshotPath *string) (*models.Alert, error) {
	now := time.Now().Unix()
	if event.CreatedAt == 0 {
		event.CreatedAt = now
	}
	if event.Timestamp == 0 {
		event.Timestamp = now
	}
	if event.EventType == "" {
		event.EventType = "safety_monitoring"
	}
	event.ViolationCount = len(event.Violations)

	var alert *models.Alert
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create safety event: %w", err)
		}

		if len(event.Violations) == 0 {
			return nil
		}

		alert = &models.Alert{
			EmployeeID:   event.EmployeeID,
			Type:         models.AlertTypeSafetyViolation,
			Message:      fmt.Sprintf("Safety violations detected: %s", strings.Join(event.Violations, ", ")),
			Priority:     models.AlertPriorityHigh,
			Status:       models.AlertStatusActive,
			SnapshotPath: snapshotPath,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(alert).Error; err != nil {
			return fmt.Errorf("failed to create alert for safety event %d: %w", event.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// ListRecent retrieves the newest events first
func (r *SafetyEventRepository) ListRecent(limit int) ([]models.SafetyEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.SafetyEvent
	err := r.DB.Order("timestamp DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent safety events: %w", err)
	}
	return events, nil
}

// ListRange retrieves events with timestamps in [start, end]
func (r *SafetyEventRepository) ListRange(start, end int64) ([]models.SafetyEvent, error) {
	var events []models.SafetyEvent
	err := r.DB.Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list safety events in range: %w", err)
	}
	return events, nil
}
