package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/worksitebackend/models"
)

// AlertRepository handles database operations for Alert entities
type AlertRepository struct {
	DB *gorm.DB
}

// NewAlertRepository creates a new instance of AlertRepository
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

// ListRecent retrieves the newest alerts first
func (r *AlertRepository) ListRecent(limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	var alerts []models.Alert
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent alerts: %w", err)
	}
	return alerts, nil
}

// ListActive retrieves unacknowledged alerts, newest first
func (r *AlertRepository) ListActive() ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.DB.Where("acknowledged = ?", false).Order("created_at DESC").Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	return alerts, nil
}

// Acknowledge marks an alert as handled by an operator
func (r *AlertRepository) Acknowledge(alertID uint, acknowledgedBy string) error {
	now := time.Now().Unix()
	result := r.DB.Model(&models.Alert{}).
		Where("id = ?", alertID).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_by": acknowledgedBy,
			"acknowledged_at": now,
			"status":          "acknowledged",
			"updated_at":      now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to acknowledge alert %d: %w", alertID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
