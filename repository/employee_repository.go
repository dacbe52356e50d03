package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/camden-git/worksitebackend/media"
	"github.com/camden-git/worksitebackend/models"
)

// EmployeeRepository handles database operations for Employee entities
type EmployeeRepository struct {
	DB *gorm.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

// Create creates a new employee record in the database
func (r *EmployeeRepository) Create(employee *models.Employee) error {
	now := time.Now().Unix()
	if employee.CreatedAt == 0 {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now
	if employee.Status == "" {
		employee.Status = models.EmployeeStatusActive
	}

	err := r.DB.Create(employee).Error
	if err != nil {
		return fmt.Errorf("failed to create employee %s: %w", employee.EmployeeID, err)
	}
	return nil
}

// GetByEmployeeID retrieves an employee by its external employee ID
func (r *EmployeeRepository) GetByEmployeeID(employeeID string) (*models.Employee, error) {
	var employee models.Employee
	err := r.DB.Where("employee_id = ?", employeeID).First(&employee).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get employee %s: %w", employeeID, err)
	}
	return &employee, nil
}

// ListAll retrieves employees in natural employee-ID order. Inactive
// employees are excluded unless includeInactive is set.
func (r *EmployeeRepository) ListAll(includeInactive bool) ([]models.Employee, error) {
	query := r.DB
	if !includeInactive {
		query = query.Where("status = ?", models.EmployeeStatusActive)
	}

	var employees []models.Employee
	if err := query.Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	// EMP2 sorts before EMP10
	sort.SliceStable(employees, func(i, j int) bool {
		return natsort.Compare(employees[i].EmployeeID, employees[j].EmployeeID)
	})
	return employees, nil
}

// ListWithEncodings retrieves active employees that have a stored face
// encoding, for gallery loading
func (r *EmployeeRepository) ListWithEncodings() ([]models.Employee, error) {
	var employees []models.Employee
	err := r.DB.
		Where("status = ?", models.EmployeeStatusActive).
		Where("face_encoding IS NOT NULL").
		Order("id ASC").
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employees with encodings: %w", err)
	}
	return employees, nil
}

// Update persists changes to an existing employee
func (r *EmployeeRepository) Update(employee *models.Employee) error {
	employee.UpdatedAt = time.Now().Unix()
	result := r.DB.Model(&models.Employee{}).
		Where("employee_id = ?", employee.EmployeeID).
		Updates(map[string]interface{}{
			"name":       employee.Name,
			"department": employee.Department,
			"position":   employee.Position,
			"email":      employee.Email,
			"phone":      employee.Phone,
			"updated_at": employee.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update employee %s: %w", employee.EmployeeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetFaceEncoding replaces the stored reference encoding and the
// enrollment photo metadata in one update
func (r *EmployeeRepository) SetFaceEncoding(employeeID string, encoding []float32, photoMeta *media.PhotoMetadata) error {
	now := time.Now().Unix()

	var holder models.Employee
	holder.SetEncoding(encoding)

	updates := map[string]interface{}{
		"face_encoding":       holder.FaceEncoding,
		"encoding_updated_at": now,
		"updated_at":          now,
	}
	if photoMeta != nil {
		updates["photo_width"] = photoMeta.Width
		updates["photo_height"] = photoMeta.Height
		updates["photo_taken_at"] = photoMeta.TakenAt
	}

	result := r.DB.Model(&models.Employee{}).Where("employee_id = ?", employeeID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set face encoding for %s: %w", employeeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate marks an employee inactive. Their history is kept and they
// are dropped from the matching gallery on the next reload.
func (r *EmployeeRepository) Deactivate(employeeID string) error {
	now := time.Now().Unix()
	result := r.DB.Model(&models.Employee{}).
		Where("employee_id = ? AND status = ?", employeeID, models.EmployeeStatusActive).
		Updates(map[string]interface{}{
			"status":         models.EmployeeStatusInactive,
			"deactivated_at": now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate employee %s: %w", employeeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Reactivate returns a deactivated employee to active status
func (r *EmployeeRepository) Reactivate(employeeID string) error {
	result := r.DB.Model(&models.Employee{}).
		Where("employee_id = ? AND status = ?", employeeID, models.EmployeeStatusInactive).
		Updates(map[string]interface{}{
			"status":         models.EmployeeStatusActive,
			"deactivated_at": gorm.Expr("NULL"),
			"updated_at":     time.Now().Unix(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to reactivate employee %s: %w", employeeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete permanently removes an employee together with their attendance
// sessions, safety events and alerts
func (r *EmployeeRepository) Delete(employeeID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("employee_id = ?", employeeID).Delete(&models.Employee{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete employee %s: %w", employeeID, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("employee_id = ?", employeeID).Delete(&models.AttendanceSession{}).Error; err != nil {
			return fmt.Errorf("failed to delete attendance for %s: %w", employeeID, err)
		}
		if err := tx.Where("employee_id = ?", employeeID).Delete(&models.SafetyEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete safety events for %s: %w", employeeID, err)
		}
		if err := tx.Where("employee_id = ?", employeeID).Delete(&models.Alert{}).Error; err != nil {
			return fmt.Errorf("failed to delete alerts for %s: %w", employeeID, err)
		}
		return nil
	})
}
