package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/worksitebackend/models"
	"github.com/camden-git/worksitebackend/repository"
	"github.com/camden-git/worksitebackend/services"
)

// EmployeeHandler serves employee enrollment and management endpoints
type EmployeeHandler struct {
	Repo    repository.EmployeeRepositoryInterface
	Service *services.MonitorService
}

type employeeRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	FaceImage  string `json:"face_image"` // base64-encoded reference photo
}

func decodeFaceImage(encoded string) ([]byte, error) {
	// tolerate data URL prefixes like "data:image/jpeg;base64,"
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.Contains(encoded[:idx], "base64") {
		encoded = encoded[idx+1:]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// Register creates a new employee. A base64 face_image is optional; when
// present it becomes the enrollment photo and, if an embedding model is
// loaded, the employee's gallery encoding.
func (eh *EmployeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.EmployeeID) == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: employee_id, name")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: email")
		return
	}
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, "email is not a valid address")
		return
	}

	var photo []byte
	if req.FaceImage != "" {
		var err error
		photo, err = decodeFaceImage(req.FaceImage)
		if err != nil {
			writeError(w, http.StatusBadRequest, "face_image is not valid base64")
			return
		}
	}

	employee := &models.Employee{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
		Email:      &email,
		Phone:      req.Phone,
	}

	if err := eh.Service.Enroll(employee, photo); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidImage):
			writeError(w, http.StatusBadRequest, "invalid image")
		case errors.Is(err, services.ErrNoFaceDetected):
			writeError(w, http.StatusBadRequest, "no face detected in photo")
		default:
			log.Printf("handlers: error enrolling employee %s: %v", req.EmployeeID, err)
			writeError(w, http.StatusInternalServerError, "Failed to register employee")
		}
		return
	}

	created, err := eh.Repo.GetByEmployeeID(req.EmployeeID)
	if err != nil {
		writeJSON(w, http.StatusCreated, map[string]string{"employee_id": req.EmployeeID})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns enrolled employees in natural ID order
func (eh *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	employees, err := eh.Repo.ListAll(includeInactive)
	if err != nil {
		log.Printf("handlers: error listing employees: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// Get returns one employee by external ID
func (eh *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	employee, err := eh.Repo.GetByEmployeeID(employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		log.Printf("handlers: error fetching employee %s: %v", employeeID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch employee")
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

// Update changes an employee's profile fields
func (eh *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	employee, err := eh.Repo.GetByEmployeeID(employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch employee")
		return
	}

	if req.Name != "" {
		employee.Name = req.Name
	}
	if req.Department != "" {
		employee.Department = req.Department
	}
	if req.Position != "" {
		employee.Position = req.Position
	}
	if req.Email != "" {
		email := strings.TrimSpace(req.Email)
		if !validEmail(email) {
			writeError(w, http.StatusBadRequest, "email is not a valid address")
			return
		}
		employee.Email = &email
	}
	if req.Phone != "" {
		employee.Phone = req.Phone
	}

	if err := eh.Repo.Update(employee); err != nil {
		log.Printf("handlers: error updating employee %s: %v", employeeID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update employee")
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

// UpdateFacePhoto replaces the employee's reference photo and encoding
func (eh *EmployeeHandler) UpdateFacePhoto(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	var req struct {
		FaceImage string `json:"face_image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FaceImage == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: face_image")
		return
	}

	photo, err := decodeFaceImage(req.FaceImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "face_image is not valid base64")
		return
	}

	if err := eh.Service.UpdateFacePhoto(employeeID, photo); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "Employee not found")
		case errors.Is(err, services.ErrInvalidImage):
			writeError(w, http.StatusBadRequest, "invalid image")
		case errors.Is(err, services.ErrNoFaceDetected):
			writeError(w, http.StatusBadRequest, "no face detected in photo")
		case errors.Is(err, services.ErrEncoderUnavailable):
			writeError(w, http.StatusServiceUnavailable, "face recognition is not available")
		default:
			log.Printf("handlers: error updating face photo for %s: %v", employeeID, err)
			writeError(w, http.StatusInternalServerError, "Failed to update face photo")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Face photo updated"})
}

// Deactivate marks an employee inactive; Reactivate reverses it
func (eh *EmployeeHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	if err := eh.Repo.Deactivate(employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found or already inactive")
			return
		}
		log.Printf("handlers: error deactivating employee %s: %v", employeeID, err)
		writeError(w, http.StatusInternalServerError, "Failed to deactivate employee")
		return
	}

	// deactivated employees leave the matching gallery
	if err := eh.Service.ReloadGallery(); err != nil {
		log.Printf("handlers: gallery reload after deactivation failed: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Employee deactivated"})
}

func (eh *EmployeeHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	if err := eh.Repo.Reactivate(employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found or not inactive")
			return
		}
		log.Printf("handlers: error reactivating employee %s: %v", employeeID, err)
		writeError(w, http.StatusInternalServerError, "Failed to reactivate employee")
		return
	}

	if err := eh.Service.ReloadGallery(); err != nil {
		log.Printf("handlers: gallery reload after reactivation failed: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Employee reactivated"})
}

// Delete removes an employee. By default this deactivates; pass
// ?hard_delete=true to permanently remove the employee and their history.
func (eh *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	hard := r.URL.Query().Get("hard_delete") == "true"

	var err error
	if hard {
		err = eh.Repo.Delete(employeeID)
	} else {
		err = eh.Repo.Deactivate(employeeID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		log.Printf("handlers: error deleting employee %s: %v", employeeID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete employee")
		return
	}

	if err := eh.Service.ReloadGallery(); err != nil {
		log.Printf("handlers: gallery reload after delete failed: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
