package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/worksitebackend/database"
	"github.com/camden-git/worksitebackend/repository"
)

// AttendanceHandler serves attendance queries
type AttendanceHandler struct {
	Repo    repository.AttendanceRepositoryInterface
	StatsDB *sql.DB
}

// parseDateParam reads a YYYY-MM-DD query parameter, defaulting to today
func parseDateParam(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "", err
	}
	return value, nil
}

// ListByDate returns all sessions for one day (default today)
func (ah *AttendanceHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	sessions, err := ah.Repo.ListByDate(date)
	if err != nil {
		log.Printf("handlers: error listing attendance for %s: %v", date, err)
		writeError(w, http.StatusInternalServerError, "Failed to list attendance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":     date,
		"sessions": sessions,
	})
}

// ListByEmployee returns an employee's recent sessions
func (ah *AttendanceHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sessions, err := ah.Repo.ListByEmployee(employeeID, limit)
	if err != nil {
		log.Printf("handlers: error listing attendance for %s: %v", employeeID, err)
		writeError(w, http.StatusInternalServerError, "Failed to list attendance")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// CheckToday reports whether an employee has been seen today
func (ah *AttendanceHandler) CheckToday(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	today := time.Now().Format("2006-01-02")

	session, err := ah.Repo.GetForDay(employeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"employee_id": employeeID,
				"date":        today,
				"present":     false,
			})
			return
		}
		log.Printf("handlers: error checking attendance for %s: %v", employeeID, err)
		writeError(w, http.StatusInternalServerError, "Failed to check attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"employee_id": employeeID,
		"date":        today,
		"present":     true,
		"session":     session,
	})
}

// Stats returns aggregate attendance counters for a date range. Defaults
// to today when no range is given.
func (ah *AttendanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	startDate, err := parseDateParam(r, "start_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	endDate, err := parseDateParam(r, "end_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	start, _ := time.Parse("2006-01-02", startDate)
	end, _ := time.Parse("2006-01-02", endDate)
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	stats, err := database.GetAttendanceStats(ah.StatsDB, start, end)
	if err != nil {
		log.Printf("handlers: error computing attendance stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute attendance stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
