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
	"github.com/camden-git/worksitebackend/vision"
	"github.com/camden-git/worksitebackend/workers"
)

// DashboardHandler serves aggregate stats and alert management
type DashboardHandler struct {
	Alerts  repository.AlertRepositoryInterface
	StatsDB *sql.DB
}

// Stats returns the combined dashboard counters
func (dh *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := database.GetDashboardStats(dh.StatsDB, time.Now())
	if err != nil {
		log.Printf("handlers: error computing dashboard stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RecentAlerts lists the newest alerts; ?active=true filters to
// unacknowledged ones
func (dh *DashboardHandler) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("active") == "true" {
		alerts, err := dh.Alerts.ListActive()
		if err != nil {
			log.Printf("handlers: error listing active alerts: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to list alerts")
			return
		}
		writeJSON(w, http.StatusOK, alerts)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	alerts, err := dh.Alerts.ListRecent(limit)
	if err != nil {
		log.Printf("handlers: error listing alerts: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// AcknowledgeAlert marks an alert as handled
func (dh *DashboardHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID, err := strconv.ParseUint(chi.URLParam(r, "alertID"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	acknowledgedBy := r.URL.Query().Get("by")
	if acknowledgedBy == "" {
		acknowledgedBy = "operator"
	}

	if err := dh.Alerts.Acknowledge(uint(alertID), acknowledgedBy); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		log.Printf("handlers: error acknowledging alert %d: %v", alertID, err)
		writeError(w, http.StatusInternalServerError, "Failed to acknowledge alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert acknowledged"})
}

// HealthHandler reports component availability
type HealthHandler struct {
	DB      *sql.DB
	Encoder *vision.FaceEncoder
	Monitor *workers.CaptureMonitor
}

// Health is a liveness probe that also reports which capabilities are up
func (hh *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := hh.DB != nil && hh.DB.Ping() == nil

	status := "healthy"
	if !dbOK {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           status,
		"database":         dbOK,
		"face_recognition": hh.Encoder != nil && hh.Encoder.Enabled,
		"camera_running":   hh.Monitor != nil && hh.Monitor.Running(),
		"time":             time.Now().Format(time.RFC3339),
	})
}
