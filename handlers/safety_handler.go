package handlers

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/camden-git/worksitebackend/database"
	"github.com/camden-git/worksitebackend/repository"
	"github.com/camden-git/worksitebackend/services"
	"github.com/camden-git/worksitebackend/vision"
)

// SafetyHandler serves frame analysis and safety event queries
type SafetyHandler struct {
	Service *services.MonitorService
	Events  repository.SafetyEventRepositoryInterface
	StatsDB *sql.DB
}

// AnalyzeFrame runs the pipeline over a client-submitted frame and
// persists the outcome. Accepts either a JSON body with a base64 "frame"
// field or raw image bytes.
func (sh *SafetyHandler) AnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := readFramePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image")
		return
	}

	analysis, err := sh.Service.AnalyzeFrameBytes(frame)
	if err != nil {
		if errors.Is(err, services.ErrInvalidImage) {
			writeError(w, http.StatusBadRequest, "invalid image")
			return
		}
		log.Printf("handlers: error analyzing frame: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze frame")
		return
	}

	resp := struct {
		vision.FrameAnalysis
		StorageWarning string `json:"storage_warning,omitempty"`
	}{FrameAnalysis: analysis}
	if err := sh.Service.RecordResults(analysis, frame); err != nil {
		// analysis succeeded; report it with the storage failure attached
		log.Printf("handlers: error recording frame results: %v", err)
		resp.StorageWarning = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

// readFramePayload extracts the frame bytes from the request
func readFramePayload(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req struct {
			Frame string `json:"frame"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return decodeFaceImage(req.Frame)
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil || len(data) == 0 {
		return nil, errors.New("empty frame payload")
	}
	// some clients post base64 text bodies
	if decoded, derr := base64.StdEncoding.DecodeString(string(data)); derr == nil && len(decoded) > 0 {
		return decoded, nil
	}
	return data, nil
}

// ListEvents returns recent safety events, newest first. Passing unix
// timestamps as ?start= and ?end= switches to a time-range query.
func (sh *SafetyHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	startRaw := r.URL.Query().Get("start")
	endRaw := r.URL.Query().Get("end")
	if startRaw != "" || endRaw != "" {
		start, err := strconv.ParseInt(startRaw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be a unix timestamp")
			return
		}
		end := time.Now().Unix()
		if endRaw != "" {
			end, err = strconv.ParseInt(endRaw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "end must be a unix timestamp")
				return
			}
		}

		events, err := sh.Events.ListRange(start, end)
		if err != nil {
			log.Printf("handlers: error listing safety events in range: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to list safety events")
			return
		}
		writeJSON(w, http.StatusOK, events)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := sh.Events.ListRecent(limit)
	if err != nil {
		log.Printf("handlers: error listing safety events: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list safety events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Stats returns safety compliance counters for a time range, defaulting
// to the last 24 hours
func (sh *SafetyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	end := time.Now()
	start := end.Add(-24 * time.Hour)

	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		start = end.Add(-time.Duration(hours) * time.Hour)
	}

	stats, err := database.GetSafetyStats(sh.StatsDB, start, end)
	if err != nil {
		log.Printf("handlers: error computing safety stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute safety stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
