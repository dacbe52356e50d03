package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/camden-git/worksitebackend/workers"
)

// CameraHandler controls the capture worker and serves the MJPEG preview
type CameraHandler struct {
	Monitor    *workers.CaptureMonitor
	PreviewFPS int
}

// Start begins camera monitoring
func (ch *CameraHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := ch.Monitor.Start(); err != nil {
		if errors.Is(err, workers.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "Camera monitoring is already running")
			return
		}
		log.Printf("handlers: error starting camera: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to start camera monitoring")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Camera monitoring started"})
}

// Stop halts camera monitoring
func (ch *CameraHandler) Stop(w http.ResponseWriter, r *http.Request) {
	ch.Monitor.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Camera monitoring stopped"})
}

// Status reports whether the capture loop is running
func (ch *CameraHandler) Status(w http.ResponseWriter, r *http.Request) {
	_, lastCapture := ch.Monitor.LatestFrame()

	status := map[string]interface{}{
		"running": ch.Monitor.Running(),
	}
	if !lastCapture.IsZero() {
		status["last_frame_at"] = lastCapture.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, status)
}

// Feed streams the latest frames as multipart MJPEG at the preview rate
func (ch *CameraHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if !ch.Monitor.Running() {
		writeError(w, http.StatusServiceUnavailable, "Camera monitoring is not running")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	const boundary = "frame"
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.WriteHeader(http.StatusOK)

	fps := ch.PreviewFPS
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var lastSent time.Time
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !ch.Monitor.Running() {
				return
			}
			frame, capturedAt := ch.Monitor.LatestFrame()
			if len(frame) == 0 || !capturedAt.After(lastSent) {
				continue
			}
			lastSent = capturedAt

			if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
