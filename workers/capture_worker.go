package workers

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/camden-git/worksitebackend/realtime"
	"github.com/camden-git/worksitebackend/services"
)

// ErrAlreadyRunning is returned when a start request arrives while the
// capture loop is active.
var ErrAlreadyRunning = errors.New("camera capture already running")

// CaptureMonitor drives the camera: it samples frames at the monitoring
// rate, runs them through the pipeline, and keeps the latest encoded
// frame around for the preview feed.
type CaptureMonitor struct {
	service    *services.MonitorService
	hub        *realtime.Hub
	deviceID   int
	monitorFPS int

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}

	frameMu     sync.RWMutex
	latestJPEG  []byte
	lastCapture time.Time
}

// NewCaptureMonitor creates a monitor for the given camera device.
func NewCaptureMonitor(service *services.MonitorService, hub *realtime.Hub, deviceID, monitorFPS int) *CaptureMonitor {
	if monitorFPS <= 0 {
		monitorFPS = 10
	}
	return &CaptureMonitor{
		service:    service,
		hub:        hub,
		deviceID:   deviceID,
		monitorFPS: monitorFPS,
	}
}

// Start opens the camera and launches the capture loop.
func (m *CaptureMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyRunning
	}

	capture, err := gocv.OpenVideoCapture(m.deviceID)
	if err != nil {
		return fmt.Errorf("failed to open camera %d: %w", m.deviceID, err)
	}

	m.running = true
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	go m.loop(capture, m.stopChan)

	m.broadcastStatus("started")
	log.Printf("capture: monitoring camera %d at %d FPS", m.deviceID, m.monitorFPS)
	return nil
}

// Stop shuts the capture loop down and waits for it to release the
// camera. Safe to call when not running, and after the loop exited on
// its own.
func (m *CaptureMonitor) Stop() {
	m.mu.Lock()
	if !m.running || m.stopChan == nil {
		m.mu.Unlock()
		return
	}
	close(m.stopChan)
	m.stopChan = nil
	done := m.doneChan
	m.mu.Unlock()

	<-done
	m.broadcastStatus("stopped")
	log.Printf("capture: monitoring stopped")
}

// Running reports whether the capture loop is active.
func (m *CaptureMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// LatestFrame returns the most recent JPEG-encoded frame and its capture
// time. The slice must not be modified.
func (m *CaptureMonitor) LatestFrame() ([]byte, time.Time) {
	m.frameMu.RLock()
	defer m.frameMu.RUnlock()
	return m.latestJPEG, m.lastCapture
}

func (m *CaptureMonitor) loop(capture *gocv.VideoCapture, stop <-chan struct{}) {
	defer func() {
		capture.Close()
		m.mu.Lock()
		m.running = false
		close(m.doneChan)
		m.mu.Unlock()
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	ticker := time.NewTicker(time.Second / time.Duration(m.monitorFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if ok := capture.Read(&frame); !ok || frame.Empty() {
				log.Printf("capture: camera %d read failed, stopping", m.deviceID)
				m.broadcastStatus("read_failure")
				return
			}

			encoded, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
			if err != nil {
				log.Printf("capture: failed to encode frame: %v", err)
				continue
			}
			jpeg := make([]byte, len(encoded.GetBytes()))
			copy(jpeg, encoded.GetBytes())
			encoded.Close()

			m.frameMu.Lock()
			m.latestJPEG = jpeg
			m.lastCapture = time.Now()
			m.frameMu.Unlock()

			if _, err := m.service.ProcessFrame(frame, jpeg); err != nil {
				log.Printf("capture: failed to record frame results: %v", err)
			}
		}
	}
}

func (m *CaptureMonitor) broadcastStatus(status string) {
	if m.hub == nil {
		return
	}
	m.hub.Broadcast(realtime.Event{
		Type: realtime.EventTypeCameraStatus,
		Extra: map[string]interface{}{
			"camera": m.deviceID,
			"status": status,
		},
		Timestamp: time.Now().Unix(),
	})
}
