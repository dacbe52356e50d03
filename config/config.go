package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultSnapshotsSubDir = "violation_snapshots"
)

const (
	defaultMatchTolerance  = 0.6
	defaultMonitorFPS      = 10
	defaultPreviewFPS      = 30
	defaultSnapshotMaxSize = 300
	defaultCameraIndex     = 0
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for generated assets (violation snapshots)
	SnapshotsPath    string // full-calculated path for snapshots

	// detection model paths
	FaceCascadePath  string // haar cascade used for face localization
	BodyCascadePath  string // haar cascade used for fullbody person detection
	FaceNetModelPath string // DNN face encoder; empty disables recognition

	// recognition settings
	MatchTolerance float64

	// capture loop settings
	CameraIndex int
	MonitorFPS  int
	PreviewFPS  int

	// snapshot generation settings
	SnapshotMaxSize int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "worksite.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	snapshotSubDir := getEnvOrDefault("SNAPSHOTS_SUBDIR", DefaultSnapshotsSubDir)
	absSnapshotsPath := filepath.Join(absMediaStorage, snapshotSubDir)

	cfg := Config{
		DatabasePath:     dbPath,
		MediaStoragePath: absMediaStorage,
		SnapshotsPath:    absSnapshotsPath,
		FaceCascadePath:  getEnvOrDefault("FACE_CASCADE_PATH", "./models/haarcascade_frontalface_default.xml"),
		BodyCascadePath:  getEnvOrDefault("BODY_CASCADE_PATH", "./models/haarcascade_fullbody.xml"),
		FaceNetModelPath: getEnvOrDefault("FACE_NET_MODEL_PATH", ""),
		MatchTolerance:   getEnvFloatOrDefault("MATCH_TOLERANCE", defaultMatchTolerance),
		CameraIndex:      getEnvIntOrDefault("CAMERA_INDEX", defaultCameraIndex),
		MonitorFPS:       getEnvIntOrDefault("MONITOR_FPS", defaultMonitorFPS),
		PreviewFPS:       getEnvIntOrDefault("PREVIEW_FPS", defaultPreviewFPS),
		SnapshotMaxSize:  getEnvIntOrDefault("SNAPSHOT_MAX_SIZE", defaultSnapshotMaxSize),
	}

	return cfg, nil
}
