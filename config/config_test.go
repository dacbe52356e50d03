package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DatabasePath != "worksite.db" {
		t.Errorf("unexpected default database path: %s", cfg.DatabasePath)
	}
	if cfg.MatchTolerance != 0.6 {
		t.Errorf("expected default tolerance 0.6, got %g", cfg.MatchTolerance)
	}
	if cfg.MonitorFPS != 10 || cfg.PreviewFPS != 30 {
		t.Errorf("unexpected default FPS settings: %d/%d", cfg.MonitorFPS, cfg.PreviewFPS)
	}
	if cfg.SnapshotMaxSize != 300 {
		t.Errorf("expected default snapshot size 300, got %d", cfg.SnapshotMaxSize)
	}
	if filepath.Base(cfg.SnapshotsPath) != DefaultSnapshotsSubDir {
		t.Errorf("snapshots path should end in %s, got %s", DefaultSnapshotsSubDir, cfg.SnapshotsPath)
	}
	if cfg.FaceNetModelPath != "" {
		t.Errorf("face model should default to disabled, got %s", cfg.FaceNetModelPath)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MATCH_TOLERANCE", "0.45")
	t.Setenv("MONITOR_FPS", "5")
	t.Setenv("DATABASE_PATH", "/tmp/test.db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MatchTolerance != 0.45 {
		t.Errorf("expected tolerance 0.45, got %g", cfg.MatchTolerance)
	}
	if cfg.MonitorFPS != 5 {
		t.Errorf("expected monitor FPS 5, got %d", cfg.MonitorFPS)
	}
	if cfg.DatabasePath != "/tmp/test.db" {
		t.Errorf("expected overridden database path, got %s", cfg.DatabasePath)
	}
}

func TestLoadConfigRejectsInvalidNumbers(t *testing.T) {
	t.Setenv("MONITOR_FPS", "not-a-number")
	t.Setenv("MATCH_TOLERANCE", "-1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MonitorFPS != 10 {
		t.Errorf("invalid FPS should fall back to default, got %d", cfg.MonitorFPS)
	}
	if cfg.MatchTolerance != 0.6 {
		t.Errorf("invalid tolerance should fall back to default, got %g", cfg.MatchTolerance)
	}
}
