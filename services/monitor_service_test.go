package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/worksitebackend/models"
	"github.com/camden-git/worksitebackend/repository"
	"github.com/camden-git/worksitebackend/vision"
)

func setupTestService(t *testing.T) (*MonitorService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Employee{},
		&models.AttendanceSession{},
		&models.SafetyEvent{},
		&models.Alert{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	detector := vision.NewFaceDetector("")
	encoder := vision.NewFaceEncoder("")
	gallery := vision.NewFeatureGallery()
	matcher := vision.NewMatcher(detector, encoder, gallery, vision.DefaultMatchTolerance)
	localizer := vision.NewPersonLocalizer("")

	svc := NewMonitorService(
		detector, encoder, gallery, matcher, localizer,
		repository.NewEmployeeRepository(db),
		repository.NewAttendanceRepository(db),
		repository.NewSafetyEventRepository(db),
		nil, nil,
	)
	return svc, db
}

func TestAnalyzeFrameBytesInvalid(t *testing.T) {
	svc, _ := setupTestService(t)

	if _, err := svc.AnalyzeFrameBytes(nil); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for empty input, got %v", err)
	}
	if _, err := svc.AnalyzeFrameBytes([]byte("definitely not an image")); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for garbage input, got %v", err)
	}
}

func TestRecordResultsAttributesEventToFirstRecognized(t *testing.T) {
	svc, db := setupTestService(t)

	now := time.Now()
	analysis := vision.FrameAnalysis{
		Faces: []vision.MatchResult{
			{EmployeeID: vision.UnknownEmployeeID, Name: vision.UnknownName, Timestamp: now},
			{EmployeeID: "EMP001", Name: "Alice", Confidence: 0.91, Timestamp: now},
			{EmployeeID: "EMP002", Name: "Bob", Confidence: 0.85, Timestamp: now},
		},
		Safety: vision.SafetyAssessment{
			Violations:      []string{vision.ViolationNoHelmet},
			SafetyScore:     0.7,
			Status:          vision.StatusMinorViolation,
			PersonsDetected: 2,
			HasVest:         true,
			Timestamp:       now,
		},
	}

	if err := svc.RecordResults(analysis, nil); err != nil {
		t.Fatalf("RecordResults failed: %v", err)
	}

	var sessions []models.AttendanceSession
	db.Find(&sessions)
	if len(sessions) != 2 {
		t.Errorf("expected attendance for both recognized faces, got %d", len(sessions))
	}

	var event models.SafetyEvent
	if err := db.First(&event).Error; err != nil {
		t.Fatalf("expected a safety event: %v", err)
	}
	if event.EmployeeID != "EMP001" {
		t.Errorf("event should be attributed to the first recognized face, got %s", event.EmployeeID)
	}
	if event.ViolationCount != 1 {
		t.Errorf("expected violation count 1, got %d", event.ViolationCount)
	}

	var alertCount int64
	db.Model(&models.Alert{}).Count(&alertCount)
	if alertCount != 1 {
		t.Errorf("expected one alert for a violation frame, got %d", alertCount)
	}
}

func TestRecordResultsUnattributedFallsBackToSystem(t *testing.T) {
	svc, db := setupTestService(t)

	now := time.Now()
	analysis := vision.FrameAnalysis{
		Faces: []vision.MatchResult{
			{EmployeeID: vision.UnknownEmployeeID, Name: vision.UnknownName, Timestamp: now},
		},
		Safety: vision.SafetyAssessment{
			Violations:      []string{vision.ViolationNoHelmet, vision.ViolationNoVest},
			SafetyScore:     0.4,
			Status:          vision.StatusMajorViolation,
			PersonsDetected: 1,
			Timestamp:       now,
		},
	}

	if err := svc.RecordResults(analysis, nil); err != nil {
		t.Fatalf("RecordResults failed: %v", err)
	}

	var sessionCount int64
	db.Model(&models.AttendanceSession{}).Count(&sessionCount)
	if sessionCount != 0 {
		t.Errorf("unknown faces must not create attendance, got %d sessions", sessionCount)
	}

	var event models.SafetyEvent
	if err := db.First(&event).Error; err != nil {
		t.Fatalf("expected a safety event: %v", err)
	}
	if event.EmployeeID != models.SystemEmployeeID {
		t.Errorf("expected SYSTEM attribution, got %s", event.EmployeeID)
	}
}

func TestRecordResultsCompliantFrameStillLogged(t *testing.T) {
	svc, db := setupTestService(t)

	analysis := vision.FrameAnalysis{
		Safety: vision.SafetyAssessment{
			Violations:      []string{},
			SafetyScore:     1.0,
			Status:          vision.StatusCompliant,
			PersonsDetected: 1,
			HasHelmet:       true,
			HasVest:         true,
			Timestamp:       time.Now(),
		},
	}

	if err := svc.RecordResults(analysis, nil); err != nil {
		t.Fatalf("RecordResults failed: %v", err)
	}

	var eventCount, alertCount int64
	db.Model(&models.SafetyEvent{}).Count(&eventCount)
	db.Model(&models.Alert{}).Count(&alertCount)
	if eventCount != 1 {
		t.Errorf("compliant frames are logged too, got %d events", eventCount)
	}
	if alertCount != 0 {
		t.Errorf("compliant frames must not raise alerts, got %d", alertCount)
	}
}

func TestEnrollWithoutPhoto(t *testing.T) {
	svc, db := setupTestService(t)

	emp := &models.Employee{EmployeeID: "EMP001", Name: "Alice"}
	if err := svc.Enroll(emp, nil); err != nil {
		t.Fatalf("Enroll without photo failed: %v", err)
	}

	var stored models.Employee
	if err := db.Where("employee_id = ?", "EMP001").First(&stored).Error; err != nil {
		t.Fatalf("employee not persisted: %v", err)
	}
	if stored.HasEncoding() {
		t.Error("employee enrolled without a photo must not have an encoding")
	}
	if got := svc.gallery.Len(); got != 0 {
		t.Errorf("gallery should stay empty, got %d entries", got)
	}
}

func TestEnrollPhotoWithoutEncoder(t *testing.T) {
	svc, db := setupTestService(t)

	// no embedding model loaded; the employee is still created, just
	// without a gallery encoding
	emp := &models.Employee{EmployeeID: "EMP001", Name: "Alice"}
	if err := svc.Enroll(emp, []byte{0xff, 0xd8}); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	var stored models.Employee
	if err := db.Where("employee_id = ?", "EMP001").First(&stored).Error; err != nil {
		t.Fatalf("employee not persisted: %v", err)
	}
	if stored.HasEncoding() {
		t.Error("no encoder means no encoding should be stored")
	}
}

func TestReloadGalleryPicksUpEncodings(t *testing.T) {
	svc, db := setupTestService(t)
	empRepo := repository.NewEmployeeRepository(db)

	emp := &models.Employee{EmployeeID: "EMP001", Name: "Alice"}
	if err := empRepo.Create(emp); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	encoding := make([]float32, vision.EncodingSize)
	encoding[0] = 1
	if err := empRepo.SetFaceEncoding("EMP001", encoding, nil); err != nil {
		t.Fatalf("SetFaceEncoding failed: %v", err)
	}

	if err := svc.ReloadGallery(); err != nil {
		t.Fatalf("ReloadGallery failed: %v", err)
	}
	if got := svc.gallery.Len(); got != 1 {
		t.Errorf("expected 1 gallery entry after reload, got %d", got)
	}
}
