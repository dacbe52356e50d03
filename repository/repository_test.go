package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/worksitebackend/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createTestEmployee(t *testing.T, repo *EmployeeRepository, employeeID, name string) *models.Employee {
	t.Helper()
	email := employeeID + "@example.com"
	emp := &models.Employee{
		EmployeeID: employeeID,
		Name:       name,
		Email:      &email,
	}
	if err := repo.Create(emp); err != nil {
		t.Fatalf("failed to create employee %s: %v", employeeID, err)
	}
	return emp
}

func TestCreateEmployeesWithoutEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)

	// absent emails are stored as NULL and must not collide on the
	// unique index
	for _, id := range []string{"EMP001", "EMP002"} {
		if err := repo.Create(&models.Employee{EmployeeID: id, Name: id}); err != nil {
			t.Fatalf("create without email failed for %s: %v", id, err)
		}
	}

	employees, err := repo.ListAll(false)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
	for _, e := range employees {
		if e.Email != nil {
			t.Errorf("employee %s should have no email, got %q", e.EmployeeID, *e.Email)
		}
	}
}

func TestRecordPresenceOpensThenUpdatesSession(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepository(db)

	day := time.Date(2026, 8, 24, 8, 0, 0, 0, time.Local)

	first, err := repo.RecordPresence("EMP001", day, 0.82)
	if err != nil {
		t.Fatalf("first RecordPresence failed: %v", err)
	}
	if first.CheckInTime != day.Unix() {
		t.Errorf("expected check-in %d, got %d", day.Unix(), first.CheckInTime)
	}
	if first.CheckOutTime != nil {
		t.Error("first sighting should not set check-out")
	}

	later := day.Add(9 * time.Hour)
	second, err := repo.RecordPresence("EMP001", later, 0.75)
	if err != nil {
		t.Fatalf("second RecordPresence failed: %v", err)
	}
	if second.CheckInTime != day.Unix() {
		t.Errorf("check-in moved: expected %d, got %d", day.Unix(), second.CheckInTime)
	}
	if second.CheckOutTime == nil || *second.CheckOutTime != later.Unix() {
		t.Errorf("expected check-out %d, got %v", later.Unix(), second.CheckOutTime)
	}
	if second.Confidence != 0.82 {
		t.Errorf("confidence must keep the maximum, got %f", second.Confidence)
	}

	var count int64
	db.Model(&models.AttendanceSession{}).Where("employee_id = ?", "EMP001").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one session per employee per day, got %d", count)
	}
}

func TestRecordPresenceRaisesConfidence(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepository(db)

	day := time.Date(2026, 8, 24, 8, 0, 0, 0, time.Local)
	if _, err := repo.RecordPresence("EMP001", day, 0.6); err != nil {
		t.Fatalf("RecordPresence failed: %v", err)
	}
	session, err := repo.RecordPresence("EMP001", day.Add(time.Hour), 0.9)
	if err != nil {
		t.Fatalf("RecordPresence failed: %v", err)
	}
	if session.Confidence != 0.9 {
		t.Errorf("expected confidence raised to 0.9, got %f", session.Confidence)
	}
}

func TestRecordPresenceSeparateDays(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepository(db)

	monday := time.Date(2026, 8, 24, 8, 0, 0, 0, time.Local)
	tuesday := monday.AddDate(0, 0, 1)

	if _, err := repo.RecordPresence("EMP001", monday, 0.8); err != nil {
		t.Fatalf("RecordPresence failed: %v", err)
	}
	if _, err := repo.RecordPresence("EMP001", tuesday, 0.8); err != nil {
		t.Fatalf("RecordPresence failed: %v", err)
	}

	var count int64
	db.Model(&models.AttendanceSession{}).Where("employee_id = ?", "EMP001").Count(&count)
	if count != 2 {
		t.Errorf("expected one session per day, got %d", count)
	}
}

func TestRecordSafetyEventCreatesAlert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSafetyEventRepository(db)

	snapshot := "snapshot/2026-08-24/abc.jpg"
	alert, err := repo.Record(&models.SafetyEvent{
		EmployeeID:      "EMP001",
		Status:          "major_violation",
		Violations:      []string{"Hard hat required", "Safety vest required"},
		SafetyScore:     0.4,
		PersonsDetected: 1,
	}, &snapshot)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert for a violation event")
	}
	if alert.Priority != models.AlertPriorityHigh || alert.Type != models.AlertTypeSafetyViolation {
		t.Errorf("unexpected alert classification: %s/%s", alert.Type, alert.Priority)
	}
	if alert.SnapshotPath == nil || *alert.SnapshotPath != snapshot {
		t.Errorf("expected snapshot path %q, got %v", snapshot, alert.SnapshotPath)
	}

	events, err := repo.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ViolationCount != 2 {
		t.Errorf("expected violation count 2, got %d", events[0].ViolationCount)
	}
}

func TestRecordCompliantEventNoAlert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSafetyEventRepository(db)

	alert, err := repo.Record(&models.SafetyEvent{
		EmployeeID:      "EMP001",
		Status:          "compliant",
		SafetyScore:     1.0,
		PersonsDetected: 1,
		HasHelmet:       true,
		HasVest:         true,
	}, nil)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if alert != nil {
		t.Error("compliant event must not raise an alert")
	}

	var count int64
	db.Model(&models.Alert{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no alerts, got %d", count)
	}
}

func TestEmployeeListNaturalOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)

	createTestEmployee(t, repo, "EMP10", "Ten")
	createTestEmployee(t, repo, "EMP2", "Two")
	createTestEmployee(t, repo, "EMP1", "One")

	employees, err := repo.ListAll(false)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}

	got := make([]string, len(employees))
	for i, e := range employees {
		got[i] = e.EmployeeID
	}
	want := []string{"EMP1", "EMP2", "EMP10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected natural order %v, got %v", want, got)
		}
	}
}

func TestEmployeeDeactivateReactivate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	createTestEmployee(t, repo, "EMP001", "Alice")

	if err := repo.Deactivate("EMP001"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	active, err := repo.ListAll(false)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("deactivated employee still listed as active")
	}

	all, err := repo.ListAll(true)
	if err != nil {
		t.Fatalf("ListAll(includeInactive) failed: %v", err)
	}
	if len(all) != 1 || all[0].Status != models.EmployeeStatusInactive {
		t.Errorf("expected one inactive employee, got %+v", all)
	}

	if err := repo.Deactivate("EMP001"); err != gorm.ErrRecordNotFound {
		t.Errorf("double deactivate should report not found, got %v", err)
	}

	if err := repo.Reactivate("EMP001"); err != nil {
		t.Fatalf("Reactivate failed: %v", err)
	}
	emp, err := repo.GetByEmployeeID("EMP001")
	if err != nil {
		t.Fatalf("GetByEmployeeID failed: %v", err)
	}
	if emp.Status != models.EmployeeStatusActive || emp.DeactivatedAt != nil {
		t.Errorf("reactivation incomplete: %+v", emp)
	}
}

func TestEmployeeDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	empRepo := NewEmployeeRepository(db)
	attRepo := NewAttendanceRepository(db)
	eventRepo := NewSafetyEventRepository(db)

	createTestEmployee(t, empRepo, "EMP001", "Alice")
	if _, err := attRepo.RecordPresence("EMP001", time.Now(), 0.8); err != nil {
		t.Fatalf("RecordPresence failed: %v", err)
	}
	if _, err := eventRepo.Record(&models.SafetyEvent{
		EmployeeID: "EMP001",
		Status:     "minor_violation",
		Violations: []string{"Hard hat required"},
	}, nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := empRepo.Delete("EMP001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, table := range []interface{}{
		&models.Employee{}, &models.AttendanceSession{}, &models.SafetyEvent{}, &models.Alert{},
	} {
		var count int64
		db.Model(table).Count(&count)
		if count != 0 {
			t.Errorf("expected cascade delete to empty %T, found %d rows", table, count)
		}
	}
}

func TestEmployeeEncodingRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	createTestEmployee(t, repo, "EMP001", "Alice")

	encoding := make([]float32, 128)
	for i := range encoding {
		encoding[i] = float32(i) * 0.01
	}
	if err := repo.SetFaceEncoding("EMP001", encoding, nil); err != nil {
		t.Fatalf("SetFaceEncoding failed: %v", err)
	}

	withEnc, err := repo.ListWithEncodings()
	if err != nil {
		t.Fatalf("ListWithEncodings failed: %v", err)
	}
	if len(withEnc) != 1 {
		t.Fatalf("expected 1 employee with encoding, got %d", len(withEnc))
	}

	got := withEnc[0].GetEncoding()
	if len(got) != 128 {
		t.Fatalf("expected 128-dim encoding, got %d", len(got))
	}
	for i := range encoding {
		if got[i] != encoding[i] {
			t.Fatalf("encoding differs at %d: %f != %f", i, got[i], encoding[i])
		}
	}
}

func TestAlertAcknowledge(t *testing.T) {
	db := setupTestDB(t)
	eventRepo := NewSafetyEventRepository(db)
	alertRepo := NewAlertRepository(db)

	alert, err := eventRepo.Record(&models.SafetyEvent{
		EmployeeID: "EMP001",
		Status:     "minor_violation",
		Violations: []string{"Hard hat required"},
	}, nil)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	active, err := alertRepo.ListActive()
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active alert, got %d", len(active))
	}

	if err := alertRepo.Acknowledge(alert.ID, "admin"); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}

	active, err = alertRepo.ListActive()
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("acknowledged alert still active")
	}

	if err := alertRepo.Acknowledge(9999, "admin"); err != gorm.ErrRecordNotFound {
		t.Errorf("expected not found for unknown alert, got %v", err)
	}
}
