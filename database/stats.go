package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// read-side statistics queries, run directly against the underlying sql.DB

// AttendanceStats summarises presence over a date range.
type AttendanceStats struct {
	TotalEmployees int               `json:"total_employees"`
	Present        int               `json:"present_today"`
	Absent         int               `json:"absent_today"`
	AttendanceRate float64           `json:"attendance_rate"`
	DailyStats     []DailyAttendance `json:"daily_stats,omitempty"`
}

// DailyAttendance is one day's breakdown inside an AttendanceStats range.
type DailyAttendance struct {
	Date           string  `json:"date"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// SafetyStats summarises safety events over a time range.
type SafetyStats struct {
	TotalEvents    int     `json:"total_events"`
	Violations     int     `json:"violations"`
	SafeEvents     int     `json:"safe_events"`
	ComplianceRate float64 `json:"compliance_rate"`
	RangeStart     string  `json:"range_start"`
	RangeEnd       string  `json:"range_end"`
}

// DashboardStats is the combined counter set for the dashboard endpoint.
type DashboardStats struct {
	TotalEmployees        int     `json:"total_employees"`
	EmployeesPresentToday int     `json:"employees_present_today"`
	SafetyComplianceRate  float64 `json:"safety_compliance_rate"`
	RecentAttendance      int     `json:"recent_attendance"`
	RecentViolations      int     `json:"recent_violations"`
	ActiveMonitoring      bool    `json:"active_monitoring"`
	LastUpdated           string  `json:"last_updated"`
}

func countQuery(db *sql.DB, builder sq.SelectBuilder) (int, error) {
	var n int
	err := builder.RunWith(db).QueryRow().Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func countActiveEmployees(db *sql.DB) (int, error) {
	return countQuery(db, sq.Select("COUNT(*)").From("employees").Where(sq.Eq{"status": "active"}))
}

func countSessionsInRange(db *sql.DB, startDate, endDate string) (int, error) {
	return countQuery(db, sq.Select("COUNT(*)").
		From("attendance_sessions").
		Where(sq.GtOrEq{"date": startDate}).
		Where(sq.LtOrEq{"date": endDate}))
}

// GetAttendanceStats computes presence counters for [start, end], with a
// per-day breakdown when the range spans more than one day.
func GetAttendanceStats(db *sql.DB, start, end time.Time) (*AttendanceStats, error) {
	totalEmployees, err := countActiveEmployees(db)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	startDate := start.Format("2006-01-02")
	endDate := end.Format("2006-01-02")

	present, err := countSessionsInRange(db, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance sessions: %w", err)
	}

	stats := &AttendanceStats{
		TotalEmployees: totalEmployees,
		Present:        present,
		Absent:         maxOf(0, totalEmployees-present),
	}
	if totalEmployees > 0 {
		stats.AttendanceRate = float64(present) / float64(totalEmployees) * 100
	}

	if startDate != endDate {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			date := day.Format("2006-01-02")
			count, err := countSessionsInRange(db, date, date)
			if err != nil {
				return nil, fmt.Errorf("failed to count attendance for %s: %w", date, err)
			}
			daily := DailyAttendance{
				Date:    date,
				Present: count,
				Absent:  maxOf(0, totalEmployees-count),
			}
			if totalEmployees > 0 {
				daily.AttendanceRate = float64(count) / float64(totalEmployees) * 100
			}
			stats.DailyStats = append(stats.DailyStats, daily)
		}
	}

	return stats, nil
}

// GetSafetyStats computes event counters and the compliance rate for
// [start, end]. Compliant frames are logged too, so the rate is meaningful.
func GetSafetyStats(db *sql.DB, start, end time.Time) (*SafetyStats, error) {
	rangeFilter := sq.And{
		sq.GtOrEq{"timestamp": start.Unix()},
		sq.LtOrEq{"timestamp": end.Unix()},
	}

	totalEvents, err := countQuery(db, sq.Select("COUNT(*)").From("safety_events").Where(rangeFilter))
	if err != nil {
		return nil, fmt.Errorf("failed to count safety events: %w", err)
	}

	violations, err := countQuery(db, sq.Select("COUNT(*)").
		From("safety_events").
		Where(rangeFilter).
		Where(sq.Gt{"violation_count": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to count violations: %w", err)
	}

	stats := &SafetyStats{
		TotalEvents:    totalEvents,
		Violations:     violations,
		SafeEvents:     totalEvents - violations,
		ComplianceRate: 100,
		RangeStart:     start.Format(time.RFC3339),
		RangeEnd:       end.Format(time.RFC3339),
	}
	if totalEvents > 0 {
		stats.ComplianceRate = float64(totalEvents-violations) / float64(totalEvents) * 100
	}
	return stats, nil
}

// GetDashboardStats combines employee, attendance and safety counters for
// today plus the trailing seven days.
func GetDashboardStats(db *sql.DB, now time.Time) (*DashboardStats, error) {
	today := now.Format("2006-01-02")
	weekAgo := now.AddDate(0, 0, -7)

	totalEmployees, err := countActiveEmployees(db)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	presentToday, err := countSessionsInRange(db, today, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's sessions: %w", err)
	}

	recentAttendance, err := countSessionsInRange(db, weekAgo.Format("2006-01-02"), today)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent sessions: %w", err)
	}

	recentViolations, err := countQuery(db, sq.Select("COUNT(*)").
		From("safety_events").
		Where(sq.GtOrEq{"timestamp": weekAgo.Unix()}).
		Where(sq.Gt{"violation_count": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent violations: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	safety, err := GetSafetyStats(db, dayStart, now)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalEmployees:        totalEmployees,
		EmployeesPresentToday: presentToday,
		SafetyComplianceRate:  safety.ComplianceRate,
		RecentAttendance:      recentAttendance,
		RecentViolations:      recentViolations,
		ActiveMonitoring:      recentAttendance > 0 || recentViolations > 0,
		LastUpdated:           now.Format(time.RFC3339),
	}, nil
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}
