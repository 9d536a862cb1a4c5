package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/timetable-api/internal/models"
)

// DashboardRepository aggregates read-only dashboard queries.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new dashboard repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Stats returns the headline dashboard counters.
func (r *DashboardRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM students) AS total_students,
		(SELECT COUNT(*) FROM faculty) AS total_faculty,
		(SELECT COUNT(*) FROM rooms WHERE is_active = TRUE) AS active_rooms,
		(SELECT COUNT(*) FROM timetables WHERE is_active = TRUE) AS weekly_classes`

	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("load dashboard stats: %w", err)
	}
	return &stats, nil
}

// TodaysSchedule returns every active session for the given day, resolved
// for display and ordered by slot start time.
func (r *DashboardRepository) TodaysSchedule(ctx context.Context, dayOfWeek int) ([]models.ScheduleItem, error) {
	const query = `SELECT t.id, t.day_of_week,
		s.name AS subject_name, s.code AS subject_code,
		u.name AS faculty_name, r.name AS room_name,
		d.name AS division_name, dep.name AS department_name,
		ts.name AS slot_name, ts.start_time, ts.end_time
	FROM timetables t
	JOIN subjects s ON s.id = t.subject_id
	JOIN faculty f ON f.id = t.faculty_id
	JOIN users u ON u.id = f.user_id
	JOIN rooms r ON r.id = t.room_id
	JOIN divisions d ON d.id = t.division_id
	JOIN departments dep ON dep.id = d.department_id
	JOIN time_slots ts ON ts.id = t.time_slot_id
	WHERE t.day_of_week = $1 AND t.is_active = TRUE
	ORDER BY ts.start_time ASC`

	var items []models.ScheduleItem
	if err := r.db.SelectContext(ctx, &items, query, dayOfWeek); err != nil {
		return nil, fmt.Errorf("load today's schedule: %w", err)
	}
	return items, nil
}

// OccupiedRoomIDs returns ids of rooms hosting a session covering the given
// wall-clock time (HH:MM) on the given day.
func (r *DashboardRepository) OccupiedRoomIDs(ctx context.Context, dayOfWeek int, currentTime string) ([]string, error) {
	const query = `SELECT DISTINCT t.room_id
	FROM timetables t
	JOIN time_slots ts ON ts.id = t.time_slot_id
	WHERE t.day_of_week = $1 AND t.is_active = TRUE
	  AND ts.start_time <= $2 AND ts.end_time > $2`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, dayOfWeek, currentTime); err != nil {
		return nil, fmt.Errorf("load occupied rooms: %w", err)
	}
	return ids, nil
}

// DepartmentOverview aggregates per-department division/student/faculty counts.
func (r *DashboardRepository) DepartmentOverview(ctx context.Context) ([]models.DepartmentOverview, error) {
	const query = `SELECT dep.id AS department_id, dep.name AS department_name, dep.code AS department_code,
		COUNT(DISTINCT d.id) AS division_count,
		COUNT(DISTINCT st.id) AS student_count,
		COUNT(DISTINCT f.id) AS faculty_count
	FROM departments dep
	LEFT JOIN divisions d ON d.department_id = dep.id
	LEFT JOIN students st ON st.division_id = d.id
	LEFT JOIN faculty f ON f.department_id = dep.id
	GROUP BY dep.id, dep.name, dep.code
	ORDER BY dep.name ASC`

	var overview []models.DepartmentOverview
	if err := r.db.SelectContext(ctx, &overview, query); err != nil {
		return nil, fmt.Errorf("load department overview: %w", err)
	}
	return overview, nil
}
