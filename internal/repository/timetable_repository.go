package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/timetable-api/internal/models"
)

const entryColumns = "id, division_id, subject_id, faculty_id, room_id, time_slot_id, day_of_week, is_active, created_at"

// TimetableRepository provides persistence for timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListActive returns active entries matching the filter. Zero-valued filter
// fields are ignored.
func (r *TimetableRepository) ListActive(ctx context.Context, filter models.EntryFilter) ([]models.TimetableEntry, error) {
	conditions := []string{"is_active = TRUE"}
	var args []interface{}

	if filter.DivisionID != "" {
		args = append(args, filter.DivisionID)
		conditions = append(conditions, fmt.Sprintf("division_id = $%d", len(args)))
	}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)))
	}
	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)))
	}
	if filter.TimeSlotID != "" {
		args = append(args, filter.TimeSlotID)
		conditions = append(conditions, fmt.Sprintf("time_slot_id = $%d", len(args)))
	}
	if filter.DayOfWeek != 0 {
		args = append(args, filter.DayOfWeek)
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)))
	}
	if filter.ExcludeID != "" {
		args = append(args, filter.ExcludeID)
		conditions = append(conditions, fmt.Sprintf("id <> $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM timetables WHERE %s ORDER BY day_of_week ASC, created_at ASC", entryColumns, strings.Join(conditions, " AND "))
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list active timetable entries: %w", err)
	}
	return entries, nil
}

// CountActive returns the number of active entries for a division on a day,
// optionally excluding one entry.
func (r *TimetableRepository) CountActive(ctx context.Context, divisionID string, dayOfWeek int, excludeID string) (int, error) {
	query := "SELECT COUNT(*) FROM timetables WHERE division_id = $1 AND day_of_week = $2 AND is_active = TRUE"
	args := []interface{}{divisionID, dayOfWeek}
	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count active timetable entries: %w", err)
	}
	return count, nil
}

// List returns every timetable entry, most recently scheduled days first.
func (r *TimetableRepository) List(ctx context.Context) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables ORDER BY day_of_week ASC", entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListByDivision returns a division's entries ordered by day.
func (r *TimetableRepository) ListByDivision(ctx context.Context, divisionID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE division_id = $1 ORDER BY day_of_week ASC", entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, divisionID); err != nil {
		return nil, fmt.Errorf("list timetable entries by division: %w", err)
	}
	return entries, nil
}

// FindByID loads a timetable entry by id.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE id = $1", entryColumns)
	var entry models.TimetableEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DivisionSchedule returns a division's active entries resolved for display.
func (r *TimetableRepository) DivisionSchedule(ctx context.Context, divisionID string) ([]models.ScheduleItem, error) {
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
	WHERE t.division_id = $1 AND t.is_active = TRUE
	ORDER BY t.day_of_week ASC, ts.start_time ASC`

	var items []models.ScheduleItem
	if err := r.db.SelectContext(ctx, &items, query, divisionID); err != nil {
		return nil, fmt.Errorf("load division schedule: %w", err)
	}
	return items, nil
}

// InsertBatch stores the entries inside a single transaction. Either every
// entry is persisted or none is; created rows come back with generated ids.
func (r *TimetableRepository) InsertBatch(ctx context.Context, entries []models.TimetableEntry) ([]models.TimetableEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin timetable batch insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	created := make([]models.TimetableEntry, 0, len(entries))
	for i := range entries {
		entry := entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.IsActive = true
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}

		if _, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO timetables (id, division_id, subject_id, faculty_id, room_id, time_slot_id, day_of_week, is_active, created_at) VALUES (:id, :division_id, :subject_id, :faculty_id, :room_id, :time_slot_id, :day_of_week, :is_active, :created_at)`, &entry); err != nil {
			err = fmt.Errorf("insert timetable entry: %w", err)
			return nil, err
		}
		created = append(created, entry)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit timetable batch insert: %w", err)
	}
	return created, nil
}

// Deactivate marks an entry as superseded. Rows are never deleted.
func (r *TimetableRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE timetables SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate timetable entry: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("deactivate timetable entry: no row for id %s", id)
	}
	return nil
}
