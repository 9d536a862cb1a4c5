package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func entryRows(entries ...models.TimetableEntry) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "division_id", "subject_id", "faculty_id", "room_id", "time_slot_id", "day_of_week", "is_active", "created_at"})
	for _, e := range entries {
		rows.AddRow(e.ID, e.DivisionID, e.SubjectID, e.FacultyID, e.RoomID, e.TimeSlotID, e.DayOfWeek, e.IsActive, time.Now())
	}
	return rows
}

func TestTimetableRepositoryListActiveFilters(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = TRUE AND faculty_id = $1 AND time_slot_id = $2 AND day_of_week = $3 AND id <> $4")).
		WithArgs("fac-1", "slot-1", 2, "edit-1").
		WillReturnRows(entryRows(models.TimetableEntry{
			ID: "e1", DivisionID: "div-a", SubjectID: "subj-1",
			FacultyID: "fac-1", RoomID: "room-1", TimeSlotID: "slot-1",
			DayOfWeek: 2, IsActive: true,
		}))

	entries, err := repo.ListActive(context.Background(), models.EntryFilter{
		FacultyID:  "fac-1",
		TimeSlotID: "slot-1",
		DayOfWeek:  2,
		ExcludeID:  "edit-1",
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "e1", entries[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetables WHERE division_id = $1 AND day_of_week = $2 AND is_active = TRUE")).
		WithArgs("div-a", 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountActive(context.Background(), "div-a", 3, "")
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCountActiveWithExclusion(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("AND is_active = TRUE AND id <> $3")).
		WithArgs("div-a", 3, "edit-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountActive(context.Background(), "div-a", 3, "edit-1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryInsertBatchCommits(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.InsertBatch(context.Background(), []models.TimetableEntry{
		{DivisionID: "div-a", SubjectID: "subj-1", FacultyID: "fac-1", RoomID: "room-1", TimeSlotID: "slot-1", DayOfWeek: 1},
		{DivisionID: "div-a", SubjectID: "subj-2", FacultyID: "fac-2", RoomID: "room-2", TimeSlotID: "slot-2", DayOfWeek: 1},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, entry := range created {
		require.NotEmpty(t, entry.ID)
		require.True(t, entry.IsActive)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryInsertBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err := repo.InsertBatch(context.Background(), []models.TimetableEntry{
		{DivisionID: "div-a", SubjectID: "subj-1", FacultyID: "fac-1", RoomID: "room-1", TimeSlotID: "slot-1", DayOfWeek: 1},
		{DivisionID: "div-a", SubjectID: "subj-2", FacultyID: "fac-2", RoomID: "room-2", TimeSlotID: "slot-2", DayOfWeek: 1},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET is_active = FALSE WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "e1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeactivateMissingRow(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET is_active = FALSE WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.Error(t, repo.Deactivate(context.Background(), "missing"))
	require.NoError(t, mock.ExpectationsWereMet())
}
