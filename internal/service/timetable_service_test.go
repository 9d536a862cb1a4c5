package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

// fakeTimetableRepo is a slice-backed timetableRepository.
type fakeTimetableRepo struct {
	fakeEntryStore
	insertCalls int
	insertErr   error
	schedule    []models.ScheduleItem
}

func (f *fakeTimetableRepo) List(_ context.Context) ([]models.TimetableEntry, error) {
	return f.entries, nil
}

func (f *fakeTimetableRepo) ListByDivision(_ context.Context, divisionID string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, entry := range f.entries {
		if entry.DivisionID == divisionID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeTimetableRepo) FindByID(_ context.Context, id string) (*models.TimetableEntry, error) {
	for i := range f.entries {
		if f.entries[i].ID == id {
			return &f.entries[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTimetableRepo) DivisionSchedule(_ context.Context, _ string) ([]models.ScheduleItem, error) {
	return f.schedule, nil
}

func (f *fakeTimetableRepo) InsertBatch(_ context.Context, entries []models.TimetableEntry) ([]models.TimetableEntry, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	created := make([]models.TimetableEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		f.entries = append(f.entries, entry)
		created = append(created, entry)
	}
	return created, nil
}

func (f *fakeTimetableRepo) Deactivate(_ context.Context, id string) error {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].IsActive = false
			return nil
		}
	}
	return sql.ErrNoRows
}

type stubStudentResolver struct {
	student *models.Student
}

func (s *stubStudentResolver) FindByUserID(_ context.Context, _ string) (*models.Student, error) {
	if s.student == nil {
		return nil, sql.ErrNoRows
	}
	return s.student, nil
}

func newTimetableFixture(repo *fakeTimetableRepo) *TimetableService {
	checker := NewConflictService(repo, zap.NewNop())
	return NewTimetableService(repo, checker, &stubStudentResolver{}, nil, zap.NewNop())
}

func proposedAt(divisionID, facultyID, roomID, slotID string, day int) ProposedEntry {
	return ProposedEntry{
		DivisionID: divisionID,
		SubjectID:  "subj-1",
		FacultyID:  facultyID,
		RoomID:     roomID,
		TimeSlotID: slotID,
		DayOfWeek:  day,
	}
}

func TestCommitCleanBatch(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := newTimetableFixture(repo)

	result, err := svc.Commit(context.Background(), BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
		proposedAt("div-a", "fac-2", "room-2", "slot-2", 1),
		proposedAt("div-a", "fac-3", "room-3", "slot-3", 1),
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCreated)
	assert.Equal(t, 1, repo.insertCalls)
	for _, entry := range result.Created {
		assert.NotEmpty(t, entry.ID)
		assert.True(t, entry.IsActive)
	}
}

func TestCommitRejectsWholeBatchOnOneConflict(t *testing.T) {
	repo := &fakeTimetableRepo{fakeEntryStore: fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-b", "fac-2", "room-9", "slot-2", 1),
	}}}
	svc := newTimetableFixture(repo)

	_, err := svc.Commit(context.Background(), BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
		proposedAt("div-a", "fac-2", "room-2", "slot-2", 1), // fac-2 already teaches div-b here
	}})
	require.Error(t, err)

	var batchErr *models.BatchConflictError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.PerEntry, 1)
	assert.Equal(t, 1, batchErr.PerEntry[0].Index)
	require.Len(t, batchErr.PerEntry[0].Conflicts, 1)
	assert.Equal(t, models.ConflictFaculty, batchErr.PerEntry[0].Conflicts[0].Kind)

	// Nothing persisted.
	assert.Zero(t, repo.insertCalls)
	assert.Len(t, repo.entries, 1)
}

func TestCommitDetectsIntraBatchClash(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := newTimetableFixture(repo)

	_, err := svc.Commit(context.Background(), BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
		proposedAt("div-b", "fac-1", "room-2", "slot-1", 1), // same faculty, same slot
	}})
	require.Error(t, err)

	var batchErr *models.BatchConflictError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.PerEntry, 1)
	assert.Equal(t, 1, batchErr.PerEntry[0].Index)
	assert.Equal(t, models.ConflictFaculty, batchErr.PerEntry[0].Conflicts[0].Kind)
	assert.Zero(t, repo.insertCalls)
}

func TestCommitDetectsIntraBatchQuotaOverflow(t *testing.T) {
	repo := &fakeTimetableRepo{fakeEntryStore: fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-9", "room-9", "slot-9", 1),
		activeEntry("e2", "div-a", "fac-8", "room-8", "slot-8", 1),
	}}}
	svc := newTimetableFixture(repo)

	// Two committed sessions plus two batch entries would push div-a past
	// the three-per-day quota on day 1.
	_, err := svc.Commit(context.Background(), BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
		proposedAt("div-a", "fac-2", "room-2", "slot-2", 1),
	}})
	require.Error(t, err)

	var batchErr *models.BatchConflictError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.PerEntry, 1)
	assert.Equal(t, 1, batchErr.PerEntry[0].Index)
	assert.Equal(t, models.ConflictStudentLimit, batchErr.PerEntry[0].Conflicts[0].Kind)
	assert.Zero(t, repo.insertCalls)
}

func TestCommitValidatesPayload(t *testing.T) {
	svc := newTimetableFixture(&fakeTimetableRepo{})

	_, err := svc.Commit(context.Background(), BatchCreateRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Commit(context.Background(), BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 8),
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCommitSurfacesInsertFailure(t *testing.T) {
	repo := &fakeTimetableRepo{insertErr: errors.New("driver failure")}
	svc := newTimetableFixture(repo)

	_, err := svc.Commit(context.Background(), BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestCommitSurfacesQuotaCountFailure(t *testing.T) {
	// The second entry's quota check against committed state must not be
	// skipped when the store is failing; the whole batch errors instead.
	repo := &fakeTimetableRepo{fakeEntryStore: fakeEntryStore{
		countErr:     errors.New("driver failure"),
		countOKCalls: 2,
	}}
	svc := newTimetableFixture(repo)

	_, err := svc.Commit(context.Background(), BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
		proposedAt("div-a", "fac-2", "room-2", "slot-2", 1),
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, repo.insertCalls)
}

func TestConcurrentCommitsSerialize(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := newTimetableFixture(repo)

	batch := BatchCreateRequest{Entries: []ProposedEntry{
		proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
	}}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Commit(context.Background(), batch)
		}(i)
	}
	wg.Wait()

	// Exactly one writer wins the slot; the loser sees it as committed
	// state and gets the conflict report, never a double insert.
	var succeeded, conflicted int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var batchErr *models.BatchConflictError
		require.ErrorAs(t, err, &batchErr)
		conflicted++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, 1, repo.insertCalls)
	assert.Len(t, repo.entries, 1)
}

func TestCheckUsesExclusion(t *testing.T) {
	repo := &fakeTimetableRepo{fakeEntryStore: fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-1", "room-1", "slot-1", 1),
	}}}
	svc := newTimetableFixture(repo)

	result, err := svc.Check(context.Background(), CheckRequest{
		ProposedEntry:  proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
		ExcludeEntryID: "e1",
	})
	require.NoError(t, err)
	assert.False(t, result.HasConflict)

	result, err = svc.Check(context.Background(), CheckRequest{
		ProposedEntry: proposedAt("div-a", "fac-1", "room-1", "slot-1", 1),
	})
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
}

func TestMyScheduleResolvesDivision(t *testing.T) {
	repo := &fakeTimetableRepo{schedule: []models.ScheduleItem{{SubjectName: "Algorithms"}}}
	checker := NewConflictService(repo, zap.NewNop())
	svc := NewTimetableService(repo, checker, &stubStudentResolver{student: &models.Student{ID: "stu-1", DivisionID: "div-a"}}, nil, zap.NewNop())

	items, err := svc.MySchedule(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Algorithms", items[0].SubjectName)
}

func TestMyScheduleWithoutStudentRecord(t *testing.T) {
	svc := newTimetableFixture(&fakeTimetableRepo{})

	_, err := svc.MySchedule(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeactivate(t *testing.T) {
	repo := &fakeTimetableRepo{fakeEntryStore: fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-1", "room-1", "slot-1", 1),
	}}}
	svc := newTimetableFixture(repo)

	require.NoError(t, svc.Deactivate(context.Background(), "e1"))
	assert.False(t, repo.entries[0].IsActive)

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
