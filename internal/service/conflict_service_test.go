package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
)

// fakeEntryStore is a slice-backed entryReader with the same filter
// semantics as the SQL repository.
type fakeEntryStore struct {
	entries []models.TimetableEntry

	// countErr makes CountActive fail once countCalls exceeds countOKCalls.
	countErr     error
	countOKCalls int
	countCalls   int
}

func (f *fakeEntryStore) ListActive(_ context.Context, filter models.EntryFilter) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, entry := range f.entries {
		if !entry.IsActive {
			continue
		}
		if filter.ExcludeID != "" && entry.ID == filter.ExcludeID {
			continue
		}
		if matchesFilter(entry, filter) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) CountActive(_ context.Context, divisionID string, dayOfWeek int, excludeID string) (int, error) {
	f.countCalls++
	if f.countErr != nil && f.countCalls > f.countOKCalls {
		return 0, f.countErr
	}

	count := 0
	for _, entry := range f.entries {
		if !entry.IsActive || entry.DivisionID != divisionID || entry.DayOfWeek != dayOfWeek {
			continue
		}
		if excludeID != "" && entry.ID == excludeID {
			continue
		}
		count++
	}
	return count, nil
}

func activeEntry(id, divisionID, facultyID, roomID, timeSlotID string, day int) models.TimetableEntry {
	return models.TimetableEntry{
		ID:         id,
		DivisionID: divisionID,
		SubjectID:  "subj-1",
		FacultyID:  facultyID,
		RoomID:     roomID,
		TimeSlotID: timeSlotID,
		DayOfWeek:  day,
		IsActive:   true,
	}
}

func TestCheckConflictsCleanEntry(t *testing.T) {
	store := &fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-1", "room-1", "slot-1", 1),
	}}
	svc := NewConflictService(store, zap.NewNop())

	result, err := svc.CheckConflicts(context.Background(), ProposedEntry{
		DivisionID: "div-b",
		SubjectID:  "subj-2",
		FacultyID:  "fac-2",
		RoomID:     "room-2",
		TimeSlotID: "slot-1",
		DayOfWeek:  1,
	}, "")
	require.NoError(t, err)
	assert.False(t, result.HasConflict)
	assert.Empty(t, result.Conflicts)
}

func TestCheckConflictsFacultyDoubleBooking(t *testing.T) {
	store := &fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-1", "room-1", "slot-1", 2),
	}}
	svc := NewConflictService(store, zap.NewNop())

	result, err := svc.CheckConflicts(context.Background(), ProposedEntry{
		DivisionID: "div-b",
		SubjectID:  "subj-2",
		FacultyID:  "fac-1",
		RoomID:     "room-2",
		TimeSlotID: "slot-1",
		DayOfWeek:  2,
	}, "")
	require.NoError(t, err)
	require.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictFaculty, result.Conflicts[0].Kind)
	assert.Equal(t, "e1", result.Conflicts[0].Details["entryId"])
}

func TestCheckConflictsReportsAllViolations(t *testing.T) {
	// Same faculty, room and division all taken at (day 3, slot-2), and the
	// division already has three sessions that day.
	store := &fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-1", "room-1", "slot-2", 3),
		activeEntry("e2", "div-a", "fac-2", "room-2", "slot-3", 3),
		activeEntry("e3", "div-a", "fac-3", "room-3", "slot-4", 3),
	}}
	svc := NewConflictService(store, zap.NewNop())

	result, err := svc.CheckConflicts(context.Background(), ProposedEntry{
		DivisionID: "div-a",
		SubjectID:  "subj-9",
		FacultyID:  "fac-1",
		RoomID:     "room-1",
		TimeSlotID: "slot-2",
		DayOfWeek:  3,
	}, "")
	require.NoError(t, err)
	require.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 4)

	kinds := make([]models.ConflictKind, 0, len(result.Conflicts))
	for _, conflict := range result.Conflicts {
		kinds = append(kinds, conflict.Kind)
	}
	assert.ElementsMatch(t, []models.ConflictKind{
		models.ConflictFaculty,
		models.ConflictRoom,
		models.ConflictDivision,
		models.ConflictStudentLimit,
	}, kinds)
}

func TestCheckConflictsDailyQuotaBoundary(t *testing.T) {
	store := &fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-1", "room-1", "slot-1", 1),
		activeEntry("e2", "div-a", "fac-2", "room-2", "slot-2", 1),
	}}
	svc := NewConflictService(store, zap.NewNop())

	proposed := ProposedEntry{
		DivisionID: "div-a",
		SubjectID:  "subj-1",
		FacultyID:  "fac-3",
		RoomID:     "room-3",
		TimeSlotID: "slot-3",
		DayOfWeek:  1,
	}

	// Two committed sessions: the third is still allowed.
	result, err := svc.CheckConflicts(context.Background(), proposed, "")
	require.NoError(t, err)
	assert.False(t, result.HasConflict)

	// Third session committed: the fourth hits the quota.
	store.entries = append(store.entries, activeEntry("e3", "div-a", "fac-3", "room-3", "slot-3", 1))
	proposed.FacultyID = "fac-4"
	proposed.RoomID = "room-4"
	proposed.TimeSlotID = "slot-4"

	result, err = svc.CheckConflicts(context.Background(), proposed, "")
	require.NoError(t, err)
	require.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictStudentLimit, result.Conflicts[0].Kind)
	assert.Equal(t, 3, result.Conflicts[0].Details["currentCount"])
	assert.Equal(t, DailySlotQuota(), result.Conflicts[0].Details["maxLimit"])
}

func TestCheckConflictsExcludesEditedEntry(t *testing.T) {
	store := &fakeEntryStore{entries: []models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-1", "room-1", "slot-1", 1),
	}}
	svc := NewConflictService(store, zap.NewNop())

	// Re-checking e1's own assignment must not report it as a clash.
	result, err := svc.CheckConflicts(context.Background(), ProposedEntry{
		DivisionID: "div-a",
		SubjectID:  "subj-1",
		FacultyID:  "fac-1",
		RoomID:     "room-1",
		TimeSlotID: "slot-1",
		DayOfWeek:  1,
	}, "e1")
	require.NoError(t, err)
	assert.False(t, result.HasConflict)
}

func TestCheckConflictsIgnoresInactiveEntries(t *testing.T) {
	retired := activeEntry("e1", "div-a", "fac-1", "room-1", "slot-1", 1)
	retired.IsActive = false
	store := &fakeEntryStore{entries: []models.TimetableEntry{retired}}
	svc := NewConflictService(store, zap.NewNop())

	result, err := svc.CheckConflicts(context.Background(), ProposedEntry{
		DivisionID: "div-a",
		SubjectID:  "subj-1",
		FacultyID:  "fac-1",
		RoomID:     "room-1",
		TimeSlotID: "slot-1",
		DayOfWeek:  1,
	}, "")
	require.NoError(t, err)
	assert.False(t, result.HasConflict)
}
