package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

type stubFacultyLister struct {
	members []models.Faculty
}

func (s *stubFacultyLister) List(_ context.Context) ([]models.Faculty, error) {
	return s.members, nil
}

type stubRoomLister struct {
	rooms []models.Room
}

func (s *stubRoomLister) ListActive(_ context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type stubSlotLister struct {
	slots []models.TimeSlot
}

func (s *stubSlotLister) ListActive(_ context.Context) ([]models.TimeSlot, error) {
	return s.slots, nil
}

type stubSubjectFinder struct {
	subjects map[string]*models.Subject
}

func (s *stubSubjectFinder) FindByID(_ context.Context, id string) (*models.Subject, error) {
	subject, ok := s.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func availabilityFixture(entries []models.TimetableEntry) *AvailabilityService {
	return NewAvailabilityService(
		&fakeEntryStore{entries: entries},
		&stubFacultyLister{members: []models.Faculty{{ID: "fac-1"}, {ID: "fac-2"}}},
		&stubRoomLister{rooms: []models.Room{{ID: "room-1", IsActive: true}, {ID: "room-2", IsActive: true}}},
		&stubSlotLister{slots: []models.TimeSlot{{ID: "slot-1", IsActive: true}, {ID: "slot-2", IsActive: true}}},
		&stubSubjectFinder{subjects: map[string]*models.Subject{"subj-1": {ID: "subj-1", Name: "Algorithms"}}},
		nil,
		zap.NewNop(),
	)
}

func TestFindAvailableEmptyDay(t *testing.T) {
	svc := availabilityFixture(nil)

	report, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
	})
	require.NoError(t, err)
	// 2 faculty x 2 rooms x 2 slots, nothing occupied.
	assert.Equal(t, 8, report.TotalAvailable)
	assert.Len(t, report.Combinations, 8)
}

func TestFindAvailableExcludesOccupiedCombinations(t *testing.T) {
	svc := availabilityFixture([]models.TimetableEntry{
		activeEntry("e1", "div-b", "fac-1", "room-1", "slot-1", 1),
	})

	report, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
	})
	require.NoError(t, err)

	// fac-1 and room-1 are both taken at slot-1; the only surviving slot-1
	// combination is (fac-2, room-2). Slot-2 keeps all four.
	assert.Equal(t, 5, report.TotalAvailable)
	for _, combo := range report.Combinations {
		if combo.TimeSlot.ID == "slot-1" {
			assert.Equal(t, "fac-2", combo.Faculty.ID)
			assert.Equal(t, "room-2", combo.Room.ID)
		}
	}
}

func TestFindAvailableDivisionSlotTaken(t *testing.T) {
	svc := availabilityFixture([]models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-9", "room-9", "slot-1", 1),
	})

	report, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
	})
	require.NoError(t, err)

	// The division itself is busy at slot-1, so only slot-2 combinations remain.
	assert.Equal(t, 4, report.TotalAvailable)
	for _, combo := range report.Combinations {
		assert.Equal(t, "slot-2", combo.TimeSlot.ID)
	}
}

func TestFindAvailableQuotaFullDivision(t *testing.T) {
	svc := availabilityFixture([]models.TimetableEntry{
		activeEntry("e1", "div-a", "fac-9", "room-9", "slot-3", 1),
		activeEntry("e2", "div-a", "fac-8", "room-8", "slot-4", 1),
		activeEntry("e3", "div-a", "fac-7", "room-7", "slot-5", 1),
	})

	report, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
	})
	require.NoError(t, err)
	assert.Zero(t, report.TotalAvailable)
	assert.Empty(t, report.Combinations)
}

func TestFindAvailableSlotFilter(t *testing.T) {
	svc := availabilityFixture(nil)

	report, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
		TimeSlotID: "slot-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalAvailable)
	for _, combo := range report.Combinations {
		assert.Equal(t, "slot-2", combo.TimeSlot.ID)
	}
}

func TestFindAvailableIsCompleteAndSound(t *testing.T) {
	// Partition check over the full faculty x room x slot product: every
	// returned combination passes a fresh conflict check, and every omitted
	// one fails it. Nothing is dropped without a reason.
	entries := []models.TimetableEntry{
		activeEntry("e1", "div-b", "fac-1", "room-1", "slot-1", 1),
		activeEntry("e2", "div-a", "fac-2", "room-2", "slot-2", 1),
	}
	svc := availabilityFixture(entries)
	checker := NewConflictService(&fakeEntryStore{entries: entries}, zap.NewNop())

	report, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
	})
	require.NoError(t, err)

	returned := make(map[string]bool)
	for _, combo := range report.Combinations {
		returned[combo.Faculty.ID+"|"+combo.Room.ID+"|"+combo.TimeSlot.ID] = true
	}

	for _, facultyID := range []string{"fac-1", "fac-2"} {
		for _, roomID := range []string{"room-1", "room-2"} {
			for _, slotID := range []string{"slot-1", "slot-2"} {
				result, err := checker.CheckConflicts(context.Background(), ProposedEntry{
					DivisionID: "div-a",
					SubjectID:  "subj-1",
					FacultyID:  facultyID,
					RoomID:     roomID,
					TimeSlotID: slotID,
					DayOfWeek:  1,
				}, "")
				require.NoError(t, err)

				key := facultyID + "|" + roomID + "|" + slotID
				assert.Equal(t, !result.HasConflict, returned[key],
					"combination %s should be returned iff it is conflict-free", key)
			}
		}
	}
}

func TestFindAvailableTagsSubject(t *testing.T) {
	svc := availabilityFixture(nil)

	report, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
		SubjectID:  "subj-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.Combinations)
	for _, combo := range report.Combinations {
		require.NotNil(t, combo.Subject)
		assert.Equal(t, "Algorithms", combo.Subject.Name)
	}
}

func TestFindAvailableUnknownSubject(t *testing.T) {
	svc := availabilityFixture(nil)

	_, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  1,
		SubjectID:  "missing",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFindAvailableValidatesRequest(t *testing.T) {
	svc := availabilityFixture(nil)

	_, err := svc.FindAvailable(context.Background(), AvailabilityRequest{
		DivisionID: "div-a",
		DayOfWeek:  9,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
