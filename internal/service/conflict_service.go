package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

// dailySlotQuota caps active sessions per (division, day). Fixed policy for
// now; all checking logic goes through DailySlotQuota so this can move to
// configuration without touching the checks.
const dailySlotQuota = 3

// DailySlotQuota returns the maximum number of active sessions a division
// may have on a single day.
func DailySlotQuota() int {
	return dailySlotQuota
}

// entryReader is the read-only view of the active entry set the checker
// needs. Backed by TimetableRepository in production and by in-memory
// snapshots in the availability search and in tests.
type entryReader interface {
	ListActive(ctx context.Context, filter models.EntryFilter) ([]models.TimetableEntry, error)
	CountActive(ctx context.Context, divisionID string, dayOfWeek int, excludeID string) (int, error)
}

// ProposedEntry describes one assignment to be checked or committed.
type ProposedEntry struct {
	DivisionID string `json:"division_id" validate:"required"`
	SubjectID  string `json:"subject_id" validate:"required"`
	FacultyID  string `json:"faculty_id" validate:"required"`
	RoomID     string `json:"room_id" validate:"required"`
	TimeSlotID string `json:"time_slot_id" validate:"required"`
	DayOfWeek  int    `json:"day_of_week" validate:"required,min=1,max=7"`
}

// ConflictService evaluates proposed timetable entries against the active
// entry set. Read-only; callers decide what to do with the result.
type ConflictService struct {
	entries entryReader
	logger  *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(entries entryReader, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{entries: entries, logger: logger}
}

// CheckConflicts runs all four invariant checks for the proposed entry and
// returns the complete list of violations. excludeEntryID removes one
// existing entry from every comparison set, used when re-checking an entry
// that is being edited. All checks run even after one fails so callers can
// report every problem at once.
func (s *ConflictService) CheckConflicts(ctx context.Context, proposed ProposedEntry, excludeEntryID string) (*models.ConflictResult, error) {
	var conflicts []models.Conflict

	facultyClash, err := s.findClash(ctx, models.EntryFilter{
		FacultyID:  proposed.FacultyID,
		TimeSlotID: proposed.TimeSlotID,
		DayOfWeek:  proposed.DayOfWeek,
		ExcludeID:  excludeEntryID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty availability")
	}
	if facultyClash != nil {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictFaculty,
			Message: "faculty is already scheduled during this time slot",
			Details: clashDetails(facultyClash),
		})
	}

	roomClash, err := s.findClash(ctx, models.EntryFilter{
		RoomID:     proposed.RoomID,
		TimeSlotID: proposed.TimeSlotID,
		DayOfWeek:  proposed.DayOfWeek,
		ExcludeID:  excludeEntryID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room availability")
	}
	if roomClash != nil {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictRoom,
			Message: "room is already occupied during this time slot",
			Details: clashDetails(roomClash),
		})
	}

	divisionClash, err := s.findClash(ctx, models.EntryFilter{
		DivisionID: proposed.DivisionID,
		TimeSlotID: proposed.TimeSlotID,
		DayOfWeek:  proposed.DayOfWeek,
		ExcludeID:  excludeEntryID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check division availability")
	}
	if divisionClash != nil {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictDivision,
			Message: "division already has a class scheduled during this time slot",
			Details: clashDetails(divisionClash),
		})
	}

	count, err := s.entries.CountActive(ctx, proposed.DivisionID, proposed.DayOfWeek, excludeEntryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check daily slot quota")
	}
	if count >= DailySlotQuota() {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictStudentLimit,
			Message: fmt.Sprintf("students can only have %d slots per day; current day has %d slots", DailySlotQuota(), count),
			Details: map[string]interface{}{
				"currentCount": count,
				"maxLimit":     DailySlotQuota(),
			},
		})
	}

	return &models.ConflictResult{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

// findClash returns the first active entry matching the filter, or nil.
func (s *ConflictService) findClash(ctx context.Context, filter models.EntryFilter) (*models.TimetableEntry, error) {
	existing, err := s.entries.ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return &existing[0], nil
}

func clashDetails(entry *models.TimetableEntry) map[string]interface{} {
	return map[string]interface{}{
		"entryId":    entry.ID,
		"divisionId": entry.DivisionID,
		"subjectId":  entry.SubjectID,
		"facultyId":  entry.FacultyID,
		"roomId":     entry.RoomID,
		"timeSlotId": entry.TimeSlotID,
		"dayOfWeek":  entry.DayOfWeek,
	}
}
