package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

type facultyLister interface {
	List(ctx context.Context) ([]models.Faculty, error)
}

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type timeSlotLister interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// AvailabilityRequest narrows the search. TimeSlotID and SubjectID are
// optional; SubjectID only tags results with subject display data.
type AvailabilityRequest struct {
	DivisionID string `json:"division_id" validate:"required"`
	DayOfWeek  int    `json:"day_of_week" validate:"required,min=1,max=7"`
	TimeSlotID string `json:"time_slot_id"`
	SubjectID  string `json:"subject_id"`
}

// AvailabilityService enumerates conflict-free (faculty, room, slot)
// combinations for a division and day.
type AvailabilityService struct {
	entries   entryReader
	faculty   facultyLister
	rooms     roomLister
	slots     timeSlotLister
	subjects  subjectFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(entries entryReader, faculty facultyLister, rooms roomLister, slots timeSlotLister, subjects subjectFinder, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		entries:   entries,
		faculty:   faculty,
		rooms:     rooms,
		slots:     slots,
		subjects:  subjects,
		validator: validate,
		logger:    logger,
	}
}

// FindAvailable returns every combination the conflict checker accepts for
// the requested division and day, assuming nothing else is proposed at the
// same time. An empty result means the division's day is full or no slot
// matches the filter; that is a valid answer, not an error.
//
// The day's active entries are loaded once and each combination is checked
// against an in-memory occupancy snapshot, so the cost per combination is
// O(1) rather than a round of store queries.
func (s *AvailabilityService) FindAvailable(ctx context.Context, req AvailabilityRequest) (*models.AvailabilityReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}

	allFaculty, err := s.faculty.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}

	activeRooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}

	activeSlots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	if req.TimeSlotID != "" {
		filtered := activeSlots[:0]
		for _, slot := range activeSlots {
			if slot.ID == req.TimeSlotID {
				filtered = append(filtered, slot)
			}
		}
		activeSlots = filtered
	}

	var subject *models.Subject
	if req.SubjectID != "" {
		subject, err = s.subjects.FindByID(ctx, req.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
	}

	dayEntries, err := s.entries.ListActive(ctx, models.EntryFilter{DayOfWeek: req.DayOfWeek})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedule")
	}

	checker := NewConflictService(newOccupancySnapshot(dayEntries), s.logger)

	combinations := make([]models.AvailableCombination, 0)
	for _, member := range allFaculty {
		for _, room := range activeRooms {
			for _, slot := range activeSlots {
				result, err := checker.CheckConflicts(ctx, ProposedEntry{
					DivisionID: req.DivisionID,
					SubjectID:  req.SubjectID,
					FacultyID:  member.ID,
					RoomID:     room.ID,
					TimeSlotID: slot.ID,
					DayOfWeek:  req.DayOfWeek,
				}, "")
				if err != nil {
					return nil, err
				}
				if result.HasConflict {
					continue
				}

				combinations = append(combinations, models.AvailableCombination{
					Faculty:  member,
					Room:     room,
					TimeSlot: slot,
					Subject:  subject,
				})
			}
		}
	}

	return &models.AvailabilityReport{
		Combinations:   combinations,
		TotalAvailable: len(combinations),
	}, nil
}

// occupancySnapshot is an in-memory entryReader over one day's active
// entries, with occupancy indexes per faculty, room and division slot and a
// per-division session count.
type occupancySnapshot struct {
	facultySlot  map[string][]models.TimetableEntry
	roomSlot     map[string][]models.TimetableEntry
	divisionSlot map[string][]models.TimetableEntry
	divisionDay  map[string]int
	entries      []models.TimetableEntry
}

func newOccupancySnapshot(entries []models.TimetableEntry) *occupancySnapshot {
	snap := &occupancySnapshot{
		facultySlot:  make(map[string][]models.TimetableEntry),
		roomSlot:     make(map[string][]models.TimetableEntry),
		divisionSlot: make(map[string][]models.TimetableEntry),
		divisionDay:  make(map[string]int),
		entries:      entries,
	}
	for _, entry := range entries {
		if !entry.IsActive {
			continue
		}
		snap.facultySlot[slotKey(entry.FacultyID, entry.TimeSlotID, entry.DayOfWeek)] = append(snap.facultySlot[slotKey(entry.FacultyID, entry.TimeSlotID, entry.DayOfWeek)], entry)
		snap.roomSlot[slotKey(entry.RoomID, entry.TimeSlotID, entry.DayOfWeek)] = append(snap.roomSlot[slotKey(entry.RoomID, entry.TimeSlotID, entry.DayOfWeek)], entry)
		snap.divisionSlot[slotKey(entry.DivisionID, entry.TimeSlotID, entry.DayOfWeek)] = append(snap.divisionSlot[slotKey(entry.DivisionID, entry.TimeSlotID, entry.DayOfWeek)], entry)
		snap.divisionDay[dayKey(entry.DivisionID, entry.DayOfWeek)]++
	}
	return snap
}

func (s *occupancySnapshot) ListActive(_ context.Context, filter models.EntryFilter) ([]models.TimetableEntry, error) {
	var matches []models.TimetableEntry
	switch {
	case filter.FacultyID != "" && filter.TimeSlotID != "":
		matches = s.facultySlot[slotKey(filter.FacultyID, filter.TimeSlotID, filter.DayOfWeek)]
	case filter.RoomID != "" && filter.TimeSlotID != "":
		matches = s.roomSlot[slotKey(filter.RoomID, filter.TimeSlotID, filter.DayOfWeek)]
	case filter.DivisionID != "" && filter.TimeSlotID != "":
		matches = s.divisionSlot[slotKey(filter.DivisionID, filter.TimeSlotID, filter.DayOfWeek)]
	default:
		for _, entry := range s.entries {
			if entry.IsActive && matchesFilter(entry, filter) {
				matches = append(matches, entry)
			}
		}
		return excludeEntry(matches, filter.ExcludeID), nil
	}
	return excludeEntry(matches, filter.ExcludeID), nil
}

func (s *occupancySnapshot) CountActive(_ context.Context, divisionID string, dayOfWeek int, excludeID string) (int, error) {
	count := s.divisionDay[dayKey(divisionID, dayOfWeek)]
	if excludeID != "" {
		for _, entry := range s.entries {
			if entry.ID == excludeID && entry.IsActive && entry.DivisionID == divisionID && entry.DayOfWeek == dayOfWeek {
				count--
				break
			}
		}
	}
	return count, nil
}

func matchesFilter(entry models.TimetableEntry, filter models.EntryFilter) bool {
	if filter.DivisionID != "" && entry.DivisionID != filter.DivisionID {
		return false
	}
	if filter.FacultyID != "" && entry.FacultyID != filter.FacultyID {
		return false
	}
	if filter.RoomID != "" && entry.RoomID != filter.RoomID {
		return false
	}
	if filter.TimeSlotID != "" && entry.TimeSlotID != filter.TimeSlotID {
		return false
	}
	if filter.DayOfWeek != 0 && entry.DayOfWeek != filter.DayOfWeek {
		return false
	}
	return true
}

func excludeEntry(entries []models.TimetableEntry, excludeID string) []models.TimetableEntry {
	if excludeID == "" {
		return entries
	}
	filtered := make([]models.TimetableEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID != excludeID {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func slotKey(id, slotID string, day int) string {
	return id + "|" + slotID + "|" + strconv.Itoa(day)
}

func dayKey(id string, day int) string {
	return id + "|" + strconv.Itoa(day)
}
