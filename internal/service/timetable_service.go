package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
	"github.com/campusdesk/timetable-api/pkg/export"
)

type timetableRepository interface {
	entryReader
	List(ctx context.Context) ([]models.TimetableEntry, error)
	ListByDivision(ctx context.Context, divisionID string) ([]models.TimetableEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntry, error)
	DivisionSchedule(ctx context.Context, divisionID string) ([]models.ScheduleItem, error)
	InsertBatch(ctx context.Context, entries []models.TimetableEntry) ([]models.TimetableEntry, error)
	Deactivate(ctx context.Context, id string) error
}

type studentResolver interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

// BatchCreateRequest holds the proposed entries for one commit attempt.
type BatchCreateRequest struct {
	Entries []ProposedEntry `json:"entries" validate:"required,min=1,dive"`
}

// TimetableService validates and commits timetable batches and serves
// timetable views.
type TimetableService struct {
	repo      timetableRepository
	checker   *ConflictService
	students  studentResolver
	validator *validator.Validate
	logger    *zap.Logger

	// commitMu serializes the check-then-insert window. The partial unique
	// indexes in the schema remain the authoritative guard across processes.
	commitMu sync.Mutex
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(repo timetableRepository, checker *ConflictService, students studentResolver, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		repo:      repo,
		checker:   checker,
		students:  students,
		validator: validate,
		logger:    logger,
	}
}

// Commit validates the whole batch and either persists every entry in one
// transaction or persists none. Each entry is checked against the committed
// active set and against entries earlier in the same batch; on any conflict
// the full per-entry report comes back and nothing is written.
func (s *TimetableService) Commit(ctx context.Context, req BatchCreateRequest) (*models.BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable batch payload")
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	claims := newBatchClaims()
	var failed []models.EntryConflicts
	toCreate := make([]models.TimetableEntry, 0, len(req.Entries))

	for i, proposed := range req.Entries {
		result, err := s.checker.CheckConflicts(ctx, proposed, "")
		if err != nil {
			return nil, err
		}

		batchConflicts, err := claims.conflictsWith(ctx, s.repo, proposed)
		if err != nil {
			return nil, err
		}

		conflicts := append(result.Conflicts, batchConflicts...)
		if len(conflicts) > 0 {
			failed = append(failed, models.EntryConflicts{
				Index:     i,
				Entry:     toEntry(proposed),
				Conflicts: conflicts,
			})
			continue
		}

		claims.add(proposed)
		toCreate = append(toCreate, toEntry(proposed))
	}

	if len(failed) > 0 {
		s.logger.Info("timetable batch rejected",
			zap.Int("entries", len(req.Entries)),
			zap.Int("conflicting", len(failed)),
		)
		return nil, appErrors.Wrap(&models.BatchConflictError{PerEntry: failed}, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "timetable batch contains scheduling conflicts")
	}

	created, err := s.repo.InsertBatch(ctx, toCreate)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race against another writer; the index caught it.
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "timetable slot was taken by a concurrent commit")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable batch")
	}

	s.logger.Info("timetable batch committed", zap.Int("created", len(created)))
	return &models.BatchResult{Created: created, TotalCreated: len(created)}, nil
}

// CheckRequest asks whether one assignment could be committed as-is.
// ExcludeEntryID removes an existing entry from the comparison set when that
// entry is being re-checked during an edit.
type CheckRequest struct {
	ProposedEntry
	ExcludeEntryID string `json:"exclude_entry_id"`
}

// Check runs the conflict checks for a single proposed entry without
// committing anything.
func (s *TimetableService) Check(ctx context.Context, req CheckRequest) (*models.ConflictResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	return s.checker.CheckConflicts(ctx, req.ProposedEntry, req.ExcludeEntryID)
}

// List returns every timetable entry.
func (s *TimetableService) List(ctx context.Context) ([]models.TimetableEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}
	return entries, nil
}

// ListByDivision returns a division's timetable entries.
func (s *TimetableService) ListByDivision(ctx context.Context, divisionID string) ([]models.TimetableEntry, error) {
	entries, err := s.repo.ListByDivision(ctx, divisionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list division timetable")
	}
	return entries, nil
}

// MySchedule resolves the caller's division through their student record and
// returns the division's active schedule for display.
func (s *TimetableService) MySchedule(ctx context.Context, userID string) ([]models.ScheduleItem, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no student record for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	items, err := s.repo.DivisionSchedule(ctx, student.DivisionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return items, nil
}

// ExportSchedule renders a division's active schedule as CSV.
func (s *TimetableService) ExportSchedule(ctx context.Context, divisionID string) ([]byte, error) {
	items, err := s.repo.DivisionSchedule(ctx, divisionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	records := make([][]string, 0, len(items))
	for _, item := range items {
		records = append(records, []string{
			strconv.Itoa(item.DayOfWeek),
			item.SlotName,
			item.StartTime,
			item.EndTime,
			item.SubjectCode,
			item.SubjectName,
			item.FacultyName,
			item.RoomName,
		})
	}

	payload, err := export.CSV([]string{"day_of_week", "slot", "start_time", "end_time", "subject_code", "subject", "faculty", "room"}, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}
	return payload, nil
}

// Deactivate supersedes an entry. The row stays for history; only active
// entries participate in conflict checks.
func (s *TimetableService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate timetable entry")
	}
	return nil
}

func toEntry(proposed ProposedEntry) models.TimetableEntry {
	return models.TimetableEntry{
		DivisionID: proposed.DivisionID,
		SubjectID:  proposed.SubjectID,
		FacultyID:  proposed.FacultyID,
		RoomID:     proposed.RoomID,
		TimeSlotID: proposed.TimeSlotID,
		DayOfWeek:  proposed.DayOfWeek,
		IsActive:   true,
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// batchClaims tracks the keys already taken by accepted entries earlier in
// the same batch, so mutually clashing siblings are detected even though
// none of them is committed yet.
type batchClaims struct {
	faculty  map[string]struct{}
	room     map[string]struct{}
	division map[string]struct{}
	dayCount map[string]int
}

func newBatchClaims() *batchClaims {
	return &batchClaims{
		faculty:  make(map[string]struct{}),
		room:     make(map[string]struct{}),
		division: make(map[string]struct{}),
		dayCount: make(map[string]int),
	}
}

func (c *batchClaims) add(p ProposedEntry) {
	c.faculty[slotKey(p.FacultyID, p.TimeSlotID, p.DayOfWeek)] = struct{}{}
	c.room[slotKey(p.RoomID, p.TimeSlotID, p.DayOfWeek)] = struct{}{}
	c.division[slotKey(p.DivisionID, p.TimeSlotID, p.DayOfWeek)] = struct{}{}
	c.dayCount[dayKey(p.DivisionID, p.DayOfWeek)]++
}

// conflictsWith reports clashes between the proposed entry and entries
// already accepted in this batch. The quota check combines claimed sessions
// with the committed count; the case where the committed count alone exceeds
// the quota is already reported by the checker.
func (c *batchClaims) conflictsWith(ctx context.Context, repo timetableRepository, p ProposedEntry) ([]models.Conflict, error) {
	var conflicts []models.Conflict

	if _, taken := c.faculty[slotKey(p.FacultyID, p.TimeSlotID, p.DayOfWeek)]; taken {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictFaculty,
			Message: "faculty is already scheduled by an earlier entry in this batch",
		})
	}
	if _, taken := c.room[slotKey(p.RoomID, p.TimeSlotID, p.DayOfWeek)]; taken {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictRoom,
			Message: "room is already occupied by an earlier entry in this batch",
		})
	}
	if _, taken := c.division[slotKey(p.DivisionID, p.TimeSlotID, p.DayOfWeek)]; taken {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictDivision,
			Message: "division slot is already claimed by an earlier entry in this batch",
		})
	}

	if claimed := c.dayCount[dayKey(p.DivisionID, p.DayOfWeek)]; claimed > 0 {
		committed, err := repo.CountActive(ctx, p.DivisionID, p.DayOfWeek, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count division sessions")
		}
		if committed < DailySlotQuota() && committed+claimed >= DailySlotQuota() {
			conflicts = append(conflicts, models.Conflict{
				Kind:    models.ConflictStudentLimit,
				Message: "batch would exceed the division's daily slot quota",
				Details: map[string]interface{}{
					"currentCount": committed + claimed,
					"maxLimit":     DailySlotQuota(),
				},
			})
		}
	}

	return conflicts, nil
}
