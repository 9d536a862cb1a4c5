package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	ListActive(ctx context.Context) ([]models.Room, error)
	Create(ctx context.Context, room *models.Room) error
}

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
}

type timeSlotRepository interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
}

// CreateRoomRequest describes payload for creating a room.
type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=classroom lab"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// CreateSubjectRequest describes payload for creating a subject.
type CreateSubjectRequest struct {
	Name         string  `json:"name" validate:"required"`
	Code         string  `json:"code" validate:"required"`
	DepartmentID *string `json:"department_id"`
	Credits      int     `json:"credits" validate:"required,min=1,max=10"`
	Type         string  `json:"type" validate:"required,oneof=theory practical common"`
}

// CreateTimeSlotRequest describes payload for creating a time slot.
type CreateTimeSlotRequest struct {
	Name      string `json:"name" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// RoomService manages rooms.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService instantiates RoomService.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns rooms; activeOnly filters out retired ones.
func (s *RoomService) List(ctx context.Context, activeOnly bool) ([]models.Room, error) {
	var (
		rooms []models.Room
		err   error
	)
	if activeOnly {
		rooms, err = s.repo.ListActive(ctx)
	} else {
		rooms, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Create inserts a new room.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room := models.Room{Name: req.Name, Type: req.Type, Capacity: req.Capacity, IsActive: true}
	if err := s.repo.Create(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return &room, nil
}

// SubjectService manages subjects.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService instantiates SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subjects, optionally narrowed to one department.
func (s *SubjectService) List(ctx context.Context, departmentID string) ([]models.Subject, error) {
	var (
		subjects []models.Subject
		err      error
	)
	if departmentID != "" {
		subjects, err = s.repo.ListByDepartment(ctx, departmentID)
	} else {
		subjects, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Create inserts a new subject. Common subjects carry no department.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if req.Type != models.SubjectTypeCommon && req.DepartmentID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department_id is required for non-common subjects")
	}

	subject := models.Subject{
		Name:         req.Name,
		Code:         req.Code,
		DepartmentID: req.DepartmentID,
		Credits:      req.Credits,
		Type:         req.Type,
	}
	if err := s.repo.Create(ctx, &subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return &subject, nil
}

// TimeSlotService manages the weekly slot grid.
type TimeSlotService struct {
	repo      timeSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService instantiates TimeSlotService.
func NewTimeSlotService(repo timeSlotRepository, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, validator: validate, logger: logger}
}

// List returns time slots; activeOnly filters out retired ones.
func (s *TimeSlotService) List(ctx context.Context, activeOnly bool) ([]models.TimeSlot, error) {
	var (
		slots []models.TimeSlot
		err   error
	)
	if activeOnly {
		slots, err = s.repo.ListActive(ctx)
	} else {
		slots, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// Create inserts a new time slot.
func (s *TimeSlotService) Create(ctx context.Context, req CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if req.EndTime <= req.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	slot := models.TimeSlot{Name: req.Name, StartTime: req.StartTime, EndTime: req.EndTime, IsActive: true}
	if err := s.repo.Create(ctx, &slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	return &slot, nil
}
