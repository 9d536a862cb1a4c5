package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, dept *models.Department) error
}

type divisionRepository interface {
	List(ctx context.Context) ([]models.Division, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Division, error)
	FindByID(ctx context.Context, id string) (*models.Division, error)
	Create(ctx context.Context, division *models.Division) error
}

// CreateDepartmentRequest describes payload for creating a department.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

// CreateDivisionRequest describes payload for creating a division.
type CreateDivisionRequest struct {
	Name         string `json:"name" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,min=1"`
}

// DepartmentService manages department records.
type DepartmentService struct {
	repo      departmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService instantiates DepartmentService.
func NewDepartmentService(repo departmentRepository, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, validator: validate, logger: logger}
}

// List returns all departments.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Create inserts a new department.
func (s *DepartmentService) Create(ctx context.Context, req CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}

	dept := models.Department{Name: req.Name, Code: req.Code}
	if err := s.repo.Create(ctx, &dept); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return &dept, nil
}

// DivisionService manages division records.
type DivisionService struct {
	repo        divisionRepository
	departments departmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDivisionService instantiates DivisionService.
func NewDivisionService(repo divisionRepository, departments departmentRepository, validate *validator.Validate, logger *zap.Logger) *DivisionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DivisionService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns divisions, optionally narrowed to one department.
func (s *DivisionService) List(ctx context.Context, departmentID string) ([]models.Division, error) {
	var (
		divisions []models.Division
		err       error
	)
	if departmentID != "" {
		divisions, err = s.repo.ListByDepartment(ctx, departmentID)
	} else {
		divisions, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list divisions")
	}
	return divisions, nil
}

// Create inserts a new division under an existing department.
func (s *DivisionService) Create(ctx context.Context, req CreateDivisionRequest) (*models.Division, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid division payload")
	}

	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	division := models.Division{Name: req.Name, DepartmentID: req.DepartmentID, Capacity: req.Capacity}
	if err := s.repo.Create(ctx, &division); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create division")
	}
	return &division, nil
}
