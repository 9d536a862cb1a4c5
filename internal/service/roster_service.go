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

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type facultyRepository interface {
	List(ctx context.Context) ([]models.Faculty, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Faculty, error)
	Create(ctx context.Context, member *models.Faculty) error
}

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	ListByDivision(ctx context.Context, divisionID string) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

// CreateFacultyRequest links an existing user to a faculty profile.
type CreateFacultyRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	EmployeeID   string `json:"employee_id" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	Designation  string `json:"designation" validate:"required"`
}

// CreateStudentRequest links an existing user to a student profile.
type CreateStudentRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	RollNumber string `json:"roll_number" validate:"required"`
	DivisionID string `json:"division_id" validate:"required"`
	Year       int    `json:"year" validate:"required,min=1,max=6"`
}

// FacultyService manages faculty profiles.
type FacultyService struct {
	repo        facultyRepository
	departments departmentRepository
	users       userFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFacultyService instantiates FacultyService.
func NewFacultyService(repo facultyRepository, departments departmentRepository, users userFinder, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, departments: departments, users: users, validator: validate, logger: logger}
}

// List returns faculty members, optionally narrowed to one department.
func (s *FacultyService) List(ctx context.Context, departmentID string) ([]models.Faculty, error) {
	var (
		members []models.Faculty
		err     error
	)
	if departmentID != "" {
		members, err = s.repo.ListByDepartment(ctx, departmentID)
	} else {
		members, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	return members, nil
}

// Create inserts a new faculty profile for an existing user account and
// department.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "user does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	member := models.Faculty{
		UserID:       req.UserID,
		EmployeeID:   req.EmployeeID,
		DepartmentID: req.DepartmentID,
		Designation:  req.Designation,
	}
	if err := s.repo.Create(ctx, &member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	return &member, nil
}

// StudentService manages student profiles.
type StudentService struct {
	repo      studentRepository
	divisions divisionRepository
	users     userFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService instantiates StudentService.
func NewStudentService(repo studentRepository, divisions divisionRepository, users userFinder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, divisions: divisions, users: users, validator: validate, logger: logger}
}

// List returns students, optionally narrowed to one division.
func (s *StudentService) List(ctx context.Context, divisionID string) ([]models.Student, error) {
	var (
		students []models.Student
		err      error
	)
	if divisionID != "" {
		students, err = s.repo.ListByDivision(ctx, divisionID)
	} else {
		students, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Create inserts a new student profile for an existing user account and
// division.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "user does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if _, err := s.divisions.FindByID(ctx, req.DivisionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "division does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load division")
	}

	student := models.Student{
		UserID:     req.UserID,
		RollNumber: req.RollNumber,
		DivisionID: req.DivisionID,
		Year:       req.Year,
	}
	if err := s.repo.Create(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return &student, nil
}
