package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/timetable-api/internal/models"
)

// FacultyRepository provides persistence for faculty members.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns all faculty ordered by employee id.
func (r *FacultyRepository) List(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT id, user_id, employee_id, department_id, designation, created_at FROM faculty ORDER BY employee_id ASC`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

// ListByDepartment returns a department's faculty.
func (r *FacultyRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Faculty, error) {
	const query = `SELECT id, user_id, employee_id, department_id, designation, created_at FROM faculty WHERE department_id = $1 ORDER BY employee_id ASC`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query, departmentID); err != nil {
		return nil, fmt.Errorf("list faculty by department: %w", err)
	}
	return faculty, nil
}

// FindByID loads a faculty member by id.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	const query = `SELECT id, user_id, employee_id, department_id, designation, created_at FROM faculty WHERE id = $1`
	var member models.Faculty
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create stores a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, member *models.Faculty) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO faculty (id, user_id, employee_id, department_id, designation, created_at) VALUES (:id, :user_id, :employee_id, :department_id, :designation, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// StudentRepository provides persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students ordered by roll number.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, user_id, roll_number, division_id, year, created_at FROM students ORDER BY roll_number ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListByDivision returns a division's students.
func (r *StudentRepository) ListByDivision(ctx context.Context, divisionID string) ([]models.Student, error) {
	const query = `SELECT id, user_id, roll_number, division_id, year, created_at FROM students WHERE division_id = $1 ORDER BY roll_number ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, divisionID); err != nil {
		return nil, fmt.Errorf("list students by division: %w", err)
	}
	return students, nil
}

// FindByUserID resolves the student record backing a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, roll_number, division_id, year, created_at FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create stores a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO students (id, user_id, roll_number, division_id, year, created_at) VALUES (:id, :user_id, :roll_number, :division_id, :year, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
