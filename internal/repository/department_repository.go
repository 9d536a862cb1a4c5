package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/timetable-api/internal/models"
)

// DepartmentRepository provides persistence for departments and divisions.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository creates a new department repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, name, code, created_at FROM departments ORDER BY name ASC`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindByID loads a department by id.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, name, code, created_at FROM departments WHERE id = $1`
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, id); err != nil {
		return nil, err
	}
	return &dept, nil
}

// Create stores a new department record.
func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	if dept.CreatedAt.IsZero() {
		dept.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO departments (id, name, code, created_at) VALUES (:id, :name, :code, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, dept); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// DivisionRepository provides persistence for divisions.
type DivisionRepository struct {
	db *sqlx.DB
}

// NewDivisionRepository creates a new division repository.
func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

// List returns all divisions ordered by name.
func (r *DivisionRepository) List(ctx context.Context) ([]models.Division, error) {
	const query = `SELECT id, name, department_id, capacity, created_at FROM divisions ORDER BY name ASC`
	var divisions []models.Division
	if err := r.db.SelectContext(ctx, &divisions, query); err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	return divisions, nil
}

// ListByDepartment returns a department's divisions.
func (r *DivisionRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Division, error) {
	const query = `SELECT id, name, department_id, capacity, created_at FROM divisions WHERE department_id = $1 ORDER BY name ASC`
	var divisions []models.Division
	if err := r.db.SelectContext(ctx, &divisions, query, departmentID); err != nil {
		return nil, fmt.Errorf("list divisions by department: %w", err)
	}
	return divisions, nil
}

// FindByID loads a division by id.
func (r *DivisionRepository) FindByID(ctx context.Context, id string) (*models.Division, error) {
	const query = `SELECT id, name, department_id, capacity, created_at FROM divisions WHERE id = $1`
	var division models.Division
	if err := r.db.GetContext(ctx, &division, query, id); err != nil {
		return nil, err
	}
	return &division, nil
}

// Create stores a new division record.
func (r *DivisionRepository) Create(ctx context.Context, division *models.Division) error {
	if division.ID == "" {
		division.ID = uuid.NewString()
	}
	if division.CreatedAt.IsZero() {
		division.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO divisions (id, name, department_id, capacity, created_at) VALUES (:id, :name, :department_id, :capacity, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, division); err != nil {
		return fmt.Errorf("create division: %w", err)
	}
	return nil
}
