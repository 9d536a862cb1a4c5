package models

import "time"

// Department groups divisions, faculty and subjects under one academic unit.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Division is a cohort of students sharing one timetable.
type Division struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Capacity     int       `db:"capacity" json:"capacity"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Student links a user to a division.
type Student struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	RollNumber string    `db:"roll_number" json:"roll_number"`
	DivisionID string    `db:"division_id" json:"division_id"`
	Year       int       `db:"year" json:"year"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Faculty is a teaching staff member; at most one session per (day, slot).
type Faculty struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	EmployeeID   string    `db:"employee_id" json:"employee_id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Designation  string    `db:"designation" json:"designation"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
