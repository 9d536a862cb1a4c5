package models

import "time"

// RoomType enumerates the supported room kinds.
const (
	RoomTypeClassroom = "classroom"
	RoomTypeLab       = "lab"
)

// Room can host at most one session per (day, slot) while active.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubjectType enumerates subject categories.
const (
	SubjectTypeTheory    = "theory"
	SubjectTypePractical = "practical"
	SubjectTypeCommon    = "common"
)

// Subject is taught to divisions; common subjects belong to no department.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Credits      int       `db:"credits" json:"credits"`
	Type         string    `db:"type" json:"type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TimeSlot is a fixed weekly-recurring interval, not a calendar date.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
