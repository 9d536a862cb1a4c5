package models

import "time"

// TimetableEntry is one scheduled class session for a division. Entries are
// never edited in place; superseded entries are deactivated.
type TimetableEntry struct {
	ID         string    `db:"id" json:"id"`
	DivisionID string    `db:"division_id" json:"division_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	FacultyID  string    `db:"faculty_id" json:"faculty_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	TimeSlotID string    `db:"time_slot_id" json:"time_slot_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// EntryFilter narrows queries over the active entry set. Zero values are
// ignored; ExcludeID removes one entry from the comparison set when an
// existing entry is being re-checked.
type EntryFilter struct {
	DivisionID string
	FacultyID  string
	RoomID     string
	TimeSlotID string
	DayOfWeek  int
	ExcludeID  string
}

// ConflictKind identifies which scheduling invariant a conflict violates.
type ConflictKind string

const (
	ConflictFaculty      ConflictKind = "faculty"
	ConflictRoom         ConflictKind = "room"
	ConflictDivision     ConflictKind = "division"
	ConflictStudentLimit ConflictKind = "student_limit"
)

// Conflict describes a single invariant violation for a proposed entry.
type Conflict struct {
	Kind    ConflictKind           `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ConflictResult aggregates every conflict found for one proposed entry.
// HasConflict is true iff Conflicts is non-empty.
type ConflictResult struct {
	HasConflict bool       `json:"has_conflict"`
	Conflicts   []Conflict `json:"conflicts"`
}

// EntryConflicts pairs a batch entry with the conflicts it produced.
type EntryConflicts struct {
	Index     int            `json:"index"`
	Entry     TimetableEntry `json:"entry"`
	Conflicts []Conflict     `json:"conflicts"`
}

// BatchConflictError is returned when one or more entries in a commit batch
// violate scheduling invariants. Nothing is persisted in that case.
type BatchConflictError struct {
	PerEntry []EntryConflicts `json:"per_entry"`
}

// Error implements the error interface.
func (e *BatchConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "timetable batch contains scheduling conflicts"
}

// AvailableCombination is one (faculty, room, time-slot) triple that passes
// every conflict check for the requested division and day.
type AvailableCombination struct {
	Faculty  Faculty  `json:"faculty"`
	Room     Room     `json:"room"`
	TimeSlot TimeSlot `json:"time_slot"`
	Subject  *Subject `json:"subject,omitempty"`
}

// AvailabilityReport is the availability search result.
type AvailabilityReport struct {
	Combinations   []AvailableCombination `json:"combinations"`
	TotalAvailable int                    `json:"total_available"`
}

// BatchResult summarises a successful batch commit.
type BatchResult struct {
	Created      []TimetableEntry `json:"created"`
	TotalCreated int              `json:"total_created"`
}
