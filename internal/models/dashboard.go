package models

// DashboardStats carries the headline counters for the admin dashboard.
type DashboardStats struct {
	TotalStudents int `db:"total_students" json:"total_students"`
	TotalFaculty  int `db:"total_faculty" json:"total_faculty"`
	ActiveRooms   int `db:"active_rooms" json:"active_rooms"`
	WeeklyClasses int `db:"weekly_classes" json:"weekly_classes"`
}

// ScheduleItem is a fully resolved timetable row for display.
type ScheduleItem struct {
	ID           string `db:"id" json:"id"`
	DayOfWeek    int    `db:"day_of_week" json:"day_of_week"`
	SubjectName  string `db:"subject_name" json:"subject"`
	SubjectCode  string `db:"subject_code" json:"subject_code"`
	FacultyName  string `db:"faculty_name" json:"faculty"`
	RoomName     string `db:"room_name" json:"room"`
	DivisionName string `db:"division_name" json:"division"`
	Department   string `db:"department_name" json:"department"`
	SlotName     string `db:"slot_name" json:"time_slot_name"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
}

// RoomOccupancy reports whether a room is in use during the current slot.
type RoomOccupancy struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsOccupied bool   `json:"is_occupied"`
	Status     string `json:"status"`
}

// DepartmentOverview aggregates per-department headcounts.
type DepartmentOverview struct {
	ID            string `db:"department_id" json:"id"`
	Name          string `db:"department_name" json:"name"`
	Code          string `db:"department_code" json:"code"`
	DivisionCount int    `db:"division_count" json:"divisions"`
	StudentCount  int    `db:"student_count" json:"students"`
	FacultyCount  int    `db:"faculty_count" json:"faculty"`
}
