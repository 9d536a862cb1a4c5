package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/timetable-api/internal/service"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
	"github.com/campusdesk/timetable-api/pkg/response"
)

// RosterHandler exposes faculty and student endpoints.
type RosterHandler struct {
	faculty  *service.FacultyService
	students *service.StudentService
}

// NewRosterHandler constructs handler.
func NewRosterHandler(faculty *service.FacultyService, students *service.StudentService) *RosterHandler {
	return &RosterHandler{faculty: faculty, students: students}
}

// ListFaculty godoc
// @Summary List faculty members
// @Tags Roster
// @Produce json
// @Security BearerAuth
// @Param departmentId query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *RosterHandler) ListFaculty(c *gin.Context) {
	members, err := h.faculty.List(c.Request.Context(), c.Query("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// CreateFaculty godoc
// @Summary Create faculty profile
// @Tags Roster
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Router /faculty [post]
func (h *RosterHandler) CreateFaculty(c *gin.Context) {
	var req service.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	member, err := h.faculty.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// ListStudents godoc
// @Summary List students
// @Tags Roster
// @Produce json
// @Security BearerAuth
// @Param divisionId query string false "Filter by division"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context(), c.Query("divisionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// CreateStudent godoc
// @Summary Create student profile
// @Tags Roster
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *RosterHandler) CreateStudent(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
