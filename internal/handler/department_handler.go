package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/timetable-api/internal/service"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
	"github.com/campusdesk/timetable-api/pkg/response"
)

// DepartmentHandler exposes department and division endpoints.
type DepartmentHandler struct {
	departments *service.DepartmentService
	divisions   *service.DivisionService
}

// NewDepartmentHandler constructs handler.
func NewDepartmentHandler(departments *service.DepartmentService, divisions *service.DivisionService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, divisions: divisions}
}

// List godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	departments, err := h.departments.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// Create godoc
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateDepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Router /departments [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	dept, err := h.departments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dept)
}

// ListDivisions godoc
// @Summary List divisions
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Param departmentId query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /divisions [get]
func (h *DepartmentHandler) ListDivisions(c *gin.Context) {
	divisions, err := h.divisions.List(c.Request.Context(), c.Query("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, divisions, nil)
}

// CreateDivision godoc
// @Summary Create division
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateDivisionRequest true "Division payload"
// @Success 201 {object} response.Envelope
// @Router /divisions [post]
func (h *DepartmentHandler) CreateDivision(c *gin.Context) {
	var req service.CreateDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	division, err := h.divisions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, division)
}
