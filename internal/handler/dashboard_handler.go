package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/timetable-api/internal/service"
	"github.com/campusdesk/timetable-api/pkg/response"
)

// DashboardHandler exposes dashboard endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Aggregate entity counts
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// TodaysSchedule godoc
// @Summary Today's schedule across all divisions
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/todays-schedule [get]
func (h *DashboardHandler) TodaysSchedule(c *gin.Context) {
	items, err := h.dashboard.TodaysSchedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// RoomOccupancy godoc
// @Summary Rooms occupied at the current time
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/room-occupancy [get]
func (h *DashboardHandler) RoomOccupancy(c *gin.Context) {
	occupancy, err := h.dashboard.RoomOccupancy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupancy, nil)
}

// DepartmentOverview godoc
// @Summary Per-department division and student counts
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/department-overview [get]
func (h *DashboardHandler) DepartmentOverview(c *gin.Context) {
	overview, err := h.dashboard.DepartmentOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
