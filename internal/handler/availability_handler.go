package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/timetable-api/internal/service"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
	"github.com/campusdesk/timetable-api/pkg/response"
)

// AvailabilityHandler exposes the available-slot search.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// AvailableSlots godoc
// @Summary Find conflict-free faculty/room/slot combinations
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param divisionId query string true "Division ID"
// @Param dayOfWeek query int true "Day of week (1=Monday .. 7=Sunday)"
// @Param timeSlotId query string false "Restrict to a single time slot"
// @Param subjectId query string false "Tag results with subject display data"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/available-slots [get]
func (h *AvailabilityHandler) AvailableSlots(c *gin.Context) {
	day, err := strconv.Atoi(c.Query("dayOfWeek"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dayOfWeek must be an integer between 1 and 7"))
		return
	}

	req := service.AvailabilityRequest{
		DivisionID: c.Query("divisionId"),
		DayOfWeek:  day,
		TimeSlotID: c.Query("timeSlotId"),
		SubjectID:  c.Query("subjectId"),
	}

	report, err := h.availability.FindAvailable(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
