package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/timetable-api/internal/models"
	"github.com/campusdesk/timetable-api/internal/service"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
	"github.com/campusdesk/timetable-api/pkg/jobs"
	"github.com/campusdesk/timetable-api/pkg/response"
)

// TaskInvalidateDashboard asks the background queue to drop cached
// dashboard aggregates after the timetable changed.
const TaskInvalidateDashboard = "dashboard-cache-invalidate"

// TimetableHandler exposes timetable endpoints.
type TimetableHandler struct {
	timetables *service.TimetableService
	metrics    *service.MetricsService
	queue      *jobs.Queue
}

// NewTimetableHandler constructs handler. queue may be nil.
func NewTimetableHandler(timetables *service.TimetableService, metrics *service.MetricsService, queue *jobs.Queue) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, metrics: metrics, queue: queue}
}

// List godoc
// @Summary List timetable entries
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param divisionId query string false "Filter by division"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var (
		entries []models.TimetableEntry
		err     error
	)
	if divisionID := c.Query("divisionId"); divisionID != "" {
		entries, err = h.timetables.ListByDivision(c.Request.Context(), divisionID)
	} else {
		entries, err = h.timetables.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Batch godoc
// @Summary Commit a batch of timetable entries
// @Description Persists all entries in one transaction, or none when any entry conflicts
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.BatchCreateRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/batch [post]
func (h *TimetableHandler) Batch(c *gin.Context) {
	var req service.BatchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.timetables.Commit(c.Request.Context(), req)
	if err != nil {
		var batchErr *models.BatchConflictError
		if errors.As(err, &batchErr) {
			h.observeBatch("rejected")
			c.JSON(http.StatusConflict, response.Envelope{
				Error: appErrors.FromError(err),
				Data:  gin.H{"conflicts": batchErr.PerEntry},
			})
			return
		}
		h.observeBatch("failed")
		response.Error(c, err)
		return
	}

	h.observeBatch("committed")
	h.invalidateDashboard()
	response.Created(c, result)
}

// Check godoc
// @Summary Check one proposed entry for conflicts
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CheckRequest true "Proposed entry"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/check [post]
func (h *TimetableHandler) Check(c *gin.Context) {
	var req service.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.timetables.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveConflictCheck(result.HasConflict)
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MySchedule godoc
// @Summary Schedule for the authenticated student
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /timetable/my-schedule [get]
func (h *TimetableHandler) MySchedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.timetables.MySchedule(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Deactivate godoc
// @Summary Deactivate a timetable entry
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Deactivate(c *gin.Context) {
	if err := h.timetables.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard()
	response.NoContent(c)
}

// Export godoc
// @Summary Export a division's schedule as CSV
// @Tags Timetables
// @Produce text/csv
// @Security BearerAuth
// @Param divisionId query string true "Division ID"
// @Success 200 {string} string "CSV payload"
// @Router /timetables/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	divisionID := c.Query("divisionId")
	if divisionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "divisionId is required"))
		return
	}

	payload, err := h.timetables.ExportSchedule(c.Request.Context(), divisionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedule.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

func (h *TimetableHandler) observeBatch(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveBatchCommit(outcome)
	}
}

func (h *TimetableHandler) invalidateDashboard() {
	if h.queue == nil {
		return
	}
	// Best effort; the cache TTL bounds staleness if the queue is saturated.
	_ = h.queue.Enqueue(jobs.Task{Type: TaskInvalidateDashboard})
}
