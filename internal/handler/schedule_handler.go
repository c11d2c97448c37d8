package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	"github.com/ecell-kiet/recruitment-api/internal/service"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/response"
)

// ScheduleHandler wires HTTP endpoints to the bulk scheduler.
type ScheduleHandler struct {
	scheduler *service.SchedulerService
	metrics   *service.MetricsService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(scheduler *service.SchedulerService, metrics *service.MetricsService) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler, metrics: metrics}
}

// BulkRounds godoc
// @Summary Bulk schedule interview rounds
// @Description Partition candidates into batches and write pipelined GD, screening, and interview slots
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body models.BulkRoundsRequest true "Scheduling parameters"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /candidates/rounds/bulk [post]
func (h *ScheduleHandler) BulkRounds(c *gin.Context) {
	var req models.BulkRoundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheduling payload"))
		return
	}

	start := time.Now()
	result, err := h.scheduler.ScheduleRounds(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveScheduleRun(result.TotalUsersScheduled, len(result.Failed), result.TotalBatches, time.Since(start))

	response.JSON(c, http.StatusOK, result, nil)
}

// MoveGroups godoc
// @Summary Move candidates to an existing group
// @Description Copy the target group's round times onto the listed candidates
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body models.MoveGroupRequest true "Group move"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates/groups/move [post]
func (h *ScheduleHandler) MoveGroups(c *gin.Context) {
	var req models.MoveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group move payload"))
		return
	}

	result, err := h.scheduler.MoveToGroup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
