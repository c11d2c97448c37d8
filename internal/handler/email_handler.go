package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	"github.com/ecell-kiet/recruitment-api/internal/service"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/response"
)

// EmailHandler wires HTTP endpoints to the email service.
type EmailHandler struct {
	service *service.EmailService
}

// NewEmailHandler creates a new handler.
func NewEmailHandler(svc *service.EmailService) *EmailHandler {
	return &EmailHandler{service: svc}
}

// Send godoc
// @Summary Send bulk email
// @Description Queue a bulk mail dispatch; delivery happens in the background
// @Tags Emails
// @Accept json
// @Produce json
// @Param payload body models.SendEmailRequest true "Email payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /emails/send [post]
func (h *EmailHandler) Send(c *gin.Context) {
	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid email payload"))
		return
	}

	if err := h.service.Send(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "dispatch queued"}, nil)
}

// Summaries godoc
// @Summary List email dispatch summaries
// @Tags Emails
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /emails/summaries [get]
func (h *EmailHandler) Summaries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	summaries, total, err := h.service.ListSummaries(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total})
}
