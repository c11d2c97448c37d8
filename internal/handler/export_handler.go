package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecell-kiet/recruitment-api/internal/service"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/response"
)

// ExportHandler wires HTTP endpoints to the export service.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Candidates godoc
// @Summary Export candidates
// @Description Download candidate schedule sheets as CSV or PDF
// @Tags Export
// @Produce octet-stream
// @Param format query string true "Export format (csv|pdf)"
// @Param group query int false "Restrict to one group"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/export [get]
func (h *ExportHandler) Candidates(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	group := 0
	if v := c.Query("group"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group must be an integer"))
			return
		}
		group = parsed
	}

	result, err := h.service.ExportCandidates(c.Request.Context(), format, group)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Content)
}
