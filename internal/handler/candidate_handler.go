package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecell-kiet/recruitment-api/internal/middleware"
	"github.com/ecell-kiet/recruitment-api/internal/models"
	"github.com/ecell-kiet/recruitment-api/internal/service"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/response"
)

// CandidateHandler wires HTTP endpoints to the candidate service.
type CandidateHandler struct {
	service *service.CandidateService
}

// NewCandidateHandler creates a new handler.
func NewCandidateHandler(svc *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{service: svc}
}

// Register godoc
// @Summary Register a candidate
// @Description Submit the public application form
// @Tags Candidates
// @Accept json
// @Produce json
// @Param payload body models.RegisterCandidateRequest true "Application form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates [post]
func (h *CandidateHandler) Register(c *gin.Context) {
	var req models.RegisterCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	candidate, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, candidate)
}

// List godoc
// @Summary List candidates
// @Description List candidates with optional filters
// @Tags Candidates
// @Produce json
// @Param shortlisted query bool false "Filter by shortlist flag"
// @Param year query int false "Filter by year"
// @Param search query string false "Search name or email"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	filter := models.CandidateFilter{Search: c.Query("search")}
	if v := c.Query("shortlisted"); v != "" {
		shortlisted, err := strconv.ParseBool(v)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "shortlisted must be a boolean"))
			return
		}
		filter.Shortlisted = &shortlisted
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be an integer"))
			return
		}
		filter.Year = &year
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "100"))

	candidates, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, candidates, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get a candidate
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id} [get]
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Me godoc
// @Summary Get own profile
// @Description Candidate self view; round outcomes hidden until results are out
// @Tags Candidates
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /candidates/me [get]
func (h *CandidateHandler) Me(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	candidate, err := h.service.Profile(c.Request.Context(), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Group godoc
// @Summary List candidates in a group
// @Tags Candidates
// @Produce json
// @Param number path int true "Group number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/group/{number} [get]
func (h *CandidateHandler) Group(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group number must be an integer"))
		return
	}

	candidates, err := h.service.GetByGroup(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// UpdateRound godoc
// @Summary Update a round state
// @Description Patch screening, gd, or pi state for a candidate
// @Tags Candidates
// @Accept json
// @Produce json
// @Param email path string true "Candidate email"
// @Param round path string true "Round (screening|gd|pi)"
// @Param payload body models.RoundUpdateRequest true "Round update"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{email}/{round} [put]
func (h *CandidateHandler) UpdateRound(c *gin.Context) {
	var req models.RoundUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid round payload"))
		return
	}

	candidate, err := h.service.UpdateRound(c.Request.Context(), c.Param("email"), c.Param("round"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Attendance godoc
// @Summary Update attendance
// @Tags Candidates
// @Accept json
// @Produce json
// @Param email path string true "Candidate email"
// @Param payload body models.AttendanceRequest true "Attendance flag"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{email}/attendance [put]
func (h *CandidateHandler) Attendance(c *gin.Context) {
	var req models.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	candidate, err := h.service.SetAttendance(c.Request.Context(), c.Param("email"), req.IsPresent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// AssignSlots godoc
// @Summary Assign interview slots
// @Description Write one slot label to many candidates
// @Tags Candidates
// @Accept json
// @Produce json
// @Param payload body models.SlotAssignmentRequest true "Slot assignment"
// @Success 200 {object} response.Envelope
// @Router /candidates/slots [post]
func (h *CandidateHandler) AssignSlots(c *gin.Context) {
	var req models.SlotAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	result, err := h.service.AssignSlots(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Shortlist godoc
// @Summary Toggle shortlist
// @Description Shortlisting seeds per-domain tasks
// @Tags Candidates
// @Accept json
// @Produce json
// @Param payload body models.ShortlistRequest true "Shortlist toggle"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/shortlist [post]
func (h *CandidateHandler) Shortlist(c *gin.Context) {
	var req models.ShortlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shortlist payload"))
		return
	}

	candidate, err := h.service.SetShortlist(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// SubmitTask godoc
// @Summary Submit a domain task
// @Tags Candidates
// @Accept json
// @Produce json
// @Param email path string true "Candidate email"
// @Param payload body models.TaskSubmissionRequest true "Task submission"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates/tasks/{email} [post]
func (h *CandidateHandler) SubmitTask(c *gin.Context) {
	email := c.Param("email")

	// candidates may only submit their own tasks
	if claims, ok := middleware.CurrentClaims(c); ok && claims.Role == models.RoleCandidate && claims.Email != email {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	var req models.TaskSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}

	candidate, err := h.service.SubmitTask(c.Request.Context(), email, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}
