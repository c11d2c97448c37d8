package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
)

// Round identifiers accepted by UpdateRound.
const (
	RoundScreening = "screening"
	RoundGD        = "gd"
	RoundPI        = "pi"
)

type candidateRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	FindByGroup(ctx context.Context, groupNumber int) ([]models.Candidate, error)
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
}

type resultGate interface {
	IsResultOut(ctx context.Context) (bool, error)
}

// CandidateService manages applicant records: registration, round updates,
// attendance, slots, shortlisting, and task submissions.
type CandidateService struct {
	repo      candidateRepository
	gate      resultGate
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCandidateService constructs a CandidateService instance.
func NewCandidateService(repo candidateRepository, gate resultGate, validate *validator.Validate, logger *zap.Logger) *CandidateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CandidateService{repo: repo, gate: gate, validator: validate, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new application. Duplicate emails are rejected.
func (s *CandidateService) Register(ctx context.Context, req models.RegisterCandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application")
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a candidate with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing candidate")
	}

	candidate := &models.Candidate{
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		PersonalEmail:   req.PersonalEmail,
		Phone:           strings.TrimSpace(req.Phone),
		Year:            req.Year,
		LibraryID:       strings.TrimSpace(req.LibraryID),
		Branch:          strings.TrimSpace(req.Branch),
		Gender:          req.Gender,
		Course:          req.Course,
		WhyECell:        req.WhyECell,
		WhatMotivates:   req.WhatMotivates,
		LinkedIn:        req.LinkedIn,
		Domains:         req.Domains,
		DomainPrefOne:   req.DomainPrefOne,
		DomainPrefTwo:   req.DomainPrefTwo,
		IsHosteller:     req.IsHosteller,
		PastAchievement: req.PastAchievement,
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create candidate")
	}

	s.logger.Info("candidate registered", zap.String("email", candidate.Email))
	return candidate, nil
}

// GetByID returns a candidate by identifier.
func (s *CandidateService) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate")
	}
	return candidate, nil
}

// GetByEmail returns a candidate by email address.
func (s *CandidateService) GetByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	candidate, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate")
	}
	return candidate, nil
}

// Profile returns a candidate's own record. Round outcomes are masked until
// results are published.
func (s *CandidateService) Profile(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resultOut, err := s.gate.IsResultOut(ctx)
	if err != nil {
		s.logger.Warn("failed to load result visibility, masking outcomes", zap.Error(err))
		resultOut = false
	}
	if !resultOut {
		candidate.Screening = maskOutcome(candidate.Screening)
		candidate.GD = maskOutcome(candidate.GD)
		candidate.PI = maskOutcome(candidate.PI)
	}
	return candidate, nil
}

// maskOutcome hides terminal round verdicts until results are published.
// Scheduling details stay visible so candidates can see their slots.
func maskOutcome(state models.RoundState) models.RoundState {
	switch state.Status {
	case models.RoundStatusSelected, models.RoundStatusRejected, models.RoundStatusUnsure:
		state.Status = models.RoundStatusPending
		state.Remarks = models.Remarks{}
	}
	return state
}

// List returns candidates matching the filter with a total count.
func (s *CandidateService) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error) {
	candidates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}
	return candidates, total, nil
}

// GetByGroup returns all candidates in a group.
func (s *CandidateService) GetByGroup(ctx context.Context, groupNumber int) ([]models.Candidate, error) {
	if groupNumber <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group number must be positive")
	}
	candidates, err := s.repo.FindByGroup(ctx, groupNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch group")
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no candidates in group %d", groupNumber))
	}
	return candidates, nil
}

// UpdateRound patches one round's state for a candidate. Screening updates
// may replace the candidate's domains with the panel's final call.
func (s *CandidateService) UpdateRound(ctx context.Context, email, round string, req models.RoundUpdateRequest) (*models.Candidate, error) {
	if round != RoundScreening && round != RoundGD && round != RoundPI {
		return nil, appErrors.Clone(appErrors.ErrValidation, "round must be one of screening, gd, pi")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid round update")
	}

	candidate, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var state *models.RoundState
	switch round {
	case RoundScreening:
		state = &candidate.Screening
	case RoundGD:
		state = &candidate.GD
	case RoundPI:
		state = &candidate.PI
	}

	if req.Status != nil {
		state.Status = *req.Status
	}
	if req.Datetime != nil {
		ts, err := time.Parse(time.RFC3339, *req.Datetime)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "datetime must be RFC 3339")
		}
		state.Datetime = &ts
	}
	if req.Remarks != nil {
		state.Remarks = *req.Remarks
	}
	if round == RoundScreening && len(req.Domains) > 0 {
		candidate.Domains = req.Domains
	}

	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update round")
	}

	s.logger.Info("round updated",
		zap.String("email", candidate.Email),
		zap.String("round", round))
	return candidate, nil
}

// SetAttendance flips the presence flag for a candidate.
func (s *CandidateService) SetAttendance(ctx context.Context, email string, isPresent bool) (*models.Candidate, error) {
	candidate, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	candidate.IsPresent = isPresent
	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	return candidate, nil
}

// AssignSlots writes one slot label to many candidates. Duplicate emails in
// the request are applied once; unknown emails are reported, not fatal.
func (s *CandidateService) AssignSlots(ctx context.Context, req models.SlotAssignmentRequest) (*models.SlotAssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot assignment")
	}

	result := &models.SlotAssignmentResult{Slot: req.Slot}
	seen := make(map[string]bool, len(req.Emails))
	for _, raw := range req.Emails {
		email := normalizeEmail(raw)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true

		candidate, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Failed = append(result.Failed, models.ScheduleFailure{Email: email, Reason: "candidate not found"})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate")
		}

		candidate.AssignedSlot = &req.Slot
		if err := s.repo.Update(ctx, candidate); err != nil {
			s.logger.Error("failed to assign slot", zap.String("email", email), zap.Error(err))
			result.Failed = append(result.Failed, models.ScheduleFailure{Email: email, Reason: "failed to persist slot"})
			continue
		}
		result.Updated = append(result.Updated, email)
	}

	return result, nil
}

// SetShortlist toggles the shortlist flag. Shortlisting seeds one pending
// task per candidate domain; removing the shortlist clears tasks.
func (s *CandidateService) SetShortlist(ctx context.Context, req models.ShortlistRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shortlist request")
	}

	candidate, err := s.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	candidate.Shortlisted = req.Shortlisted
	if req.Shortlisted {
		tasks := make([]models.TaskItem, 0, len(candidate.Domains))
		for _, domain := range candidate.Domains {
			tasks = append(tasks, models.TaskItem{Domain: domain, Status: models.TaskStatusPending})
		}
		candidate.Task = models.TaskState{Status: models.TaskStatusPending, Tasks: tasks}
	} else {
		candidate.Task = models.TaskState{}
	}

	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shortlist")
	}

	s.logger.Info("shortlist updated",
		zap.String("email", candidate.Email),
		zap.Bool("shortlisted", req.Shortlisted))
	return candidate, nil
}

// SubmitTask records a domain task submission and rolls up the aggregate
// task status.
func (s *CandidateService) SubmitTask(ctx context.Context, email string, req models.TaskSubmissionRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task submission")
	}

	candidate, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !candidate.Shortlisted {
		return nil, appErrors.Clone(appErrors.ErrNotShortlisted, "")
	}

	found := false
	for i := range candidate.Task.Tasks {
		if strings.EqualFold(candidate.Task.Tasks[i].Domain, req.Domain) {
			candidate.Task.Tasks[i].Status = models.TaskStatusCompleted
			candidate.Task.Tasks[i].URL = req.URL
			found = true
			break
		}
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no task assigned for domain %q", req.Domain))
	}

	candidate.Task.Status = rollupTaskStatus(candidate.Task.Tasks)

	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record task submission")
	}

	return candidate, nil
}

// rollupTaskStatus derives the aggregate status from individual tasks.
func rollupTaskStatus(tasks []models.TaskItem) string {
	if len(tasks) == 0 {
		return models.TaskStatusPending
	}
	completed := 0
	for _, task := range tasks {
		if task.Status == models.TaskStatusCompleted {
			completed++
		}
	}
	switch completed {
	case 0:
		return models.TaskStatusPending
	case len(tasks):
		return models.TaskStatusCompleted
	default:
		return models.TaskStatusInProgress
	}
}
