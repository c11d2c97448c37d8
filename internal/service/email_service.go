package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/jobs"
	"github.com/ecell-kiet/recruitment-api/pkg/mailer"
)

const jobTypeEmailDispatch = "email_dispatch"

type emailSummaryRepository interface {
	Create(ctx context.Context, summary *models.EmailSummary) error
	List(ctx context.Context, page, pageSize int) ([]models.EmailSummary, int, error)
}

type recipientDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
}

type emailDispatch struct {
	Subject string
	Emails  []string
	BCC     []string
	Body    string
	HTML    bool
}

// EmailService sends bulk mail through the background queue and records a
// summary row per dispatch.
type EmailService struct {
	mail       mailer.Mailer
	summaries  emailSummaryRepository
	candidates recipientDirectory
	queue      *jobs.Queue
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEmailService constructs an EmailService with its own dispatch queue.
// Call Start before accepting requests and Stop on shutdown.
func NewEmailService(mail mailer.Mailer, summaries emailSummaryRepository, candidates recipientDirectory, validate *validator.Validate, logger *zap.Logger, workers int) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &EmailService{
		mail:       mail,
		summaries:  summaries,
		candidates: candidates,
		validator:  validate,
		logger:     logger,
	}
	s.queue = jobs.NewQueue("email-dispatch", s.processDispatch, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the dispatch workers.
func (s *EmailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *EmailService) Stop() {
	s.queue.Stop()
}

// Send validates and enqueues a bulk dispatch. Delivery happens in the
// background; the summary row records the per-recipient outcome.
func (s *EmailService) Send(ctx context.Context, req models.SendEmailRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email request")
	}

	emails := dedupEmails(req.Emails)
	if len(emails) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no valid recipient emails")
	}

	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: jobTypeEmailDispatch,
		Payload: emailDispatch{
			Subject: req.Subject,
			Emails:  emails,
			BCC:     dedupEmails(req.BCC),
			Body:    req.Body,
			HTML:    req.HTML,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue email dispatch")
	}

	s.logger.Info("email dispatch queued",
		zap.String("job_id", job.ID),
		zap.Int("recipients", len(emails)))
	return nil
}

// ListSummaries returns dispatch summaries, newest first.
func (s *EmailService) ListSummaries(ctx context.Context, page, pageSize int) ([]models.EmailSummary, int, error) {
	summaries, total, err := s.summaries.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list email summaries")
	}
	return summaries, total, nil
}

func (s *EmailService) processDispatch(ctx context.Context, job jobs.Job) error {
	dispatch, ok := job.Payload.(emailDispatch)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", job.Payload, job.Type)
	}

	var sendErrors []string
	sent := 0
	for _, email := range dispatch.Emails {
		body := s.personalize(ctx, dispatch.Body, email)
		msg := mailer.Message{
			To:      []string{email},
			BCC:     dispatch.BCC,
			Subject: dispatch.Subject,
			Body:    body,
			HTML:    dispatch.HTML,
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			s.logger.Error("email delivery failed", zap.String("email", email), zap.Error(err))
			sendErrors = append(sendErrors, fmt.Sprintf("%s: %v", email, err))
			continue
		}
		sent++
	}

	summary := &models.EmailSummary{
		Subject:       dispatch.Subject,
		Recipients:    dispatch.Emails,
		BCCRecipients: dispatch.BCC,
		BodyPreview:   preview(dispatch.Body, 200),
		Success:       len(sendErrors) == 0,
		SentCount:     sent,
		FailedCount:   len(sendErrors),
		Errors:        sendErrors,
	}
	if err := s.summaries.Create(ctx, summary); err != nil {
		s.logger.Error("failed to persist email summary", zap.Error(err))
	}

	s.logger.Info("email dispatch finished",
		zap.String("job_id", job.ID),
		zap.Int("sent", sent),
		zap.Int("failed", len(sendErrors)))
	return nil
}

// personalize substitutes the {name} placeholder with the recipient's
// registered name when the email belongs to a candidate.
func (s *EmailService) personalize(ctx context.Context, body, email string) string {
	if !strings.Contains(body, "{name}") {
		return body
	}
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	candidate, err := s.candidates.FindByEmail(ctx, email)
	if err == nil {
		name = candidate.Name
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("failed to resolve recipient name", zap.String("email", email), zap.Error(err))
	}
	return strings.ReplaceAll(body, "{name}", name)
}

func dedupEmails(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, r := range raw {
		email := normalizeEmail(r)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	return out
}

func preview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return body[:max]
}
