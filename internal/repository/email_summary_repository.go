package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecell-kiet/recruitment-api/internal/models"
)

// EmailSummaryRepository provides database access for bulk mail summaries.
type EmailSummaryRepository struct {
	db *sqlx.DB
}

// NewEmailSummaryRepository creates a new instance of EmailSummaryRepository.
func NewEmailSummaryRepository(db *sqlx.DB) *EmailSummaryRepository {
	return &EmailSummaryRepository{db: db}
}

// Create inserts a dispatch summary.
func (r *EmailSummaryRepository) Create(ctx context.Context, summary *models.EmailSummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.SentAt.IsZero() {
		summary.SentAt = time.Now().UTC()
	}
	const query = `INSERT INTO email_summaries (id, subject, recipients, bcc_recipients, body_preview, sent_at, success, sent_count, failed_count, errors)
		VALUES (:id, :subject, :recipients, :bcc_recipients, :body_preview, :sent_at, :success, :sent_count, :failed_count, :errors)`
	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("create email summary: %w", err)
	}
	return nil
}

// List returns dispatch summaries ordered newest first.
func (r *EmailSummaryRepository) List(ctx context.Context, page, pageSize int) ([]models.EmailSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT id, subject, recipients, bcc_recipients, body_preview, sent_at, success, sent_count, failed_count, errors
		FROM email_summaries ORDER BY sent_at DESC LIMIT %d OFFSET %d`, pageSize, offset)

	var summaries []models.EmailSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, 0, fmt.Errorf("list email summaries: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM email_summaries`); err != nil {
		return nil, 0, fmt.Errorf("count email summaries: %w", err)
	}

	return summaries, total, nil
}
