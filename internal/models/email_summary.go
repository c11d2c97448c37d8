package models

import (
	"time"

	"github.com/lib/pq"
)

// EmailSummary records the outcome of one bulk mail dispatch.
type EmailSummary struct {
	ID            string         `db:"id" json:"id"`
	Subject       string         `db:"subject" json:"subject"`
	Recipients    pq.StringArray `db:"recipients" json:"recipients"`
	BCCRecipients pq.StringArray `db:"bcc_recipients" json:"bcc_recipients,omitempty"`
	BodyPreview   string         `db:"body_preview" json:"body_preview"`
	SentAt        time.Time      `db:"sent_at" json:"sent_at"`
	Success       bool           `db:"success" json:"success"`
	SentCount     int            `db:"sent_count" json:"sent_count"`
	FailedCount   int            `db:"failed_count" json:"failed_count"`
	Errors        pq.StringArray `db:"errors" json:"errors,omitempty"`
}

// SendEmailRequest is the payload for a bulk mail dispatch.
type SendEmailRequest struct {
	Subject string   `json:"subject" binding:"required"`
	Emails  []string `json:"emails" binding:"required,min=1"`
	Body    string   `json:"body" binding:"required"`
	BCC     []string `json:"bcc"`
	HTML    bool     `json:"html"`
}
