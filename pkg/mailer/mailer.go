package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	BCC     []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers messages to recipients.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// New returns an SMTP-backed mailer, or a log-only mailer when SMTP is
// disabled (local development).
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return &logMailer{logger: logger}
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send delivers the message via SMTP. BCC recipients are included in the
// envelope but omitted from headers.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mailer: message has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	contentType := "text/plain; charset=\"utf-8\""
	if msg.HTML {
		contentType = "text/html; charset=\"utf-8\""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	b.WriteString(msg.Body)

	envelope := append(append([]string{}, msg.To...), msg.BCC...)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, envelope, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Debug("mail sent", zap.Int("recipients", len(envelope)), zap.String("subject", msg.Subject))
	return nil
}

// logMailer records messages instead of delivering them.
type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail suppressed (SMTP disabled)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
