package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	"github.com/ecell-kiet/recruitment-api/pkg/jobs"
)

type mockSummaryRepo struct {
	summaries []models.EmailSummary
}

func (m *mockSummaryRepo) Create(ctx context.Context, summary *models.EmailSummary) error {
	m.summaries = append(m.summaries, *summary)
	return nil
}

func (m *mockSummaryRepo) List(ctx context.Context, page, pageSize int) ([]models.EmailSummary, int, error) {
	return m.summaries, len(m.summaries), nil
}

func newEmailSvc(mail *mockMailer, summaries *mockSummaryRepo, candidates *mockCandidateRepo) *EmailService {
	return NewEmailService(mail, summaries, candidates, nil, zap.NewNop(), 1)
}

func TestEmailDispatchPersonalizesAndRecordsSummary(t *testing.T) {
	mail := &mockMailer{}
	summaries := &mockSummaryRepo{}
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	svc := newEmailSvc(mail, summaries, candidates)

	err := svc.processDispatch(context.Background(), jobs.Job{
		ID:   "job1",
		Type: jobTypeEmailDispatch,
		Payload: emailDispatch{
			Subject: "Round 2 schedule",
			Emails:  []string{"a@x.com", "ghost@x.com"},
			Body:    "Hi {name}, your slot is confirmed.",
			HTML:    false,
		},
	})
	require.NoError(t, err)

	require.Len(t, mail.sent, 2)
	assert.Contains(t, mail.sent[0].Body, "Hi Asha,")
	assert.Contains(t, mail.sent[1].Body, "Hi ghost,")

	require.Len(t, summaries.summaries, 1)
	summary := summaries.summaries[0]
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.SentCount)
	assert.Equal(t, 0, summary.FailedCount)
	assert.Equal(t, "Round 2 schedule", summary.Subject)
}

func TestEmailDispatchRecordsPerRecipientFailures(t *testing.T) {
	mail := &mockMailer{sendErr: errors.New("smtp down")}
	summaries := &mockSummaryRepo{}
	svc := newEmailSvc(mail, summaries, newCandidateRepo())

	err := svc.processDispatch(context.Background(), jobs.Job{
		ID:   "job1",
		Type: jobTypeEmailDispatch,
		Payload: emailDispatch{
			Subject: "Round 2 schedule",
			Emails:  []string{"a@x.com", "b@x.com"},
			Body:    "plain body",
		},
	})
	require.NoError(t, err)

	require.Len(t, summaries.summaries, 1)
	summary := summaries.summaries[0]
	assert.False(t, summary.Success)
	assert.Equal(t, 0, summary.SentCount)
	assert.Equal(t, 2, summary.FailedCount)
	assert.Len(t, summary.Errors, 2)
}

func TestSendRejectsEmptyRecipients(t *testing.T) {
	svc := newEmailSvc(&mockMailer{}, &mockSummaryRepo{}, newCandidateRepo())
	svc.Start(context.Background())
	defer svc.Stop()

	err := svc.Send(context.Background(), models.SendEmailRequest{
		Subject: "hello",
		Emails:  []string{"   ", ""},
		Body:    "body",
	})
	require.Error(t, err)
}

func TestDedupEmails(t *testing.T) {
	out := dedupEmails([]string{"A@X.com", "a@x.com", " b@x.com ", ""})
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, out)
}
