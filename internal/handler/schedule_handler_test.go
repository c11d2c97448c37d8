package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	"github.com/ecell-kiet/recruitment-api/internal/service"
	"github.com/ecell-kiet/recruitment-api/pkg/response"
)

type directoryStub struct {
	candidates map[string]*models.Candidate
	maxGroup   int
	updated    []models.Candidate
}

func newDirectoryStub(emails ...string) *directoryStub {
	stub := &directoryStub{candidates: map[string]*models.Candidate{}}
	for _, email := range emails {
		stub.candidates[email] = &models.Candidate{ID: email, Name: email, Email: email}
	}
	return stub
}

func (s *directoryStub) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	if c, ok := s.candidates[email]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *directoryStub) FindByGroup(ctx context.Context, groupNumber int) ([]models.Candidate, error) {
	var members []models.Candidate
	for _, c := range s.candidates {
		if c.GroupNumber != nil && *c.GroupNumber == groupNumber {
			members = append(members, *c)
		}
	}
	return members, nil
}

func (s *directoryStub) MaxGroupNumber(ctx context.Context) (int, error) {
	return s.maxGroup, nil
}

func (s *directoryStub) UpdateRounds(ctx context.Context, candidate *models.Candidate) error {
	s.updated = append(s.updated, *candidate)
	if stored, ok := s.candidates[candidate.Email]; ok {
		*stored = *candidate
	}
	return nil
}

func newScheduleHandler(stub *directoryStub) *ScheduleHandler {
	scheduler := service.NewSchedulerService(stub, service.IdentityOrder, time.Sunday, zap.NewNop())
	return NewScheduleHandler(scheduler, service.NewMetricsService())
}

func postJSON(t *testing.T, path string, payload interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestBulkRoundsSchedulesBatches(t *testing.T) {
	stub := newDirectoryStub("a@x.com", "b@x.com", "c@x.com")
	handler := newScheduleHandler(stub)

	w, c := postJSON(t, "/candidates/rounds/bulk", models.BulkRoundsRequest{
		Emails:        []string{"a@x.com", "b@x.com", "c@x.com"},
		BatchSize:     2,
		StartDate:     "2025-09-05",
		StartTime:     "17:00",
		EndTime:       "21:00",
		RoundDuration: 10,
	})
	handler.BulkRounds(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.ScheduleRunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.TotalUsersScheduled)
	assert.Equal(t, 2, envelope.Data.TotalBatches)
	assert.Empty(t, envelope.Data.Failed)
	require.Len(t, envelope.Data.Batches, 2)
	assert.Equal(t, "17:00", envelope.Data.Batches[0].GDTime)
	assert.Len(t, stub.updated, 3)
}

func TestBulkRoundsReportsMissingCandidates(t *testing.T) {
	stub := newDirectoryStub("a@x.com")
	handler := newScheduleHandler(stub)

	w, c := postJSON(t, "/candidates/rounds/bulk", models.BulkRoundsRequest{
		Emails:        []string{"a@x.com", "ghost@x.com"},
		BatchSize:     2,
		StartDate:     "2025-09-05",
		StartTime:     "17:00",
		EndTime:       "21:00",
		RoundDuration: 10,
	})
	handler.BulkRounds(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.ScheduleRunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.TotalUsersScheduled)
	require.Len(t, envelope.Data.Failed, 1)
	assert.Equal(t, "ghost@x.com", envelope.Data.Failed[0].Email)
}

func TestBulkRoundsWindowTooSmall(t *testing.T) {
	stub := newDirectoryStub("a@x.com")
	handler := newScheduleHandler(stub)

	w, c := postJSON(t, "/candidates/rounds/bulk", models.BulkRoundsRequest{
		Emails:        []string{"a@x.com"},
		BatchSize:     1,
		StartDate:     "2025-09-05",
		StartTime:     "17:00",
		EndTime:       "17:25",
		RoundDuration: 10,
	})
	handler.BulkRounds(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SCHEDULE_WINDOW_TOO_SMALL", envelope.Error.Code)
	assert.Empty(t, stub.updated)
}

func TestBulkRoundsInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandler(newDirectoryStub())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/candidates/rounds/bulk", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.BulkRounds(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMoveGroupsCopiesSchedule(t *testing.T) {
	stub := newDirectoryStub("a@x.com", "b@x.com")
	group := 7
	when := time.Date(2025, 9, 5, 17, 0, 0, 0, time.UTC)
	ref := stub.candidates["a@x.com"]
	ref.GroupNumber = &group
	ref.GD = models.RoundState{Status: models.RoundStatusScheduled, Datetime: &when, Remarks: models.TextRemarks("Batch 1 - Group 7")}
	ref.Screening = models.RoundState{Status: models.RoundStatusScheduled, Datetime: &when}
	ref.PI = models.RoundState{Status: models.RoundStatusScheduled, Datetime: &when}

	handler := newScheduleHandler(stub)
	w, c := postJSON(t, "/candidates/groups/move", models.MoveGroupRequest{
		Emails:            []string{"b@x.com"},
		TargetGroupNumber: 7,
	})
	handler.MoveGroups(c)
	require.Equal(t, http.StatusOK, w.Code)

	moved := stub.candidates["b@x.com"]
	require.NotNil(t, moved.GroupNumber)
	assert.Equal(t, 7, *moved.GroupNumber)
	require.NotNil(t, moved.GD.Datetime)
	assert.True(t, moved.GD.Datetime.Equal(when))
}
