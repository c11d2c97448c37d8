package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
)

type mockCandidateRepo struct {
	byEmail   map[string]*models.Candidate
	byID      map[string]*models.Candidate
	created   []models.Candidate
	updated   []models.Candidate
	createErr error
	updateErr error
}

func newCandidateRepo(candidates ...*models.Candidate) *mockCandidateRepo {
	repo := &mockCandidateRepo{
		byEmail: map[string]*models.Candidate{},
		byID:    map[string]*models.Candidate{},
	}
	for _, c := range candidates {
		repo.byEmail[c.Email] = c
		repo.byID[c.ID] = c
	}
	return repo
}

func (m *mockCandidateRepo) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	if c, ok := m.byEmail[email]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCandidateRepo) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	if c, ok := m.byID[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCandidateRepo) FindByGroup(ctx context.Context, groupNumber int) ([]models.Candidate, error) {
	var members []models.Candidate
	for _, c := range m.byEmail {
		if c.GroupNumber != nil && *c.GroupNumber == groupNumber {
			members = append(members, *c)
		}
	}
	return members, nil
}

func (m *mockCandidateRepo) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error) {
	var all []models.Candidate
	for _, c := range m.byEmail {
		all = append(all, *c)
	}
	return all, len(all), nil
}

func (m *mockCandidateRepo) Create(ctx context.Context, candidate *models.Candidate) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, *candidate)
	m.byEmail[candidate.Email] = candidate
	return nil
}

func (m *mockCandidateRepo) Update(ctx context.Context, candidate *models.Candidate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, *candidate)
	if stored, ok := m.byEmail[candidate.Email]; ok {
		*stored = *candidate
	}
	return nil
}

type stubGate struct {
	out bool
	err error
}

func (g stubGate) IsResultOut(ctx context.Context) (bool, error) {
	return g.out, g.err
}

func newCandidateSvc(repo *mockCandidateRepo, gate resultGate) *CandidateService {
	if gate == nil {
		gate = stubGate{}
	}
	return NewCandidateService(repo, gate, nil, zap.NewNop())
}

func validRegistration() models.RegisterCandidateRequest {
	return models.RegisterCandidateRequest{
		Name:          "Asha Verma",
		Email:         "Asha.Verma@Example.Com",
		Phone:         "9876543210",
		Year:          2,
		LibraryID:     "LIB-1042",
		Branch:        "CSE",
		WhyECell:      "I want to build things",
		Domains:       []string{"Tech", "Design"},
		DomainPrefOne: models.DomainPreference{Name: "Tech", Reason: "builds apps"},
		DomainPrefTwo: models.DomainPreference{Name: "Design", Reason: "likes figma"},
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	repo := newCandidateRepo()
	svc := newCandidateSvc(repo, nil)

	candidate, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "asha.verma@example.com", candidate.Email)
	require.Len(t, repo.created, 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newCandidateRepo(&models.Candidate{ID: "c1", Email: "asha.verma@example.com"})
	svc := newCandidateSvc(repo, nil)

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterRejectsInvalidForm(t *testing.T) {
	repo := newCandidateRepo()
	svc := newCandidateSvc(repo, nil)

	req := validRegistration()
	req.Email = "not-an-email"
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestProfileMasksOutcomesUntilResultsOut(t *testing.T) {
	when := time.Date(2025, 9, 5, 17, 0, 0, 0, time.UTC)
	repo := newCandidateRepo(&models.Candidate{
		ID:    "c1",
		Email: "a@x.com",
		GD:    models.RoundState{Status: models.RoundStatusSelected, Datetime: &when, Remarks: models.TextRemarks("strong")},
		PI:    models.RoundState{Status: models.RoundStatusScheduled, Datetime: &when},
	})

	svc := newCandidateSvc(repo, stubGate{out: false})
	candidate, err := svc.Profile(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusPending, candidate.GD.Status)
	assert.Equal(t, "", candidate.GD.Remarks.Text())
	require.NotNil(t, candidate.GD.Datetime)
	assert.Equal(t, models.RoundStatusScheduled, candidate.PI.Status)

	svc = newCandidateSvc(repo, stubGate{out: true})
	candidate, err = svc.Profile(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusSelected, candidate.GD.Status)
	assert.Equal(t, "strong", candidate.GD.Remarks.Text())
}

func TestUpdateRoundScreeningReplacesDomains(t *testing.T) {
	repo := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Domains: []string{"Tech", "Design"}})
	svc := newCandidateSvc(repo, nil)

	status := models.RoundStatusSelected
	dt := "2025-09-05T17:00:00Z"
	remarks := models.TextRemarks("good fit")
	candidate, err := svc.UpdateRound(context.Background(), "a@x.com", RoundScreening, models.RoundUpdateRequest{
		Status:   &status,
		Datetime: &dt,
		Remarks:  &remarks,
		Domains:  []string{"Tech"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusSelected, candidate.Screening.Status)
	assert.Equal(t, []string{"Tech"}, []string(candidate.Domains))
	require.NotNil(t, candidate.Screening.Datetime)
	assert.Equal(t, 17, candidate.Screening.Datetime.Hour())
}

func TestUpdateRoundRejectsUnknownRound(t *testing.T) {
	svc := newCandidateSvc(newCandidateRepo(), nil)
	_, err := svc.UpdateRound(context.Background(), "a@x.com", "finals", models.RoundUpdateRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateRoundRejectsBadDatetime(t *testing.T) {
	repo := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com"})
	svc := newCandidateSvc(repo, nil)

	dt := "05-09-2025 17:00"
	_, err := svc.UpdateRound(context.Background(), "a@x.com", RoundGD, models.RoundUpdateRequest{Datetime: &dt})
	require.Error(t, err)
	assert.Empty(t, repo.updated)
}

func TestAssignSlotsDeduplicatesAndReportsMissing(t *testing.T) {
	repo := newCandidateRepo(
		&models.Candidate{ID: "c1", Email: "a@x.com"},
		&models.Candidate{ID: "c2", Email: "b@x.com"},
	)
	svc := newCandidateSvc(repo, nil)

	result, err := svc.AssignSlots(context.Background(), models.SlotAssignmentRequest{
		Emails: []string{"a@x.com", "A@X.COM", "ghost@x.com", "b@x.com"},
		Slot:   "Day 2 - 10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, result.Updated)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "ghost@x.com", result.Failed[0].Email)
	require.Len(t, repo.updated, 2)
	require.NotNil(t, repo.byEmail["a@x.com"].AssignedSlot)
	assert.Equal(t, "Day 2 - 10:00", *repo.byEmail["a@x.com"].AssignedSlot)
}

func TestShortlistSeedsDomainTasks(t *testing.T) {
	repo := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Domains: []string{"Tech", "PR"}})
	svc := newCandidateSvc(repo, nil)

	candidate, err := svc.SetShortlist(context.Background(), models.ShortlistRequest{Email: "a@x.com", Shortlisted: true})
	require.NoError(t, err)
	assert.True(t, candidate.Shortlisted)
	assert.Equal(t, models.TaskStatusPending, candidate.Task.Status)
	require.Len(t, candidate.Task.Tasks, 2)
	assert.Equal(t, "Tech", candidate.Task.Tasks[0].Domain)
	assert.Equal(t, models.TaskStatusPending, candidate.Task.Tasks[0].Status)

	candidate, err = svc.SetShortlist(context.Background(), models.ShortlistRequest{Email: "a@x.com", Shortlisted: false})
	require.NoError(t, err)
	assert.False(t, candidate.Shortlisted)
	assert.Empty(t, candidate.Task.Tasks)
}

func TestSubmitTaskRollsUpStatus(t *testing.T) {
	repo := newCandidateRepo(&models.Candidate{
		ID:          "c1",
		Email:       "a@x.com",
		Shortlisted: true,
		Task: models.TaskState{
			Status: models.TaskStatusPending,
			Tasks: []models.TaskItem{
				{Domain: "Tech", Status: models.TaskStatusPending},
				{Domain: "PR", Status: models.TaskStatusPending},
			},
		},
	})
	svc := newCandidateSvc(repo, nil)

	candidate, err := svc.SubmitTask(context.Background(), "a@x.com", models.TaskSubmissionRequest{
		Domain: "tech",
		URL:    "https://github.com/asha/task",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, candidate.Task.Status)
	assert.Equal(t, models.TaskStatusCompleted, candidate.Task.Tasks[0].Status)
	assert.Equal(t, "https://github.com/asha/task", candidate.Task.Tasks[0].URL)

	candidate, err = svc.SubmitTask(context.Background(), "a@x.com", models.TaskSubmissionRequest{
		Domain: "PR",
		URL:    "https://github.com/asha/pr-task",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, candidate.Task.Status)
}

func TestSubmitTaskRequiresShortlist(t *testing.T) {
	repo := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com"})
	svc := newCandidateSvc(repo, nil)

	_, err := svc.SubmitTask(context.Background(), "a@x.com", models.TaskSubmissionRequest{
		Domain: "Tech",
		URL:    "https://github.com/asha/task",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotShortlisted.Code, appErr.Code)
}

func TestSubmitTaskUnknownDomain(t *testing.T) {
	repo := newCandidateRepo(&models.Candidate{
		ID:          "c1",
		Email:       "a@x.com",
		Shortlisted: true,
		Task: models.TaskState{
			Status: models.TaskStatusPending,
			Tasks:  []models.TaskItem{{Domain: "Tech", Status: models.TaskStatusPending}},
		},
	})
	svc := newCandidateSvc(repo, nil)

	_, err := svc.SubmitTask(context.Background(), "a@x.com", models.TaskSubmissionRequest{
		Domain: "Finance",
		URL:    "https://github.com/asha/task",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGetByGroupEmpty(t *testing.T) {
	svc := newCandidateSvc(newCandidateRepo(), nil)
	_, err := svc.GetByGroup(context.Background(), 4)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
