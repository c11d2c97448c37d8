package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
)

type mockAdminRepo struct {
	admins  map[string]*models.Admin
	logs    []models.AdminActionLog
	revoked []string
}

func newAdminRepo(admins ...*models.Admin) *mockAdminRepo {
	m := &mockAdminRepo{admins: map[string]*models.Admin{}}
	for _, a := range admins {
		m.admins[a.ID] = a
	}
	return m
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			copy := *a
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if a, ok := m.admins[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminRepo) List(ctx context.Context) ([]models.Admin, error) {
	var all []models.Admin
	for _, a := range m.admins {
		all = append(all, *a)
	}
	return all, nil
}

func (m *mockAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = "adm-" + admin.Email
	}
	m.admins[admin.ID] = admin
	return nil
}

func (m *mockAdminRepo) Deactivate(ctx context.Context, id string) error {
	if a, ok := m.admins[id]; ok {
		a.Active = false
	}
	return nil
}

func (m *mockAdminRepo) RevokeSubjectRefreshTokens(ctx context.Context, subjectID string) error {
	m.revoked = append(m.revoked, subjectID)
	return nil
}

func (m *mockAdminRepo) ListActionLogs(ctx context.Context, page, pageSize int) ([]models.AdminActionLog, int, error) {
	return m.logs, len(m.logs), nil
}

func superAdmin(id, email string) *models.Admin {
	return &models.Admin{ID: id, Email: email, Role: models.RoleSuperAdmin, Active: true, CreatedAt: time.Now().UTC()}
}

func TestAdminCreateHashesPassword(t *testing.T) {
	repo := newAdminRepo()
	svc := NewAdminService(repo, nil, zap.NewNop())

	admin, err := svc.Create(context.Background(), models.CreateAdminRequest{
		Name:     "Proctor",
		Email:    "Proctor@X.com",
		Password: "long-enough-pass",
		Role:     models.RoleGDProctor,
	})
	require.NoError(t, err)
	assert.Equal(t, "proctor@x.com", admin.Email)
	assert.True(t, admin.Active)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("long-enough-pass")))
}

func TestAdminCreateDuplicateEmail(t *testing.T) {
	repo := newAdminRepo(&models.Admin{ID: "adm1", Email: "proctor@x.com", Role: models.RoleGDProctor, Active: true})
	svc := NewAdminService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), models.CreateAdminRequest{
		Name:     "Proctor",
		Email:    "proctor@x.com",
		Password: "long-enough-pass",
		Role:     models.RoleGDProctor,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAdminCreateRejectsCandidateRole(t *testing.T) {
	svc := NewAdminService(newAdminRepo(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), models.CreateAdminRequest{
		Name:     "Sneaky",
		Email:    "sneaky@x.com",
		Password: "long-enough-pass",
		Role:     models.RoleCandidate,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminDeactivateRevokesTokens(t *testing.T) {
	repo := newAdminRepo(
		superAdmin("adm1", "root@x.com"),
		&models.Admin{ID: "adm2", Email: "proctor@x.com", Role: models.RoleGDProctor, Active: true},
	)
	svc := NewAdminService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "adm2"))
	assert.False(t, repo.admins["adm2"].Active)
	assert.Equal(t, []string{"adm2"}, repo.revoked)
}

func TestAdminDeactivateKeepsLastSuperAdmin(t *testing.T) {
	repo := newAdminRepo(superAdmin("adm1", "root@x.com"))
	svc := NewAdminService(repo, nil, zap.NewNop())

	err := svc.Deactivate(context.Background(), "adm1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.True(t, repo.admins["adm1"].Active)
}

func TestAdminDeactivateSecondSuperAdmin(t *testing.T) {
	repo := newAdminRepo(
		superAdmin("adm1", "root@x.com"),
		superAdmin("adm2", "root2@x.com"),
	)
	svc := NewAdminService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "adm2"))
	assert.False(t, repo.admins["adm2"].Active)
}
