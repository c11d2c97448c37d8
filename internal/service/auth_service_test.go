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
	"github.com/ecell-kiet/recruitment-api/internal/repository"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/mailer"
)

type mockAuthAdmins struct {
	admins        map[string]*models.Admin
	refreshTokens map[string]*models.RefreshToken
	actionLogs    []models.AdminActionLog
	lastLogin     map[string]time.Time
}

func newAuthAdmins(admins ...*models.Admin) *mockAuthAdmins {
	m := &mockAuthAdmins{
		admins:        map[string]*models.Admin{},
		refreshTokens: map[string]*models.RefreshToken{},
		lastLogin:     map[string]time.Time{},
	}
	for _, a := range admins {
		m.admins[a.Email] = a
	}
	return m
}

func (m *mockAuthAdmins) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if a, ok := m.admins[email]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthAdmins) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	for _, a := range m.admins {
		if a.ID == id {
			copy := *a
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthAdmins) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin[id] = ts
	return nil
}

func (m *mockAuthAdmins) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthAdmins) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := m.refreshTokens[token]; ok {
		copy := *rt
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthAdmins) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, rt := range m.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthAdmins) RevokeSubjectRefreshTokens(ctx context.Context, subjectID string) error {
	now := time.Now().UTC()
	for _, rt := range m.refreshTokens {
		if rt.SubjectID == subjectID {
			rt.Revoked = true
			rt.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockAuthAdmins) CreateActionLog(ctx context.Context, log *models.AdminActionLog) error {
	m.actionLogs = append(m.actionLogs, *log)
	return nil
}

type mockOTPs struct {
	records map[string]*models.OTPRecord
}

func newOTPs() *mockOTPs {
	return &mockOTPs{records: map[string]*models.OTPRecord{}}
}

func (m *mockOTPs) Put(ctx context.Context, record models.OTPRecord) error {
	m.records[record.Email] = &record
	return nil
}

func (m *mockOTPs) Get(ctx context.Context, email string) (*models.OTPRecord, error) {
	if r, ok := m.records[email]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, repository.ErrOTPNotFound
}

func (m *mockOTPs) RecordAttempt(ctx context.Context, record *models.OTPRecord) error {
	record.Attempts++
	if stored, ok := m.records[record.Email]; ok {
		stored.Attempts = record.Attempts
	}
	return nil
}

func (m *mockOTPs) Delete(ctx context.Context, email string) error {
	delete(m.records, email)
	return nil
}

type mockMailer struct {
	sent    []mailer.Message
	sendErr error
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "recruitment-api",
		OTPMaxAttempts:     3,
		OTPBypassCode:      "999999",
	}
}

func newAuthSvc(candidates *mockCandidateRepo, admins *mockAuthAdmins, otps *mockOTPs, mail *mockMailer) *AuthService {
	return NewAuthService(candidates, admins, otps, mail, nil, zap.NewNop(), testAuthConfig())
}

func TestRequestOTPDeliversMail(t *testing.T) {
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	mail := &mockMailer{}
	otps := newOTPs()
	svc := newAuthSvc(candidates, newAuthAdmins(), otps, mail)

	err := svc.RequestOTP(context.Background(), models.LoginRequest{Email: "A@X.com"})
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"a@x.com"}, mail.sent[0].To)

	record, err := otps.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Len(t, record.Code, 6)
	assert.Contains(t, mail.sent[0].Body, record.Code)
}

func TestRequestOTPUnknownCandidate(t *testing.T) {
	svc := newAuthSvc(newCandidateRepo(), newAuthAdmins(), newOTPs(), &mockMailer{})

	err := svc.RequestOTP(context.Background(), models.LoginRequest{Email: "ghost@x.com"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestVerifyOTPIssuesTokens(t *testing.T) {
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	admins := newAuthAdmins()
	otps := newOTPs()
	require.NoError(t, otps.Put(context.Background(), models.OTPRecord{Email: "a@x.com", Code: "123456"}))

	svc := newAuthSvc(candidates, admins, otps, &mockMailer{})
	tokens, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "bearer", tokens.TokenType)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "c1", claims.SubjectID)
	assert.Equal(t, models.RoleCandidate, claims.Role)

	// the OTP is single use
	_, err = svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "123456"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErrors.FromError(err).Code)
}

func TestVerifyOTPBypassCode(t *testing.T) {
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	otps := newOTPs()
	require.NoError(t, otps.Put(context.Background(), models.OTPRecord{Email: "a@x.com", Code: "123456"}))

	svc := newAuthSvc(candidates, newAuthAdmins(), otps, &mockMailer{})
	tokens, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "999999"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestVerifyOTPAttemptsExhausted(t *testing.T) {
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	otps := newOTPs()
	require.NoError(t, otps.Put(context.Background(), models.OTPRecord{Email: "a@x.com", Code: "123456"}))

	svc := newAuthSvc(candidates, newAuthAdmins(), otps, &mockMailer{})
	for i := 0; i < 3; i++ {
		_, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "000000"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErrors.FromError(err).Code)
	}

	_, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "123456"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTooManyAttempts.Code, appErrors.FromError(err).Code)

	// the burned OTP no longer exists
	_, err = svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "123456"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErrors.FromError(err).Code)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAdminLogin(t *testing.T) {
	admins := newAuthAdmins(&models.Admin{
		ID:           "adm1",
		Name:         "Root",
		Email:        "root@x.com",
		PasswordHash: hashPassword(t, "s3cret-pass"),
		Role:         models.RoleSuperAdmin,
		Active:       true,
	})
	svc := newAuthSvc(newCandidateRepo(), admins, newOTPs(), &mockMailer{})

	tokens, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "root@x.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
	assert.NotZero(t, admins.lastLogin["adm1"])
	require.Len(t, admins.actionLogs, 1)
	assert.Equal(t, models.AuditActionAdminLogin, admins.actionLogs[0].Action)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	admins := newAuthAdmins(&models.Admin{
		ID:           "adm1",
		Email:        "root@x.com",
		PasswordHash: hashPassword(t, "s3cret-pass"),
		Role:         models.RoleSuperAdmin,
		Active:       true,
	})
	svc := newAuthSvc(newCandidateRepo(), admins, newOTPs(), &mockMailer{})

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "root@x.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAdminLoginInactive(t *testing.T) {
	admins := newAuthAdmins(&models.Admin{
		ID:           "adm1",
		Email:        "root@x.com",
		PasswordHash: hashPassword(t, "s3cret-pass"),
		Role:         models.RoleSuperAdmin,
		Active:       false,
	})
	svc := newAuthSvc(newCandidateRepo(), admins, newOTPs(), &mockMailer{})

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "root@x.com", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	admins := newAuthAdmins()
	otps := newOTPs()
	require.NoError(t, otps.Put(context.Background(), models.OTPRecord{Email: "a@x.com", Code: "123456"}))

	svc := newAuthSvc(candidates, admins, otps, &mockMailer{})
	first, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "123456"})
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the consumed token cannot be replayed
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	admins := newAuthAdmins()
	otps := newOTPs()
	require.NoError(t, otps.Put(context.Background(), models.OTPRecord{Email: "a@x.com", Code: "123456"}))

	svc := newAuthSvc(candidates, admins, otps, &mockMailer{})
	tokens, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "123456"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), tokens.RefreshToken, "c1"))

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.Error(t, err)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	candidates := newCandidateRepo(&models.Candidate{ID: "c1", Email: "a@x.com", Name: "Asha"})
	admins := newAuthAdmins()
	otps := newOTPs()
	require.NoError(t, otps.Put(context.Background(), models.OTPRecord{Email: "a@x.com", Code: "123456"}))

	svc := newAuthSvc(candidates, admins, otps, &mockMailer{})
	tokens, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "a@x.com", OTP: "123456"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), tokens.RefreshToken, "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
