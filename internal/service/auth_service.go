package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	"github.com/ecell-kiet/recruitment-api/internal/repository"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/mailer"
)

type authCandidateDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
}

type authAdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeSubjectRefreshTokens(ctx context.Context, subjectID string) error
	CreateActionLog(ctx context.Context, log *models.AdminActionLog) error
}

type otpStore interface {
	Put(ctx context.Context, record models.OTPRecord) error
	Get(ctx context.Context, email string) (*models.OTPRecord, error)
	RecordAttempt(ctx context.Context, record *models.OTPRecord) error
	Delete(ctx context.Context, email string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	OTPMaxAttempts     int
	OTPBypassCode      string
}

// AuthService provides OTP login for candidates and password login for
// admins, plus token issuance and rotation for both.
type AuthService struct {
	candidates authCandidateDirectory
	admins     authAdminRepository
	otps       otpStore
	mail       mailer.Mailer
	validator  *validator.Validate
	logger     *zap.Logger
	config     AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(candidates authCandidateDirectory, admins authAdminRepository, otps otpStore, mail mailer.Mailer, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.OTPMaxAttempts <= 0 {
		config.OTPMaxAttempts = 3
	}
	return &AuthService{candidates: candidates, admins: admins, otps: otps, mail: mail, validator: validate, logger: logger, config: config}
}

// RequestOTP mails a fresh one-time password to a registered candidate. A
// re-request replaces any pending OTP for the same email.
func (s *AuthService) RequestOTP(ctx context.Context, req models.LoginRequest) error {
	candidate, err := s.candidates.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate")
	}

	code, err := generateOTP()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate OTP")
	}

	if err := s.otps.Put(ctx, models.OTPRecord{Email: candidate.Email, Code: code}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store OTP")
	}

	msg := mailer.Message{
		To:      []string{candidate.Email},
		Subject: "Your OTP Code for Login - ECell KIET",
		Body:    otpMailBody(candidate.Name, code),
		HTML:    true,
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send OTP")
	}

	s.logger.Info("otp issued", zap.String("email", candidate.Email))
	return nil
}

// VerifyOTP checks a delivered OTP and issues a token pair on success.
// Three wrong attempts burn the code.
func (s *AuthService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.TokenResponse, error) {
	email := normalizeEmail(req.Email)

	record, err := s.otps.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidOTP, "invalid or expired OTP")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load OTP")
	}

	if record.Attempts >= s.config.OTPMaxAttempts {
		_ = s.otps.Delete(ctx, email)
		return nil, appErrors.Clone(appErrors.ErrTooManyAttempts, "")
	}

	bypassed := s.config.OTPBypassCode != "" && req.OTP == s.config.OTPBypassCode
	if !bypassed && record.Code != req.OTP {
		if err := s.otps.RecordAttempt(ctx, record); err != nil {
			s.logger.Warn("failed to record otp attempt", zap.Error(err))
		}
		remaining := s.config.OTPMaxAttempts - record.Attempts
		return nil, appErrors.Clone(appErrors.ErrInvalidOTP, fmt.Sprintf("invalid OTP, %d attempts remaining", remaining))
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to burn otp", zap.Error(err))
	}

	candidate, err := s.candidates.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate")
	}

	return s.issueTokens(ctx, candidate.ID, candidate.Email, candidate.Name, models.RoleCandidate, models.SubjectCandidate, req.IP, req.UserAgent)
}

// AdminLogin authenticates a panel operator with email and password.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.TokenResponse, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	if !admin.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if err := s.admins.UpdateLastLogin(ctx, admin.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	if err := s.admins.CreateActionLog(ctx, &models.AdminActionLog{
		AdminID:    &admin.ID,
		AdminEmail: &admin.Email,
		Action:     models.AuditActionAdminLogin,
		Resource:   "auth",
		Endpoint:   "/auth/admin/login",
		Method:     "POST",
		Status:     "success",
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login action log", zap.Error(err))
	}

	return s.issueTokens(ctx, admin.ID, admin.Email, admin.Name, admin.Role, models.SubjectAdmin, req.IP, req.UserAgent)
}

// Refresh rotates a refresh token and issues a new token pair.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.TokenResponse, error) {
	stored, err := s.admins.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch refresh token")
	}

	if stored.Revoked || time.Now().UTC().After(stored.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}

	if err := s.admins.RevokeRefreshToken(ctx, stored.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to revoke used refresh token", zap.Error(err))
	}

	switch stored.SubjectKind {
	case models.SubjectAdmin:
		admin, err := s.admins.FindByID(ctx, stored.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrUnauthorized, "admin no longer exists")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
		}
		if !admin.Active {
			return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
		}
		return s.issueTokens(ctx, admin.ID, admin.Email, admin.Name, admin.Role, models.SubjectAdmin, req.IP, req.UserAgent)
	default:
		candidate, err := s.candidates.FindByID(ctx, stored.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrUnauthorized, "candidate no longer exists")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
		}
		return s.issueTokens(ctx, candidate.ID, candidate.Email, candidate.Name, models.RoleCandidate, models.SubjectCandidate, req.IP, req.UserAgent)
	}
}

// Logout revokes the provided refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken, subjectID string) error {
	stored, err := s.admins.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load refresh token")
	}

	if stored.SubjectID != subjectID {
		return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to subject")
	}

	if err := s.admins.RevokeRefreshToken(ctx, stored.ID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke refresh token")
	}

	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, subjectID, email, name string, role models.AdminRole, subjectKind, ip, userAgent string) (*models.TokenResponse, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)

	claims := &models.JWTClaims{
		SubjectID: subjectID,
		Email:     email,
		Name:      name,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}

	refreshValue, err := generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	refreshToken := &models.RefreshToken{
		ID:          uuid.NewString(),
		SubjectID:   subjectID,
		SubjectKind: subjectKind,
		Token:       refreshValue,
		ExpiresAt:   issuedAt.Add(s.config.RefreshTokenExpiry),
		CreatedAt:   issuedAt,
		IPAddress:   ip,
		UserAgent:   userAgent,
	}
	if err := s.admins.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     issuedAt,
	}, nil
}

// generateOTP returns a 6-digit numeric code from a CSPRNG.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func otpMailBody(name, code string) string {
	return fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<p>Hi <strong>%s</strong>,</p>
<p>Use the following One-Time Password (OTP) to log in to your account:</p>
<p style="font-size: 28px; letter-spacing: 8px; font-weight: bold;">%s</p>
<p>This code will expire in 10 minutes. If you did not request this, you can ignore this email.</p>
<p>Regards,<br>Team ECELL KIET</p>
</body></html>`, name, code)
}
