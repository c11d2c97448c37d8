package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims carries identity and role information in access tokens.
type JWTClaims struct {
	SubjectID string    `json:"sub_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// RefreshToken is an opaque long-lived token persisted in the
// refresh_tokens table. SubjectID references either a candidate or an admin
// depending on SubjectKind.
type RefreshToken struct {
	ID          string     `db:"id" json:"id"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	SubjectKind string     `db:"subject_kind" json:"subject_kind"`
	Token       string     `db:"token" json:"token"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	Revoked     bool       `db:"revoked" json:"revoked"`
	RevokedAt   *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress   string     `db:"ip_address" json:"ip_address"`
	UserAgent   string     `db:"user_agent" json:"user_agent"`
}

// Subject kinds for refresh tokens.
const (
	SubjectCandidate = "candidate"
	SubjectAdmin     = "admin"
)

// OTPRecord is the one-time password stored for a pending candidate login.
type OTPRecord struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Attempts int    `json:"attempts"`
}

// LoginRequest asks for an OTP to be mailed to a registered candidate.
type LoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// VerifyOTPRequest exchanges a delivered OTP for a token pair.
type VerifyOTPRequest struct {
	Email     string `json:"email" binding:"required,email"`
	OTP       string `json:"otp" binding:"required,len=6"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AdminLoginRequest authenticates a panel operator.
type AdminLoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// TokenResponse is the issued token pair.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}
