package models

import "time"

// AdminRole represents the panel roles used by the RBAC system.
type AdminRole string

const (
	RoleSuperAdmin  AdminRole = "SuperAdmin"
	RoleGDProctor   AdminRole = "GDProctor"
	RoleInterviewer AdminRole = "Interviewer"
	RoleScreening   AdminRole = "Screening"
	// RoleCandidate marks tokens issued to applicants via OTP login.
	RoleCandidate AdminRole = "Candidate"
)

// ValidAdminRole reports whether the role can be assigned to an admin.
func ValidAdminRole(r AdminRole) bool {
	switch r {
	case RoleSuperAdmin, RoleGDProctor, RoleInterviewer, RoleScreening:
		return true
	}
	return false
}

// CreateAdminRequest is the payload for provisioning a panel operator.
type CreateAdminRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8"`
	Role     AdminRole `json:"role" binding:"required"`
}

// Admin represents a panel operator stored in the admins table.
type Admin struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         AdminRole  `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
