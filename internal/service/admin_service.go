package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
)

type adminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	Deactivate(ctx context.Context, id string) error
	RevokeSubjectRefreshTokens(ctx context.Context, subjectID string) error
	ListActionLogs(ctx context.Context, page, pageSize int) ([]models.AdminActionLog, int, error)
}

// AdminService manages panel operator accounts.
type AdminService struct {
	repo      adminRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(repo adminRepository, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{repo: repo, validator: validate, logger: logger}
}

// Create provisions a new admin account.
func (s *AdminService) Create(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin")
	}
	if !models.ValidAdminRole(req.Role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be one of SuperAdmin, GDProctor, Interviewer, Screening")
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an admin with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admin := &models.Admin{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.logger.Info("admin created", zap.String("email", admin.Email), zap.String("role", string(admin.Role)))
	return admin, nil
}

// List returns all admin accounts.
func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// Deactivate soft-deletes an admin and revokes its refresh tokens. The last
// active SuperAdmin cannot be removed.
func (s *AdminService) Deactivate(ctx context.Context, id string) error {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	if admin.Role == models.RoleSuperAdmin {
		admins, err := s.repo.List(ctx)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
		}
		active := 0
		for _, a := range admins {
			if a.Role == models.RoleSuperAdmin && a.Active {
				active++
			}
		}
		if active <= 1 {
			return appErrors.Clone(appErrors.ErrConflict, "cannot deactivate the last SuperAdmin")
		}
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate admin")
	}
	if err := s.repo.RevokeSubjectRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke refresh tokens for deactivated admin", zap.Error(err))
	}

	s.logger.Info("admin deactivated", zap.String("admin_id", id), zap.Time("at", time.Now().UTC()))
	return nil
}

// ActionLogs returns the admin action log, newest first.
func (s *AdminService) ActionLogs(ctx context.Context, page, pageSize int) ([]models.AdminActionLog, int, error) {
	logs, total, err := s.repo.ListActionLogs(ctx, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list action logs")
	}
	return logs, total, nil
}
