package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Create(ctx context.Context, settings *models.Settings) error
	Update(ctx context.Context, settings *models.Settings) error
}

// SettingsService manages the single-row application settings.
type SettingsService struct {
	repo   settingsRepository
	logger *zap.Logger
}

// NewSettingsService constructs a SettingsService instance.
func NewSettingsService(repo settingsRepository, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, logger: logger}
}

// Get returns the settings row, creating the default row on first use.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			settings = &models.Settings{IsResultOut: false}
			if err := s.repo.Create(ctx, settings); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise settings")
			}
			return settings, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// Update patches settings fields.
func (s *SettingsService) Update(ctx context.Context, req models.UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if req.IsResultOut != nil {
		settings.IsResultOut = *req.IsResultOut
	}
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update settings")
	}
	s.logger.Info("settings updated", zap.Bool("is_result_out", settings.IsResultOut))
	return settings, nil
}

// ToggleResult flips the result visibility flag and returns the new state.
func (s *SettingsService) ToggleResult(ctx context.Context) (*models.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.IsResultOut = !settings.IsResultOut
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle result flag")
	}
	s.logger.Info("result visibility toggled", zap.Bool("is_result_out", settings.IsResultOut))
	return settings, nil
}

// IsResultOut reports whether round outcomes are visible to candidates.
func (s *SettingsService) IsResultOut(ctx context.Context) (bool, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.IsResultOut, nil
}
