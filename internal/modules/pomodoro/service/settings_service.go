package service

import (
	"context"
	"errors"
	"log/slog"

	"studyo/internal/modules/pomodoro/domain"
	pomodoroout "studyo/internal/modules/pomodoro/port/out"
	apperrors "studyo/internal/platform/errors"
)

// SettingsService never fails a caller: unreadable settings fall back to
// defaults and write failures are logged.
type SettingsService struct {
	store  pomodoroout.SettingsStore
	logger *slog.Logger
}

func NewSettingsService(store pomodoroout.SettingsStore, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{store: store, logger: logger}
}

func (s *SettingsService) Load(ctx context.Context) domain.Settings {
	if s.store == nil {
		return domain.DefaultSettings()
	}
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("settings unreadable, using defaults", slog.String("error", err.Error()))
		}
		return domain.DefaultSettings()
	}
	return settings.Normalize()
}

func (s *SettingsService) Save(ctx context.Context, settings domain.Settings) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		s.logger.Error("persist settings", slog.String("error", err.Error()))
		return err
	}
	return nil
}
