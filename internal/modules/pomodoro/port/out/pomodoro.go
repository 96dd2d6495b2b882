package out

import (
	"context"

	"studyo/internal/modules/pomodoro/domain"
)

// SettingsStore persists the timer configuration. Load returns
// apperrors.ErrNotFound when nothing has been saved yet.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}

type ResetStore interface {
	LoadReset(ctx context.Context) (domain.ResetOffset, error)
	SaveReset(ctx context.Context, reset domain.ResetOffset) error
	ClearReset(ctx context.Context) error
}

type SessionGateway interface {
	Create(ctx context.Context, session domain.StudySession) (domain.SessionRecord, error)
	List(ctx context.Context) ([]domain.SessionRecord, error)
}

// NavigationGuard warns the user before leaving while a timer runs.
// Install and Remove must not block or call back into the engine.
type NavigationGuard interface {
	Install()
	Remove()
}
