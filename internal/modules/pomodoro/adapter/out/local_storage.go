package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"studyo/internal/modules/pomodoro/domain"
	pomodoroout "studyo/internal/modules/pomodoro/port/out"
	apperrors "studyo/internal/platform/errors"
)

const (
	SettingsKey = "pomodoroSettings"
	ResetKey    = "pomodoroReset"
)

// LocalStorage is a string key/value store; kvstore.Store satisfies it.
type LocalStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVStore keeps timer settings and the daily reset offset as JSON documents.
type KVStore struct {
	storage LocalStorage
}

func NewKVStore(storage LocalStorage) *KVStore {
	return &KVStore{storage: storage}
}

var (
	_ pomodoroout.SettingsStore = (*KVStore)(nil)
	_ pomodoroout.ResetStore    = (*KVStore)(nil)
)

// LoadSettings overlays the stored document on the defaults, so a partial or
// older document still yields a complete value.
func (s *KVStore) LoadSettings(ctx context.Context) (domain.Settings, error) {
	raw, err := s.storage.Get(ctx, SettingsKey)
	if err != nil {
		return domain.Settings{}, err
	}
	settings := domain.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("decode %s: %w", SettingsKey, err)
	}
	return settings.Normalize(), nil
}

func (s *KVStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode %s: %w", SettingsKey, err)
	}
	return s.storage.Set(ctx, SettingsKey, string(payload))
}

func (s *KVStore) LoadReset(ctx context.Context) (domain.ResetOffset, error) {
	raw, err := s.storage.Get(ctx, ResetKey)
	if err != nil {
		return domain.ResetOffset{}, err
	}
	reset := domain.ResetOffset{}
	if err := json.Unmarshal([]byte(raw), &reset); err != nil {
		return domain.ResetOffset{}, fmt.Errorf("decode %s: %w", ResetKey, err)
	}
	if reset.Day == "" {
		return domain.ResetOffset{}, apperrors.ErrNotFound
	}
	return reset, nil
}

func (s *KVStore) SaveReset(ctx context.Context, reset domain.ResetOffset) error {
	payload, err := json.Marshal(reset)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ResetKey, err)
	}
	return s.storage.Set(ctx, ResetKey, string(payload))
}

func (s *KVStore) ClearReset(ctx context.Context) error {
	if err := s.storage.Delete(ctx, ResetKey); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}
