package in

import (
	"context"

	"studyo/internal/modules/pomodoro/dto"
)

type Usecase interface {
	Start(ctx context.Context) dto.SnapshotOutput
	Pause(ctx context.Context) dto.SnapshotOutput
	Toggle(ctx context.Context) dto.SnapshotOutput
	Skip(ctx context.Context) dto.SnapshotOutput
	Reset(ctx context.Context, input dto.ResetInput) (dto.SnapshotOutput, error)
	ResetCycles(ctx context.Context) dto.SnapshotOutput
	Snapshot(ctx context.Context) dto.SnapshotOutput
	Subscribe(buffer int) (<-chan dto.SnapshotOutput, func())

	Settings(ctx context.Context) dto.SettingsOutput
	UpdateSettings(ctx context.Context, input dto.SettingsInput) (dto.SettingsOutput, error)
	ResetSettings(ctx context.Context) dto.SettingsOutput

	Summary(ctx context.Context) (dto.SummaryOutput, error)
	ResetToday(ctx context.Context) (dto.SummaryOutput, error)
	Dashboard(ctx context.Context) dto.DashboardOutput
	OnSummary(fn func(dto.SummaryOutput)) func()

	WaitCommits(ctx context.Context) error
	Dispose()
}
