package in

import (
	"context"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
	pomodoroin "studyo/internal/modules/pomodoro/port/in"
)

type CLIHandler struct {
	usecase pomodoroin.Usecase
}

func NewCLIHandler(usecase pomodoroin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) pomodorodto.SnapshotOutput {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Pause(ctx context.Context) pomodorodto.SnapshotOutput {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Toggle(ctx context.Context) pomodorodto.SnapshotOutput {
	return h.usecase.Toggle(ctx)
}

func (h CLIHandler) Skip(ctx context.Context) pomodorodto.SnapshotOutput {
	return h.usecase.Skip(ctx)
}

func (h CLIHandler) Reset(ctx context.Context, input pomodorodto.ResetInput) (pomodorodto.SnapshotOutput, error) {
	return h.usecase.Reset(ctx, input)
}

func (h CLIHandler) ResetCycles(ctx context.Context) pomodorodto.SnapshotOutput {
	return h.usecase.ResetCycles(ctx)
}

func (h CLIHandler) Snapshot(ctx context.Context) pomodorodto.SnapshotOutput {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Subscribe(buffer int) (<-chan pomodorodto.SnapshotOutput, func()) {
	return h.usecase.Subscribe(buffer)
}

func (h CLIHandler) Settings(ctx context.Context) pomodorodto.SettingsOutput {
	return h.usecase.Settings(ctx)
}

func (h CLIHandler) UpdateSettings(ctx context.Context, input pomodorodto.SettingsInput) (pomodorodto.SettingsOutput, error) {
	return h.usecase.UpdateSettings(ctx, input)
}

func (h CLIHandler) ResetSettings(ctx context.Context) pomodorodto.SettingsOutput {
	return h.usecase.ResetSettings(ctx)
}

func (h CLIHandler) Summary(ctx context.Context) (pomodorodto.SummaryOutput, error) {
	return h.usecase.Summary(ctx)
}

func (h CLIHandler) ResetToday(ctx context.Context) (pomodorodto.SummaryOutput, error) {
	return h.usecase.ResetToday(ctx)
}

func (h CLIHandler) Dashboard(ctx context.Context) pomodorodto.DashboardOutput {
	return h.usecase.Dashboard(ctx)
}

func (h CLIHandler) OnSummary(fn func(pomodorodto.SummaryOutput)) func() {
	return h.usecase.OnSummary(fn)
}

func (h CLIHandler) WaitCommits(ctx context.Context) error {
	return h.usecase.WaitCommits(ctx)
}

func (h CLIHandler) Dispose() {
	h.usecase.Dispose()
}
