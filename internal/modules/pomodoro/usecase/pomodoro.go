package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"studyo/internal/modules/pomodoro/domain"
	pomodorodto "studyo/internal/modules/pomodoro/dto"
	pomodoroin "studyo/internal/modules/pomodoro/port/in"
	"studyo/internal/modules/pomodoro/service"
	subjectin "studyo/internal/modules/subject/port/in"
	apperrors "studyo/internal/platform/errors"
)

const refreshTimeout = 10 * time.Second

type Interactor struct {
	engine    *service.Engine
	committer *service.Committer
	summary   *service.SummaryService
	subjects  subjectin.Usecase
	logger    *slog.Logger

	unhook func()
}

// NewInteractor wires a summary refresh behind every successful commit.
func NewInteractor(engine *service.Engine, committer *service.Committer, summary *service.SummaryService, subjects subjectin.Usecase, logger *slog.Logger) pomodoroin.Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Interactor{engine: engine, committer: committer, summary: summary, subjects: subjects, logger: logger}
	if committer != nil && summary != nil {
		i.unhook = committer.OnCommitted(func(domain.StudySession, domain.SessionRecord) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if _, err := summary.Refresh(ctx); err != nil {
				logger.Warn("summary refresh after commit", slog.String("error", err.Error()))
			}
		})
	}
	return i
}

func (i *Interactor) Start(context.Context) pomodorodto.SnapshotOutput {
	return toSnapshotOutput(i.engine.Start())
}

func (i *Interactor) Pause(context.Context) pomodorodto.SnapshotOutput {
	return toSnapshotOutput(i.engine.Pause())
}

func (i *Interactor) Toggle(context.Context) pomodorodto.SnapshotOutput {
	return toSnapshotOutput(i.engine.Toggle())
}

func (i *Interactor) Skip(context.Context) pomodorodto.SnapshotOutput {
	return toSnapshotOutput(i.engine.Skip())
}

func (i *Interactor) Reset(_ context.Context, input pomodorodto.ResetInput) (pomodorodto.SnapshotOutput, error) {
	if input.Stage == "" {
		return toSnapshotOutput(i.engine.Reset(nil)), nil
	}
	stage, err := domain.ParseStage(input.Stage)
	if err != nil {
		return pomodorodto.SnapshotOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return toSnapshotOutput(i.engine.Reset(&stage)), nil
}

// ResetCycles zeroes the cycle counter and, when the backend is reachable,
// hides today's sessions from the daily count as well.
func (i *Interactor) ResetCycles(ctx context.Context) pomodorodto.SnapshotOutput {
	snap := i.engine.ResetCycles()
	if i.summary != nil {
		if _, err := i.summary.ResetToday(ctx); err != nil {
			i.logger.Warn("record daily reset", slog.String("error", err.Error()))
		}
	}
	return toSnapshotOutput(snap)
}

func (i *Interactor) Snapshot(context.Context) pomodorodto.SnapshotOutput {
	return toSnapshotOutput(i.engine.Snapshot())
}

// Subscribe delivers snapshots without ever blocking the engine: a full
// buffer drops the update and the next one carries the current state anyway.
func (i *Interactor) Subscribe(buffer int) (<-chan pomodorodto.SnapshotOutput, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan pomodorodto.SnapshotOutput, buffer)
	remove := i.engine.Observe(func(snap domain.Snapshot) {
		select {
		case ch <- toSnapshotOutput(snap):
		default:
		}
	})
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			remove()
			close(ch)
		})
	}
}

func (i *Interactor) Settings(context.Context) pomodorodto.SettingsOutput {
	return toSettingsOutput(i.engine.Settings())
}

func (i *Interactor) UpdateSettings(ctx context.Context, input pomodorodto.SettingsInput) (pomodorodto.SettingsOutput, error) {
	next := i.engine.Settings()
	if input.WorkMinutes != nil {
		next.WorkMinutes = *input.WorkMinutes
	}
	if input.ShortBreakMinutes != nil {
		next.ShortBreakMinutes = *input.ShortBreakMinutes
	}
	if input.LongBreakMinutes != nil {
		next.LongBreakMinutes = *input.LongBreakMinutes
	}
	if input.CyclesBeforeLongBreak != nil {
		next.CyclesBeforeLongBreak = *input.CyclesBeforeLongBreak
	}
	if input.DefaultSubjectID != nil {
		if err := i.checkSubject(ctx, *input.DefaultSubjectID); err != nil {
			return pomodorodto.SettingsOutput{}, err
		}
		next.DefaultSubjectID = *input.DefaultSubjectID
	}
	return toSettingsOutput(i.engine.UpdateSettings(ctx, next)), nil
}

func (i *Interactor) ResetSettings(ctx context.Context) pomodorodto.SettingsOutput {
	return toSettingsOutput(i.engine.UpdateSettings(ctx, domain.DefaultSettings()))
}

func (i *Interactor) Summary(ctx context.Context) (pomodorodto.SummaryOutput, error) {
	if i.summary == nil {
		return pomodorodto.SummaryOutput{}, apperrors.ErrNotConfigured
	}
	summary, err := i.summary.Refresh(ctx)
	if err != nil {
		return pomodorodto.SummaryOutput{}, err
	}
	return toSummaryOutput(summary), nil
}

func (i *Interactor) ResetToday(ctx context.Context) (pomodorodto.SummaryOutput, error) {
	if i.summary == nil {
		return pomodorodto.SummaryOutput{}, apperrors.ErrNotConfigured
	}
	summary, err := i.summary.ResetToday(ctx)
	if err != nil {
		return pomodorodto.SummaryOutput{}, err
	}
	return toSummaryOutput(summary), nil
}

// Dashboard fetches the summary and the subject list concurrently. A failure
// on one side leaves the other intact.
func (i *Interactor) Dashboard(ctx context.Context) pomodorodto.DashboardOutput {
	out := pomodorodto.DashboardOutput{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Summary, out.SummaryErr = i.Summary(gctx)
		return nil
	})
	g.Go(func() error {
		if i.subjects == nil {
			out.SubjectsErr = apperrors.ErrNotConfigured
			return nil
		}
		subjects, err := i.subjects.ListSubjects(gctx)
		if err != nil {
			out.SubjectsErr = err
			return nil
		}
		for _, s := range subjects {
			out.Subjects = append(out.Subjects, pomodorodto.SubjectOption{ID: s.ID, Name: s.Name, Color: s.Color})
		}
		return nil
	})
	_ = g.Wait()
	return out
}

func (i *Interactor) OnSummary(fn func(pomodorodto.SummaryOutput)) func() {
	if i.summary == nil {
		return func() {}
	}
	return i.summary.OnRefresh(func(summary domain.Summary) {
		fn(toSummaryOutput(summary))
	})
}

func (i *Interactor) WaitCommits(ctx context.Context) error {
	if i.committer == nil {
		return nil
	}
	return i.committer.Wait(ctx)
}

func (i *Interactor) Dispose() {
	i.engine.Dispose()
	if i.unhook != nil {
		i.unhook()
		i.unhook = nil
	}
}

// checkSubject rejects ids the backend does not know. When the backend is
// unreachable the id is accepted as given.
func (i *Interactor) checkSubject(ctx context.Context, id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: subject id must not be negative", apperrors.ErrInvalidInput)
	}
	if id == 0 || i.subjects == nil {
		return nil
	}
	if _, err := i.subjects.GetSubject(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: unknown subject %d", apperrors.ErrInvalidInput, id)
		}
		i.logger.Warn("could not verify subject", slog.Int64("subject_id", id), slog.String("error", err.Error()))
	}
	return nil
}

func toSnapshotOutput(s domain.Snapshot) pomodorodto.SnapshotOutput {
	return pomodorodto.SnapshotOutput{
		Stage:                 string(s.Stage),
		StageLabel:            s.StageLabel,
		RemainingSeconds:      s.RemainingSeconds,
		TotalSeconds:          s.TotalSeconds,
		Clock:                 s.Clock,
		Progress:              s.Progress,
		CompletedCycles:       s.CompletedCycles,
		CycleInSet:            s.CycleInSet,
		CyclesBeforeLongBreak: s.CyclesBeforeLongBreak,
		Running:               s.Running,
		SessionStart:          s.SessionStart,
		Completions:           s.Completions,
		LastCompleted:         string(s.LastCompleted),
		At:                    s.At,
	}
}

func toSettingsOutput(s domain.Settings) pomodorodto.SettingsOutput {
	return pomodorodto.SettingsOutput{
		WorkMinutes:           s.WorkMinutes,
		ShortBreakMinutes:     s.ShortBreakMinutes,
		LongBreakMinutes:      s.LongBreakMinutes,
		CyclesBeforeLongBreak: s.CyclesBeforeLongBreak,
		DefaultSubjectID:      s.DefaultSubjectID,
	}
}

func toSummaryOutput(s domain.Summary) pomodorodto.SummaryOutput {
	out := pomodorodto.SummaryOutput{
		Day:              s.Day,
		SessionsToday:    s.SessionsToday,
		MinutesToday:     s.MinutesToday,
		SessionsThisWeek: s.SessionsThisWeek,
	}
	for _, r := range s.Recent {
		out.Recent = append(out.Recent, pomodorodto.SessionOutput{
			ID:              r.ID,
			SubjectID:       r.SubjectID,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			DurationMinutes: r.DurationMinutes,
			Notes:           r.Notes,
		})
	}
	return out
}
