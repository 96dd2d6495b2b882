package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	pomodoroinadapter "studyo/internal/modules/pomodoro/adapter/in"
	pomodorooutadapter "studyo/internal/modules/pomodoro/adapter/out"
	pomodorodto "studyo/internal/modules/pomodoro/dto"
	pomodoroservice "studyo/internal/modules/pomodoro/service"
	pomodorousecase "studyo/internal/modules/pomodoro/usecase"
	subjectinadapter "studyo/internal/modules/subject/adapter/in"
	subjectoutadapter "studyo/internal/modules/subject/adapter/out"
	subjectservice "studyo/internal/modules/subject/service"
	subjectusecase "studyo/internal/modules/subject/usecase"
	"studyo/internal/platform/api"
	"studyo/internal/platform/clock"
	"studyo/internal/platform/config"
	"studyo/internal/platform/id"
	"studyo/internal/platform/kvstore"
	uiapp "studyo/internal/ui/app"
)

type App struct {
	PomodoroCLI pomodoroinadapter.CLIHandler
	SubjectCLI  subjectinadapter.CLIHandler

	Config    config.Config
	Logger    *slog.Logger
	Scheduler *clock.SystemScheduler
	Guard     *pomodorooutadapter.SignalGuard
	Resume    *pomodorooutadapter.ResumeWatcher

	store *kvstore.Store
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := kvstore.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	client := api.NewClient(cfg.APIBaseURL, nil, api.StaticToken(cfg.Token, cfg.TokenScheme), logger)
	if !client.Authenticated() {
		logger.Warn("no API token configured; finished sessions cannot be saved")
	}

	subjectUC := subjectusecase.NewInteractor(subjectservice.NewSubjectService(subjectoutadapter.NewAPISubjectGateway(client)))

	sched := clock.NewSystemScheduler()
	guard := pomodorooutadapter.NewSignalGuard(logger, nil, pomodorooutadapter.DefaultConfirmWindow, nil)
	local := pomodorooutadapter.NewKVStore(store)
	gateway := pomodorooutadapter.NewAPISessionGateway(client)

	committer := pomodoroservice.NewCommitter(gateway, id.UUID{}, logger, cfg.CommitTimeout.Duration)
	summary := pomodoroservice.NewSummaryService(gateway, local, sched, loc, logger)
	engine := pomodoroservice.NewEngine(ctx, sched, pomodoroservice.NewSettingsService(local, logger), committer, guard, logger, pomodoroservice.EngineConfig{
		TickInterval:  cfg.TickInterval.Duration,
		AutoStartNext: cfg.AutoStartNext,
	})
	pomodoroUC := pomodorousecase.NewInteractor(engine, committer, summary, subjectUC, logger)

	return &App{
		PomodoroCLI: pomodoroinadapter.NewCLIHandler(pomodoroUC),
		SubjectCLI:  subjectinadapter.NewCLIHandler(subjectUC),
		Config:      cfg,
		Logger:      logger,
		Scheduler:   sched,
		Guard:       guard,
		Resume:      pomodorooutadapter.NewResumeWatcher(sched.NotifyResume, logger),
		store:       store,
	}, nil
}

// Close stops the timer, gives in-flight commits up to the commit timeout to
// land and closes local storage.
func (a *App) Close() error {
	a.PomodoroCLI.Dispose()
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.CommitTimeout.Duration)
	defer cancel()
	if err := a.PomodoroCLI.WaitCommits(ctx); err != nil {
		a.Logger.Warn("pending session commits abandoned", slog.String("error", err.Error()))
	}
	return a.store.Close()
}

func RunTUI(ctx context.Context, app *App) error {
	loc, err := app.Config.Location()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshots, unsubscribe := app.PomodoroCLI.Subscribe(16)
	defer unsubscribe()
	summaries := make(chan pomodorodto.SummaryOutput, 4)
	unhook := app.PomodoroCLI.OnSummary(func(s pomodorodto.SummaryOutput) {
		select {
		case summaries <- s:
		default:
		}
	})
	defer unhook()

	model := uiapp.NewModel(app.PomodoroCLI, app.Guard, uiapp.Streams{
		Snapshots: snapshots,
		Summaries: summaries,
		Resume:    app.Scheduler.NotifyResume,
		Location:  loc,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
	)
	// Send blocks until the program reads it, and RequestQuit may be called
	// from inside Update.
	app.Guard.SetWarn(func(msg string) {
		go program.Send(uiapp.NoticeMsg{Text: msg})
	})
	defer app.Guard.SetWarn(nil)

	app.Guard.Listen(ctx, program.Quit)
	go app.Resume.Run(ctx)

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// plainTimer is the slice of the pomodoro usecase the plain runner drives.
type plainTimer interface {
	Start(ctx context.Context) pomodorodto.SnapshotOutput
	Pause(ctx context.Context) pomodorodto.SnapshotOutput
	Subscribe(buffer int) (<-chan pomodorodto.SnapshotOutput, func())
}

// RunPlain drives the timer without a terminal UI: it starts the current
// stage, starts every following stage as soon as the previous one ends and
// writes one line per stage change or elapsed minute until ctx is done or a
// guarded quit is confirmed.
func RunPlain(ctx context.Context, app *App, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.Guard.SetWarn(func(msg string) { _, _ = fmt.Fprintln(w, msg) })
	defer app.Guard.SetWarn(nil)
	app.Guard.Listen(ctx, cancel)
	go app.Resume.Run(ctx)

	return runPlain(ctx, app.PomodoroCLI, w)
}

func runPlain(ctx context.Context, timer plainTimer, w io.Writer) error {
	snapshots, unsubscribe := timer.Subscribe(16)
	defer unsubscribe()

	snap := timer.Start(ctx)
	printSnapshot(w, snap)
	lastStage, lastMinute := snap.Stage, snap.RemainingSeconds/60

	for {
		select {
		case <-ctx.Done():
			timer.Pause(context.Background())
			return nil
		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			minute := snap.RemainingSeconds / 60
			if snap.Stage == lastStage && minute == lastMinute {
				continue
			}
			printSnapshot(w, snap)
			if snap.Stage != lastStage && !snap.Running {
				// Nobody is at the keyboard to press start.
				snap = timer.Start(ctx)
				minute = snap.RemainingSeconds / 60
			}
			lastStage, lastMinute = snap.Stage, minute
		}
	}
}

func printSnapshot(w io.Writer, snap pomodorodto.SnapshotOutput) {
	state := "paused"
	if snap.Running {
		state = "running"
	}
	_, _ = fmt.Fprintf(w, "%s  %-11s %s  %s  cycles=%d\n",
		time.Now().Format(time.TimeOnly), snap.StageLabel, snap.Clock, state, snap.CompletedCycles)
}
