package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studyo/internal/modules/pomodoro/domain"
	pomodoroout "studyo/internal/modules/pomodoro/port/out"
	"studyo/internal/platform/clock"
)

const defaultTickInterval = time.Second

// SessionCommitter receives finished Work intervals. Dispatch must not block.
type SessionCommitter interface {
	Dispatch(session domain.StudySession)
}

type EngineConfig struct {
	TickInterval time.Duration
	// AutoStartNext starts the following stage as soon as one completes.
	AutoStartNext bool
}

type observer struct {
	id int
	fn func(domain.Snapshot)
}

// Engine is the focus timer state machine. Every handler, including timer
// and resume callbacks, runs under one mutex, so a tick can never interleave
// with a user command.
type Engine struct {
	mu sync.Mutex

	sched     clock.Scheduler
	settings  *SettingsService
	committer SessionCommitter
	guard     pomodoroout.NavigationGuard
	logger    *slog.Logger
	cfg       EngineConfig

	current domain.Settings
	state   domain.TimerState
	anchor  driftAnchor

	stopTick     func()
	tickGen      uint64
	guardOn      bool
	disposed     bool
	removeResume func()

	observers  []observer
	observerID int
}

func NewEngine(ctx context.Context, sched clock.Scheduler, settings *SettingsService, committer SessionCommitter, guard pomodoroout.NavigationGuard, logger *slog.Logger, cfg EngineConfig) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if settings == nil {
		settings = NewSettingsService(nil, logger)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	current := settings.Load(ctx)
	e := &Engine{
		sched:     sched,
		settings:  settings,
		committer: committer,
		guard:     guard,
		logger:    logger,
		cfg:       cfg,
		current:   current,
		state:     domain.NewTimerState(current),
	}
	e.removeResume = sched.OnResume(e.handleResume)
	return e
}

func (e *Engine) Start() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.state.Running {
		return e.snapshotLocked()
	}
	e.startLocked()
	return e.emitLocked()
}

// Pause brings the countdown up to date before freezing it. A paused Work
// interval keeps its start time so the eventual commit spans all of it.
func (e *Engine) Pause() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || !e.state.Running {
		return e.snapshotLocked()
	}
	e.pauseLocked()
	return e.emitLocked()
}

// pauseLocked resyncs first; if that completes the stage there is nothing
// left to pause.
func (e *Engine) pauseLocked() {
	e.resyncLocked()
	if e.state.Running {
		e.stopLocked()
		e.logger.Debug("timer paused", slog.String("stage", string(e.state.Stage)), slog.Int("remaining", e.state.RemainingSeconds))
	}
}

// Toggle decides and acts under one lock hold, so a tick completing the
// stage cannot slip between the check and the action.
func (e *Engine) Toggle() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return e.snapshotLocked()
	}
	if !e.state.Running {
		e.startLocked()
		return e.emitLocked()
	}
	e.pauseLocked()
	return e.emitLocked()
}

// Skip ends the current stage now. Skipping Work counts as a cycle and
// commits the interval if one was in progress.
func (e *Engine) Skip() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return e.snapshotLocked()
	}
	e.finishStageLocked(domain.CommitSkipped)
	e.stopLocked()
	e.advanceLocked()
	return e.emitLocked()
}

// Reset stops the timer and refills the stage. A nil target keeps the
// current stage. Completed cycles are untouched.
func (e *Engine) Reset(target *domain.Stage) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return e.snapshotLocked()
	}
	e.stopLocked()
	if target != nil {
		e.state.Stage = *target
	}
	e.state.RemainingSeconds = e.current.StageSeconds(e.state.Stage)
	e.state.SessionStart = time.Time{}
	return e.emitLocked()
}

func (e *Engine) ResetCycles() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return e.snapshotLocked()
	}
	e.state.CompletedCycles = 0
	return e.emitLocked()
}

// UpdateSettings normalizes and persists next. An idle timer is reset to a
// fresh Work stage; a running one keeps going with its remaining time
// bounded by the new stage length. A stage that ran out before the update
// completes first and the timer stays on the following stage.
func (e *Engine) UpdateSettings(ctx context.Context, next domain.Settings) domain.Settings {
	next = next.Normalize()
	e.mu.Lock()
	if e.disposed {
		current := e.current
		e.mu.Unlock()
		return current
	}
	e.current = next
	wasRunning := e.state.Running
	if wasRunning {
		e.resyncLocked()
	}
	switch {
	case e.state.Running:
		total := next.StageSeconds(e.state.Stage)
		e.state.RemainingSeconds = domain.ClampRemaining(e.state.RemainingSeconds, total)
		e.anchor = anchorAt(e.sched.Now(), e.state.RemainingSeconds)
	case wasRunning:
		// The resync completed the stage; keep the stage it advanced to.
		e.state.RemainingSeconds = next.StageSeconds(e.state.Stage)
	default:
		e.state.Stage = domain.StageWork
		e.state.RemainingSeconds = next.StageSeconds(domain.StageWork)
		e.state.SessionStart = time.Time{}
	}
	e.emitLocked()
	e.mu.Unlock()

	_ = e.settings.Save(ctx, next)
	return next
}

func (e *Engine) Settings() domain.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Observe registers fn for every state change. Observers run with the engine
// lock held: they must not block or call back into the engine.
func (e *Engine) Observe(fn func(domain.Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := e.observerID
	e.observerID++
	e.observers = append(e.observers, observer{id: key, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, o := range e.observers {
			if o.id == key {
				e.observers = append(e.observers[:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// Dispose stops the timer and releases every registration. The engine is
// inert afterwards; commits already dispatched still finish.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.stopLocked()
	if e.removeResume != nil {
		e.removeResume()
		e.removeResume = nil
	}
	e.observers = nil
	e.disposed = true
}

// GuardInstalled reports whether the navigation guard is currently held.
func (e *Engine) GuardInstalled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guardOn
}

func (e *Engine) startLocked() {
	now := e.sched.Now()
	e.state.Running = true
	if e.state.Stage == domain.StageWork && !e.state.HasSession() {
		e.state.SessionStart = now
	}
	e.anchor = anchorAt(now, e.state.RemainingSeconds)
	e.installGuardLocked()
	e.armTickLocked()
	e.logger.Debug("timer started", slog.String("stage", string(e.state.Stage)), slog.Int("remaining", e.state.RemainingSeconds))
}

// stopLocked is shared by every path that leaves the running state.
func (e *Engine) stopLocked() {
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
	e.tickGen++
	e.state.Running = false
	e.anchor = driftAnchor{}
	e.removeGuardLocked()
}

func (e *Engine) armTickLocked() {
	e.tickGen++
	gen := e.tickGen
	e.stopTick = e.sched.After(e.cfg.TickInterval, func() { e.onTick(gen) })
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || !e.state.Running || gen != e.tickGen {
		return
	}
	e.stopTick = nil
	e.resyncLocked()
	if e.state.Running && gen == e.tickGen {
		e.armTickLocked()
	}
	e.emitLocked()
}

func (e *Engine) handleResume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || !e.state.Running {
		return
	}
	e.resyncLocked()
	e.emitLocked()
}

// resyncLocked derives remaining time from the anchor and completes the
// stage when it reaches zero.
func (e *Engine) resyncLocked() {
	if !e.state.Running || !e.anchor.set() {
		return
	}
	total := e.current.StageSeconds(e.state.Stage)
	e.state.RemainingSeconds = e.anchor.remaining(e.sched.Now(), total)
	if e.state.RemainingSeconds > 0 {
		return
	}
	e.completeLocked()
}

func (e *Engine) completeLocked() {
	finished := e.state.Stage
	e.state.Completions++
	e.state.LastCompleted = finished
	e.finishStageLocked(domain.CommitCompleted)
	e.stopLocked()
	e.advanceLocked()
	e.logger.Info("stage completed",
		slog.String("stage", string(finished)),
		slog.String("next", string(e.state.Stage)),
		slog.Int("completed_cycles", e.state.CompletedCycles),
	)
	if e.cfg.AutoStartNext {
		e.startLocked()
	}
}

// finishStageLocked counts a Work interval and hands it to the committer.
// Nothing is committed for a Work stage that never ran.
func (e *Engine) finishStageLocked(reason domain.CommitReason) {
	if e.state.Stage != domain.StageWork {
		return
	}
	if e.state.HasSession() && e.committer != nil {
		session := domain.NewStudySession(e.state.SessionStart, e.sched.Now(), e.current.DefaultSubjectID, reason)
		e.committer.Dispatch(session)
	}
	e.state.SessionStart = time.Time{}
	e.state.CompletedCycles++
}

func (e *Engine) advanceLocked() {
	next := domain.NextStage(e.state.Stage, e.state.CompletedCycles, e.current.CyclesBeforeLongBreak)
	e.state.Stage = next
	e.state.RemainingSeconds = e.current.StageSeconds(next)
	e.state.SessionStart = time.Time{}
}

func (e *Engine) installGuardLocked() {
	if e.guardOn || e.guard == nil {
		return
	}
	e.guard.Install()
	e.guardOn = true
}

func (e *Engine) removeGuardLocked() {
	if !e.guardOn {
		return
	}
	e.guard.Remove()
	e.guardOn = false
}

func (e *Engine) snapshotLocked() domain.Snapshot {
	return domain.BuildSnapshot(e.state, e.current, e.sched.Now())
}

func (e *Engine) emitLocked() domain.Snapshot {
	snap := e.snapshotLocked()
	for _, o := range e.observers {
		o.fn(snap)
	}
	return snap
}
