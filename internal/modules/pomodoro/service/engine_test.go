package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyo/internal/modules/pomodoro/domain"
	"studyo/internal/modules/pomodoro/service"
	"studyo/internal/platform/clock/clocktest"
	apperrors "studyo/internal/platform/errors"
	"studyo/internal/platform/logging"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeCommitter struct {
	mu       sync.Mutex
	sessions []domain.StudySession
}

func (f *fakeCommitter) Dispatch(session domain.StudySession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, session)
}

func (f *fakeCommitter) all() []domain.StudySession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.StudySession(nil), f.sessions...)
}

type fakeGuard struct {
	installs  int
	removes   int
	installed bool
}

func (g *fakeGuard) Install() {
	g.installs++
	g.installed = true
}

func (g *fakeGuard) Remove() {
	g.removes++
	g.installed = false
}

type memorySettings struct {
	mu    sync.Mutex
	saved *domain.Settings
	saves int
	fail  bool
}

func (m *memorySettings) LoadSettings(context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return domain.Settings{}, apperrors.ErrNotFound
	}
	return *m.saved, nil
}

func (m *memorySettings) SaveSettings(_ context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.fail {
		return errors.New("disk full")
	}
	m.saved = &s
	return nil
}

type harness struct {
	sched     *clocktest.FakeScheduler
	committer *fakeCommitter
	guard     *fakeGuard
	store     *memorySettings
	engine    *service.Engine
}

func newHarness(t *testing.T, cfg service.EngineConfig) *harness {
	t.Helper()
	h := &harness{
		sched:     clocktest.New(t0),
		committer: &fakeCommitter{},
		guard:     &fakeGuard{},
		store:     &memorySettings{},
	}
	settings := service.NewSettingsService(h.store, logging.Discard())
	h.engine = service.NewEngine(context.Background(), h.sched, settings, h.committer, h.guard, logging.Discard(), cfg)
	t.Cleanup(h.engine.Dispose)
	return h
}

func TestInitialStateUsesStoredSettings(t *testing.T) {
	sched := clocktest.New(t0)
	store := &memorySettings{saved: &domain.Settings{WorkMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 0, CyclesBeforeLongBreak: 2}}
	engine := service.NewEngine(context.Background(), sched, service.NewSettingsService(store, logging.Discard()), nil, nil, logging.Discard(), service.EngineConfig{})
	defer engine.Dispose()

	snap := engine.Snapshot()
	assert.Equal(t, domain.StageWork, snap.Stage)
	assert.Equal(t, 3000, snap.RemainingSeconds)
	assert.False(t, snap.Running)
	assert.Equal(t, 1, engine.Settings().LongBreakMinutes)
}

func TestStageEntryRefillsFullDuration(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})

	assert.Equal(t, 1500, h.engine.Snapshot().RemainingSeconds)
	snap := h.engine.Skip()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.Equal(t, 300, snap.RemainingSeconds)
	snap = h.engine.Skip()
	assert.Equal(t, domain.StageWork, snap.Stage)
	assert.Equal(t, 1500, snap.RemainingSeconds)

	long := domain.StageLongBreak
	snap = h.engine.Reset(&long)
	assert.Equal(t, 900, snap.RemainingSeconds)
}

func TestRemainingTracksWallClockWhenTicksAreLate(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()

	// Ten minutes pass with no tick delivered, then one overdue tick fires.
	h.sched.Jump(600 * time.Second)
	h.sched.Advance(0)
	assert.Equal(t, 900, h.engine.Snapshot().RemainingSeconds)
	assert.Equal(t, 1, h.sched.Fired())
}

func TestResumeResyncsImmediately(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()

	h.sched.Jump(200*time.Second + 700*time.Millisecond)
	h.sched.Resume()
	assert.Equal(t, 1300, h.engine.Snapshot().RemainingSeconds)
	assert.Equal(t, 0, h.sched.Fired())
}

func TestResumePastDeadlineCompletesStage(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()

	h.sched.Jump(30 * time.Minute)
	h.sched.Resume()

	snap := h.engine.Snapshot()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.False(t, snap.Running)
	sessions := h.committer.all()
	require.Len(t, sessions, 1)
	assert.Equal(t, 30, sessions[0].DurationMinutes)
	assert.Equal(t, domain.CommitCompleted, sessions[0].Reason)
}

func TestFullWorkIntervalCommitsAndAdvances(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Advance(25 * time.Minute)

	snap := h.engine.Snapshot()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.Equal(t, 300, snap.RemainingSeconds)
	assert.Equal(t, 1, snap.CompletedCycles)
	assert.False(t, snap.Running)
	assert.True(t, snap.SessionStart.IsZero())
	assert.False(t, h.guard.installed)
	assert.Equal(t, 1, snap.Completions)
	assert.Equal(t, domain.StageWork, snap.LastCompleted)

	sessions := h.committer.all()
	require.Len(t, sessions, 1)
	assert.Equal(t, 25, sessions[0].DurationMinutes)
	assert.Equal(t, t0, sessions[0].StartTime)
	assert.Equal(t, t0.Add(25*time.Minute), sessions[0].EndTime)
}

func TestLongBreakAfterConfiguredCycles(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	for i := 0; i < 3; i++ {
		h.engine.Skip()
		h.engine.Skip()
	}
	require.Equal(t, 3, h.engine.Snapshot().CompletedCycles)
	require.Empty(t, h.committer.all())

	h.engine.Start()
	h.sched.Advance(25 * time.Minute)
	snap := h.engine.Snapshot()
	assert.Equal(t, 4, snap.CompletedCycles)
	assert.Equal(t, domain.StageLongBreak, snap.Stage)
	assert.Equal(t, 900, snap.RemainingSeconds)

	h.engine.Skip()
	h.engine.Start()
	h.sched.Advance(25 * time.Minute)
	snap = h.engine.Snapshot()
	assert.Equal(t, 5, snap.CompletedCycles)
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.Len(t, h.committer.all(), 2)
}

func TestSkipShortlyAfterStartCommitsOneMinute(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Advance(10 * time.Second)

	snap := h.engine.Skip()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.Equal(t, 1, snap.CompletedCycles)
	assert.False(t, snap.Running)

	sessions := h.committer.all()
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].DurationMinutes)
	assert.Equal(t, domain.CommitSkipped, sessions[0].Reason)
}

func TestSkipBreakDoesNotCommitOrCount(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Skip()
	h.engine.Start()
	h.sched.Advance(time.Minute)
	snap := h.engine.Skip()

	assert.Equal(t, domain.StageWork, snap.Stage)
	assert.Equal(t, 1, snap.CompletedCycles)
	assert.Equal(t, 0, snap.Completions)
	assert.Empty(t, h.committer.all())
}

func TestPauseAndResumePreserveRemaining(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Advance(100 * time.Second)

	snap := h.engine.Pause()
	assert.False(t, snap.Running)
	assert.Equal(t, 1400, snap.RemainingSeconds)
	assert.Equal(t, 0, h.sched.Pending())

	h.sched.Advance(time.Hour)
	assert.Equal(t, 1400, h.engine.Snapshot().RemainingSeconds)

	h.engine.Start()
	h.sched.Advance(10 * time.Second)
	snap = h.engine.Snapshot()
	assert.Equal(t, 1390, snap.RemainingSeconds)
	assert.Equal(t, t0, snap.SessionStart)
}

func TestPauseResyncsBeforeFreezing(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Jump(42 * time.Second)

	assert.Equal(t, 1458, h.engine.Pause().RemainingSeconds)
}

func TestToggleAlternates(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	assert.True(t, h.engine.Toggle().Running)
	assert.False(t, h.engine.Toggle().Running)
}

func TestToggleAfterMissedDeadlineDoesNotStartBreak(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Jump(25*time.Minute + 3*time.Second)

	snap := h.engine.Toggle()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.False(t, snap.Running)
	assert.Equal(t, 300, snap.RemainingSeconds)
	assert.Len(t, h.committer.all(), 1)

	assert.True(t, h.engine.Toggle().Running)
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Advance(5 * time.Second)
	h.engine.Start()

	assert.Equal(t, 1, h.sched.Pending())
	assert.Equal(t, 1, h.guard.installs)
	assert.Equal(t, t0, h.engine.Snapshot().SessionStart)
}

func TestGuardHeldExactlyWhileRunning(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	for i := 0; i < 50; i++ {
		h.engine.Start()
		require.True(t, h.guard.installed)
		require.True(t, h.engine.GuardInstalled())
		h.engine.Pause()
		require.False(t, h.guard.installed)
	}
	assert.Equal(t, 50, h.guard.installs)
	assert.Equal(t, 50, h.guard.removes)

	h.engine.Start()
	h.engine.Skip()
	assert.False(t, h.guard.installed)

	h.engine.Start()
	h.engine.Reset(nil)
	assert.False(t, h.guard.installed)

	h.engine.Start()
	h.sched.Advance(25 * time.Minute)
	assert.False(t, h.guard.installed)

	h.engine.Start()
	h.engine.Dispose()
	assert.False(t, h.guard.installed)
	assert.Equal(t, h.guard.installs, h.guard.removes)
}

func TestStaleTicksAfterStopAreIgnored(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.engine.Pause()
	h.engine.Start()
	h.engine.Pause()

	h.sched.Advance(10 * time.Second)
	assert.Equal(t, 0, h.sched.Fired())
	assert.Equal(t, 1500, h.engine.Snapshot().RemainingSeconds)
}

func TestCompletionHappensOnce(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Advance(25 * time.Minute)
	h.sched.Resume()
	h.sched.Advance(10 * time.Minute)

	snap := h.engine.Snapshot()
	assert.Equal(t, 1, snap.CompletedCycles)
	assert.Equal(t, 300, snap.RemainingSeconds)
	assert.Len(t, h.committer.all(), 1)
}

func TestAutoStartNextRunsFollowingStage(t *testing.T) {
	h := newHarness(t, service.EngineConfig{AutoStartNext: true})
	h.engine.Start()
	h.sched.Advance(25 * time.Minute)

	snap := h.engine.Snapshot()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.True(t, snap.Running)
	assert.True(t, h.guard.installed)

	h.sched.Advance(5 * time.Minute)
	snap = h.engine.Snapshot()
	assert.Equal(t, domain.StageWork, snap.Stage)
	assert.True(t, snap.Running)
	assert.Equal(t, t0.Add(30*time.Minute), snap.SessionStart)
	assert.Len(t, h.committer.all(), 1)
}

func TestResetKeepsCyclesAndResetCyclesClears(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Skip()
	h.engine.Start()
	h.sched.Advance(time.Minute)

	snap := h.engine.Reset(nil)
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.Equal(t, 300, snap.RemainingSeconds)
	assert.Equal(t, 1, snap.CompletedCycles)
	assert.False(t, snap.Running)

	assert.Equal(t, 0, h.engine.ResetCycles().CompletedCycles)
}

func TestResetDiscardsUncommittedWork(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Advance(3 * time.Minute)
	snap := h.engine.Reset(nil)

	assert.True(t, snap.SessionStart.IsZero())
	assert.Equal(t, 0, snap.CompletedCycles)
	assert.Empty(t, h.committer.all())
}

func TestUpdateSettingsWhileIdleResetsToWork(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Skip()

	got := h.engine.UpdateSettings(context.Background(), domain.Settings{WorkMinutes: 40, ShortBreakMinutes: 0, LongBreakMinutes: 20, CyclesBeforeLongBreak: 3})
	assert.Equal(t, 1, got.ShortBreakMinutes)

	snap := h.engine.Snapshot()
	assert.Equal(t, domain.StageWork, snap.Stage)
	assert.Equal(t, 2400, snap.RemainingSeconds)
	require.NotNil(t, h.store.saved)
	assert.Equal(t, 40, h.store.saved.WorkMinutes)
}

func TestUpdateSettingsWhileRunningClampsRemaining(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Advance(5 * time.Minute)

	h.engine.UpdateSettings(context.Background(), domain.Settings{WorkMinutes: 10, ShortBreakMinutes: 5, LongBreakMinutes: 15, CyclesBeforeLongBreak: 4})
	snap := h.engine.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, 600, snap.RemainingSeconds)

	h.sched.Advance(10 * time.Minute)
	snap = h.engine.Snapshot()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	sessions := h.committer.all()
	require.Len(t, sessions, 1)
	assert.Equal(t, 15, sessions[0].DurationMinutes)
}

func TestUpdateSettingsAfterMissedDeadlineKeepsBreak(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.engine.Start()
	h.sched.Jump(26 * time.Minute)

	h.engine.UpdateSettings(context.Background(), domain.Settings{WorkMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 20, CyclesBeforeLongBreak: 4})
	snap := h.engine.Snapshot()
	assert.Equal(t, domain.StageShortBreak, snap.Stage)
	assert.Equal(t, 300, snap.RemainingSeconds)
	assert.Equal(t, 1, snap.CompletedCycles)
	assert.False(t, snap.Running)
	assert.False(t, h.guard.installed)
	assert.Len(t, h.committer.all(), 1)
}

func TestUpdateSettingsSaveFailureStillApplies(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	h.store.fail = true

	h.engine.UpdateSettings(context.Background(), domain.Settings{WorkMinutes: 30, ShortBreakMinutes: 5, LongBreakMinutes: 15, CyclesBeforeLongBreak: 4})
	assert.Equal(t, 1800, h.engine.Snapshot().RemainingSeconds)
	assert.Equal(t, 1, h.store.saves)
}

func TestObserversSeeEveryChange(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	var seen []domain.Snapshot
	remove := h.engine.Observe(func(s domain.Snapshot) { seen = append(seen, s) })

	h.engine.Start()
	h.sched.Advance(3 * time.Second)
	h.engine.Pause()
	require.Len(t, seen, 5)
	assert.Equal(t, 1497, seen[3].RemainingSeconds)
	assert.False(t, seen[4].Running)

	remove()
	h.engine.Start()
	assert.Len(t, seen, 5)
}

func TestDisposeReleasesEverything(t *testing.T) {
	h := newHarness(t, service.EngineConfig{})
	require.Equal(t, 1, h.sched.Listeners())
	h.engine.Start()

	h.engine.Dispose()
	assert.Equal(t, 0, h.sched.Listeners())
	assert.Equal(t, 0, h.sched.Pending())
	assert.False(t, h.guard.installed)

	snap := h.engine.Start()
	assert.False(t, snap.Running)
	h.sched.Advance(30 * time.Minute)
	assert.Empty(t, h.committer.all())
	h.engine.Dispose()
}
