package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
	"studyo/internal/ui/components"
)

type fakePomodoro struct {
	mu       sync.Mutex
	calls    []string
	settings pomodorodto.SettingsOutput
	lastIn   pomodorodto.SettingsInput
	loads    int
}

func (f *fakePomodoro) record(name string) pomodorodto.SnapshotOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return pomodorodto.SnapshotOutput{Stage: "work", StageLabel: "Focus", Clock: "25:00", Running: name == "toggle" || name == "start"}
}

func (f *fakePomodoro) Start(context.Context) pomodorodto.SnapshotOutput  { return f.record("start") }
func (f *fakePomodoro) Pause(context.Context) pomodorodto.SnapshotOutput  { return f.record("pause") }
func (f *fakePomodoro) Toggle(context.Context) pomodorodto.SnapshotOutput { return f.record("toggle") }
func (f *fakePomodoro) Skip(context.Context) pomodorodto.SnapshotOutput   { return f.record("skip") }
func (f *fakePomodoro) ResetCycles(context.Context) pomodorodto.SnapshotOutput {
	return f.record("cycles")
}
func (f *fakePomodoro) Snapshot(context.Context) pomodorodto.SnapshotOutput {
	return pomodorodto.SnapshotOutput{Stage: "work", Clock: "25:00"}
}
func (f *fakePomodoro) Reset(_ context.Context, in pomodorodto.ResetInput) (pomodorodto.SnapshotOutput, error) {
	return f.record("reset:" + in.Stage), nil
}
func (f *fakePomodoro) Settings(context.Context) pomodorodto.SettingsOutput { return f.settings }
func (f *fakePomodoro) UpdateSettings(_ context.Context, in pomodorodto.SettingsInput) (pomodorodto.SettingsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastIn = in
	if in.WorkMinutes != nil {
		f.settings.WorkMinutes = *in.WorkMinutes
	}
	return f.settings, nil
}
func (f *fakePomodoro) ResetSettings(context.Context) pomodorodto.SettingsOutput { return f.settings }
func (f *fakePomodoro) Summary(context.Context) (pomodorodto.SummaryOutput, error) {
	return pomodorodto.SummaryOutput{}, nil
}
func (f *fakePomodoro) Dashboard(context.Context) pomodorodto.DashboardOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return pomodorodto.DashboardOutput{}
}

type fakeGuard struct{ answers []bool }

func (g *fakeGuard) RequestQuit() bool {
	answer := g.answers[0]
	g.answers = g.answers[1:]
	return answer
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestSpaceTogglesTimer(t *testing.T) {
	p := &fakePomodoro{}
	m := NewModel(p, nil, Streams{})

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil {
		t.Fatalf("expected toggle command")
	}
	m, _ = step(t, m, cmd())
	if len(p.calls) != 1 || p.calls[0] != "toggle" {
		t.Fatalf("unexpected calls: %v", p.calls)
	}
	if !m.timerView.Snapshot().Running {
		t.Fatalf("timer view should show the returned snapshot")
	}
}

func TestQuitIsGuardedWhileRunning(t *testing.T) {
	m := NewModel(&fakePomodoro{}, &fakeGuard{answers: []bool{false, true}}, Streams{})

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd != nil {
		t.Fatalf("first quit must be held back")
	}
	if !strings.Contains(m.status, "quit again") {
		t.Fatalf("expected warning in status, got %q", m.status)
	}

	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("second quit should leave")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestPaletteUpdatesSettings(t *testing.T) {
	p := &fakePomodoro{settings: pomodorodto.SettingsOutput{WorkMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15, CyclesBeforeLongBreak: 4}}
	m := NewModel(p, nil, Streams{})

	m, cmd := step(t, m, components.PaletteSubmitMsg{Input: "settings:work 50"})
	if cmd == nil {
		t.Fatalf("expected settings command")
	}
	m, _ = step(t, m, cmd())
	if p.lastIn.WorkMinutes == nil || *p.lastIn.WorkMinutes != 50 {
		t.Fatalf("unexpected input: %+v", p.lastIn)
	}
	if m.settings.WorkMinutes != 50 || m.status != "settings saved" {
		t.Fatalf("unexpected state: %+v %q", m.settings, m.status)
	}

	m, cmd = step(t, m, components.PaletteSubmitMsg{Input: "settings:work lots"})
	if cmd != nil || !strings.HasPrefix(m.status, "usage:") {
		t.Fatalf("expected usage message, got %q", m.status)
	}

	m, _ = step(t, m, components.PaletteSubmitMsg{Input: "dance"})
	if !strings.Contains(m.status, "unknown command") {
		t.Fatalf("expected unknown command, got %q", m.status)
	}
}

func TestPaletteResetPassesStage(t *testing.T) {
	p := &fakePomodoro{}
	m := NewModel(p, nil, Streams{})
	_, cmd := step(t, m, components.PaletteSubmitMsg{Input: "reset long"})
	cmd()
	if len(p.calls) != 1 || p.calls[0] != "reset:long" {
		t.Fatalf("unexpected calls: %v", p.calls)
	}
}

func TestFocusTriggersResume(t *testing.T) {
	resumed := 0
	m := NewModel(&fakePomodoro{}, nil, Streams{Resume: func() { resumed++ }})
	step(t, m, tea.FocusMsg{})
	if resumed != 1 {
		t.Fatalf("expected one resume, got %d", resumed)
	}
}

func TestSnapshotStreamIsDrained(t *testing.T) {
	ch := make(chan pomodorodto.SnapshotOutput, 1)
	m := NewModel(&fakePomodoro{}, nil, Streams{Snapshots: ch})
	ch <- pomodorodto.SnapshotOutput{Stage: "short_break", Clock: "04:59", Running: true}

	msg := waitSnapshot(ch)()
	m, cmd := step(t, m, msg)
	if m.timerView.Snapshot().Clock != "04:59" {
		t.Fatalf("stream snapshot not applied")
	}
	if cmd == nil {
		t.Fatalf("expected the next wait to be scheduled")
	}

	close(ch)
	if _, ok := waitSnapshot(ch)().(streamClosedMsg); !ok {
		t.Fatalf("closed stream should end the loop")
	}
}

func TestNoticeShowsInStatus(t *testing.T) {
	m := NewModel(&fakePomodoro{}, nil, Streams{})
	m, _ = step(t, m, NoticeMsg{Text: "Timer is running."})
	if !strings.Contains(m.View(), "Timer is running.") {
		t.Fatalf("notice missing from view")
	}
}

func TestDayRolloverRefreshesDashboard(t *testing.T) {
	p := &fakePomodoro{}
	m := NewModel(p, nil, Streams{Location: time.UTC})
	m.day = "2026-03-02"

	m, cmd := step(t, m, dayTickMsg{at: time.Date(2026, 3, 2, 23, 59, 30, 0, time.UTC)})
	if cmd == nil {
		t.Fatalf("expected the next day check to be scheduled")
	}
	if m.day != "2026-03-02" || p.loads != 0 {
		t.Fatalf("same day should not refresh, day=%s refreshes=%d", m.day, p.loads)
	}

	m, cmd = step(t, m, dayTickMsg{at: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)})
	if m.day != "2026-03-03" {
		t.Fatalf("day not advanced: %s", m.day)
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("expected refresh and next check, got %#v", cmd())
	}
	if _, ok := batch[0]().(dashboardMsg); !ok {
		t.Fatalf("first command should load the dashboard")
	}
	if p.loads != 1 {
		t.Fatalf("expected one dashboard load, got %d", p.loads)
	}
}
