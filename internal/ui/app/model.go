package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
	apperrors "studyo/internal/platform/errors"
	"studyo/internal/ui/components"
	"studyo/internal/ui/theme"
	settingsview "studyo/internal/ui/views/settings"
	subjectsview "studyo/internal/ui/views/subjects"
	summaryview "studyo/internal/ui/views/summary"
	timerview "studyo/internal/ui/views/timer"
)

const (
	requestTimeout = 10 * time.Second
	// dayCheckInterval bounds how stale the summary can be after midnight.
	dayCheckInterval = 30 * time.Second
)

// ─── ports ───────────────────────────────────────────────────────────────────

type pomodoroPort interface {
	Start(ctx context.Context) pomodorodto.SnapshotOutput
	Pause(ctx context.Context) pomodorodto.SnapshotOutput
	Toggle(ctx context.Context) pomodorodto.SnapshotOutput
	Skip(ctx context.Context) pomodorodto.SnapshotOutput
	Reset(ctx context.Context, input pomodorodto.ResetInput) (pomodorodto.SnapshotOutput, error)
	ResetCycles(ctx context.Context) pomodorodto.SnapshotOutput
	Snapshot(ctx context.Context) pomodorodto.SnapshotOutput
	Settings(ctx context.Context) pomodorodto.SettingsOutput
	UpdateSettings(ctx context.Context, input pomodorodto.SettingsInput) (pomodorodto.SettingsOutput, error)
	ResetSettings(ctx context.Context) pomodorodto.SettingsOutput
	Summary(ctx context.Context) (pomodorodto.SummaryOutput, error)
	Dashboard(ctx context.Context) pomodorodto.DashboardOutput
}

// QuitGuard decides whether a quit request may leave right away.
type QuitGuard interface {
	RequestQuit() bool
}

// Streams are the push channels the engine and summary service feed.
type Streams struct {
	Snapshots <-chan pomodorodto.SnapshotOutput
	Summaries <-chan pomodorodto.SummaryOutput
	// Resume is called when the terminal regains focus.
	Resume func()
	// Location decides where one summary day ends. Nil means time.Local.
	Location *time.Location
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabSummary
	tabSubjects
	tabSettings
	tabCount
)

var tabLabels = [tabCount]string{
	"Timer", "Summary", "Subjects", "Settings",
}

// ─── async messages ───────────────────────────────────────────────────────────

// NoticeMsg puts text in the status bar. Other goroutines send it through
// tea.Program.Send.
type NoticeMsg struct{ Text string }

type settingsLoadedMsg struct {
	settings pomodorodto.SettingsOutput
	err      error
	status   string
}

type dashboardMsg struct {
	out pomodorodto.DashboardOutput
}

type actionMsg struct {
	snap   pomodorodto.SnapshotOutput
	err    error
	status string
}

type streamClosedMsg struct{}

type dayTickMsg struct{ at time.Time }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Toggle  key.Binding
	Skip    key.Binding
	Reset   key.Binding
	Cycles  key.Binding
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause")),
		Skip:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip stage")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset stage")),
		Cycles:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "reset cycles")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Skip, k.Reset, k.Cycles},
		{k.Tab, k.Palette},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes tabs, owns the help overlay
// and the command palette, and forwards every timer action to the pomodoro
// port. Rendering is delegated to the sub-views.
type Model struct {
	pomodoro pomodoroPort
	guard    QuitGuard
	streams  Streams

	timerView    timerview.Model
	summaryView  summaryview.Model
	subjectsView subjectsview.Model
	settingsView settingsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	settings  pomodorodto.SettingsOutput
	status    string
	day       string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(pomodoro pomodoroPort, guard QuitGuard, streams Streams) Model {
	return Model{
		pomodoro:     pomodoro,
		guard:        guard,
		streams:      streams,
		timerView:    timerview.New(),
		summaryView:  summaryview.New(),
		subjectsView: subjectsview.New(),
		settingsView: settingsview.New(),
		activeTab:    tabTimer,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
		day:          dayKey(time.Now(), streams.Location),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.timerView.Init(),
		m.snapshotCmd(),
		m.loadSettingsCmd(""),
		m.dashboardCmd(),
		waitSnapshot(m.streams.Snapshots),
		waitSummary(m.streams.Summaries),
		dayTick(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize(msg)
		return m, nil

	case tea.FocusMsg:
		if m.streams.Resume != nil {
			m.streams.Resume()
		}
		return m, nil

	case timerview.SnapshotMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, cmd

	case snapshotStreamMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(timerview.SnapshotMsg{Snapshot: msg.snap})
		return m, tea.Batch(cmd, waitSnapshot(m.streams.Snapshots))

	case summaryStreamMsg:
		var cmd tea.Cmd
		m.summaryView, cmd = m.summaryView.Update(summaryview.LoadedMsg{Summary: msg.summary})
		return m, tea.Batch(cmd, waitSummary(m.streams.Summaries))

	case streamClosedMsg:
		return m, nil

	case dayTickMsg:
		day := dayKey(msg.at, m.streams.Location)
		if day == m.day {
			return m, dayTick()
		}
		m.day = day
		return m, tea.Batch(m.dashboardCmd(), dayTick())

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(timerview.SnapshotMsg{Snapshot: msg.snap})
		return m, cmd

	case settingsLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.applySettings(msg.settings)
		if msg.status != "" {
			m.status = msg.status
		}
		return m, m.subjectsView.SetCurrent(msg.settings.DefaultSubjectID)

	case dashboardMsg:
		var c1, c2 tea.Cmd
		m.subjectsView, c1 = m.subjectsView.Update(subjectsview.LoadedMsg{Subjects: msg.out.Subjects, Err: msg.out.SubjectsErr})
		m.summaryView.SetSubjects(m.subjectsView.Names())
		m.summaryView, c2 = m.summaryView.Update(summaryview.LoadedMsg{Summary: msg.out.Summary, Err: msg.out.SummaryErr})
		m.timerView.SetSubject(m.subjectsView.Names()[m.settings.DefaultSubjectID])
		return m, tea.Batch(c1, c2)

	case summaryview.LoadedMsg:
		var cmd tea.Cmd
		m.summaryView, cmd = m.summaryView.Update(msg)
		return m, cmd

	case subjectsview.ChosenMsg:
		id := msg.ID
		status := "default subject cleared"
		if id != 0 {
			status = "default subject: " + msg.Name
		}
		return m, m.updateSettingsCmd(pomodorodto.SettingsInput{DefaultSubjectID: &id}, status)

	case settingsview.SubmitMsg:
		return m, m.updateSettingsCmd(msg.Input, "settings saved")

	case settingsview.CancelMsg:
		m.status = "edit cancelled"
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case NoticeMsg:
		m.status = msg.Text
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-views that are capturing text.
		if m.subViewCapturing() {
			if msg.String() == "ctrl+c" {
				return m.requestQuit()
			}
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.requestQuit()
		case key.Matches(msg, m.keys.Tab):
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Toggle):
			return m, m.actionCmd("", m.pomodoro.Toggle)
		case key.Matches(msg, m.keys.Skip) && m.activeTab == tabTimer:
			return m, m.actionCmd("stage skipped", m.pomodoro.Skip)
		case key.Matches(msg, m.keys.Reset) && m.activeTab == tabTimer:
			return m, m.resetCmd("")
		case key.Matches(msg, m.keys.Cycles) && m.activeTab == tabTimer:
			return m, m.actionCmd("cycles reset", m.pomodoro.ResetCycles)
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimer:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabSummary:
		m.summaryView, tabCmd = m.summaryView.Update(msg)
	case tabSubjects:
		m.subjectsView, tabCmd = m.subjectsView.Update(msg)
	case tabSettings:
		m.settingsView, tabCmd = m.settingsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	// Spinner and progress frames belong to the timer whichever tab is shown.
	if m.activeTab != tabTimer {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var cmd tea.Cmd
			m.timerView, cmd = m.timerView.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.guard == nil || m.guard.RequestQuit() {
		return m, tea.Quit
	}
	m.status = "timer is running: quit again to leave without saving"
	return m, nil
}

func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabSubjects:
		return m.subjectsView.Filtering()
	case tabSettings:
		return m.settingsView.Editing()
	}
	return false
}

func (m *Model) propagateSize(msg tea.WindowSizeMsg) {
	m.timerView, _ = m.timerView.Update(msg)
	m.summaryView, _ = m.summaryView.Update(msg)
	m.subjectsView, _ = m.subjectsView.Update(msg)
}

func (m *Model) applySettings(s pomodorodto.SettingsOutput) {
	m.settings = s
	m.settingsView.SetCurrent(s)
	m.timerView.SetSubject(m.subjectsView.Names()[s.DefaultSubjectID])
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = lipgloss.NewStyle().Padding(1, 2).Render(m.activeView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.View()
	case tabSummary:
		return m.summaryView.View()
	case tabSubjects:
		return m.subjectsView.View()
	case tabSettings:
		return m.settingsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "studyo  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	snap := m.timerView.Snapshot()
	if snap.Running {
		left = lipgloss.NewStyle().Foreground(theme.StageColor(snap.Stage)).Render("● "+snap.Clock) + "  " + left
	}
	right := theme.Muted.Render("space:start/pause  ?:help  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(strings.ToLower(input))
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch parts[0] {
	case "start":
		return m, m.actionCmd("", m.pomodoro.Start)
	case "pause":
		return m, m.actionCmd("", m.pomodoro.Pause)
	case "skip":
		return m, m.actionCmd("stage skipped", m.pomodoro.Skip)
	case "reset":
		return m, m.resetCmd(arg)
	case "cycles:reset":
		return m, m.actionCmd("cycles reset", m.pomodoro.ResetCycles)
	case "settings:work", "settings:short", "settings:long", "settings:cycles":
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.status = "usage: " + parts[0] + " <number>"
			return m, nil
		}
		var in pomodorodto.SettingsInput
		switch parts[0] {
		case "settings:work":
			in.WorkMinutes = &n
		case "settings:short":
			in.ShortBreakMinutes = &n
		case "settings:long":
			in.LongBreakMinutes = &n
		default:
			in.CyclesBeforeLongBreak = &n
		}
		return m, m.updateSettingsCmd(in, "settings saved")
	case "settings:subject":
		var id int64
		if arg != "none" {
			parsed, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				m.status = "usage: settings:subject <id|none>"
				return m, nil
			}
			id = parsed
		}
		return m, m.updateSettingsCmd(pomodorodto.SettingsInput{DefaultSubjectID: &id}, "default subject updated")
	case "settings:defaults":
		p := m.pomodoro
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return settingsLoadedMsg{settings: p.ResetSettings(ctx), status: "settings restored to defaults"}
		}
	case "summary:refresh":
		m.status = "refreshing…"
		return m, m.dashboardCmd()
	}
	m.status = fmt.Sprintf("unknown command %q", parts[0])
	return m, nil
}

// ─── commands ─────────────────────────────────────────────────────────────────

type snapshotStreamMsg struct{ snap pomodorodto.SnapshotOutput }

type summaryStreamMsg struct{ summary pomodorodto.SummaryOutput }

func waitSnapshot(ch <-chan pomodorodto.SnapshotOutput) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotStreamMsg{snap: snap}
	}
}

func waitSummary(ch <-chan pomodorodto.SummaryOutput) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		summary, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return summaryStreamMsg{summary: summary}
	}
}

func (m Model) snapshotCmd() tea.Cmd {
	p := m.pomodoro
	return func() tea.Msg {
		return timerview.SnapshotMsg{Snapshot: p.Snapshot(context.Background())}
	}
}

func (m Model) actionCmd(status string, fn func(context.Context) pomodorodto.SnapshotOutput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return actionMsg{snap: fn(ctx), status: status}
	}
}

func (m Model) resetCmd(stage string) tea.Cmd {
	p := m.pomodoro
	return func() tea.Msg {
		snap, err := p.Reset(context.Background(), pomodorodto.ResetInput{Stage: stage})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{snap: snap, status: "reset to " + strings.ToLower(snap.StageLabel)}
	}
}

func (m Model) loadSettingsCmd(status string) tea.Cmd {
	p := m.pomodoro
	return func() tea.Msg {
		return settingsLoadedMsg{settings: p.Settings(context.Background()), status: status}
	}
}

func (m Model) updateSettingsCmd(in pomodorodto.SettingsInput, status string) tea.Cmd {
	p := m.pomodoro
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		out, err := p.UpdateSettings(ctx, in)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidInput) {
				return settingsLoadedMsg{err: fmt.Errorf("settings rejected: %w", err)}
			}
			return settingsLoadedMsg{err: err}
		}
		return settingsLoadedMsg{settings: out, status: status}
	}
}

func dayTick() tea.Cmd {
	return tea.Tick(dayCheckInterval, func(t time.Time) tea.Msg { return dayTickMsg{at: t} })
}

func dayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(time.DateOnly)
}

func (m Model) dashboardCmd() tea.Cmd {
	p := m.pomodoro
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return dashboardMsg{out: p.Dashboard(ctx)}
	}
}
