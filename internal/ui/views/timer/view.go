package timer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
	"studyo/internal/ui/theme"
)

// SnapshotMsg carries a fresh engine snapshot into the view.
type SnapshotMsg struct {
	Snapshot pomodorodto.SnapshotOutput
}

type Model struct {
	snap     pomodorodto.SnapshotOutput
	seen     bool
	progress progress.Model
	spinner  spinner.Model
	subject  string
	bell     io.Writer
	width    int
}

func New() Model {
	bar := progress.New(progress.WithSolidFill(string(theme.Peach)), progress.WithoutPercentage())
	bar.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{progress: bar, spinner: sp, bell: os.Stderr}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetSubject names the subject new sessions are attributed to.
func (m *Model) SetSubject(name string) { m.subject = name }

func (m Model) Snapshot() pomodorodto.SnapshotOutput { return m.snap }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 12
		if w > 60 {
			w = 60
		}
		if w < 10 {
			w = 10
		}
		m.progress.Width = w
		return m, nil

	case SnapshotMsg:
		prev, seen := m.snap, m.seen
		m.snap, m.seen = msg.Snapshot, true
		m.progress.FullColor = string(theme.StageColor(msg.Snapshot.Stage))
		cmds := []tea.Cmd{m.progress.SetPercent(msg.Snapshot.Progress)}
		if seen && ShouldRing(prev, msg.Snapshot) {
			cmds = append(cmds, m.ringCmd())
		}
		return m, tea.Batch(cmds...)

	case progress.FrameMsg:
		next, cmd := m.progress.Update(msg)
		if bar, ok := next.(progress.Model); ok {
			m.progress = bar
		}
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ShouldRing reports whether next is the first snapshot after a Work stage
// ran out on its own. Skips and resets never ring.
func ShouldRing(prev, next pomodorodto.SnapshotOutput) bool {
	return next.Completions > prev.Completions && next.LastCompleted == "work"
}

func (m Model) ringCmd() tea.Cmd {
	bell := m.bell
	return func() tea.Msg {
		_, _ = io.WriteString(bell, "\a")
		return nil
	}
}

func (m Model) View() string {
	if !m.seen {
		return theme.Muted.Render("waiting for the timer…")
	}
	accent := theme.StageColor(m.snap.Stage)
	label := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(strings.ToUpper(m.snap.StageLabel))
	clock := lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Padding(1, 4).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Render(m.snap.Clock)

	state := theme.Muted.Render("paused")
	if m.snap.Running {
		state = m.spinner.View() + " running"
	}

	var sb strings.Builder
	sb.WriteString(label + "  " + state + "\n\n")
	sb.WriteString(clock + "\n\n")
	sb.WriteString(m.progress.View() + "\n\n")
	sb.WriteString(cycleDots(m.snap.CycleInSet, m.snap.CyclesBeforeLongBreak, accent))
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("  %d cycles completed", m.snap.CompletedCycles)) + "\n")
	if !m.snap.SessionStart.IsZero() {
		sb.WriteString(theme.Muted.Render("session since "+m.snap.SessionStart.Local().Format(time.Kitchen)) + "\n")
	}
	if m.subject != "" {
		sb.WriteString(theme.Muted.Render("subject: ") + m.subject + "\n")
	}
	return sb.String()
}

func cycleDots(done, total int, accent lipgloss.Color) string {
	if total < 1 {
		total = 1
	}
	on := lipgloss.NewStyle().Foreground(accent)
	var sb strings.Builder
	for i := 0; i < total; i++ {
		if i < done {
			sb.WriteString(on.Render("●"))
		} else {
			sb.WriteString(theme.Muted.Render("○"))
		}
	}
	return sb.String()
}
