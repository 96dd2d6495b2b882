package summary

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
	"studyo/internal/ui/theme"
)

type LoadedMsg struct {
	Summary pomodorodto.SummaryOutput
	Err     error
}

type Model struct {
	summary  pomodorodto.SummaryOutput
	err      error
	loaded   bool
	subjects map[int64]string
}

func New() Model {
	return Model{subjects: map[int64]string{}}
}

// SetSubjects provides names for the recent-session list.
func (m *Model) SetSubjects(names map[int64]string) { m.subjects = names }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(LoadedMsg); ok {
		m.loaded = true
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.summary = msg.Summary
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		return theme.Muted.Render("loading summary…")
	}
	var sb strings.Builder
	if m.err != nil {
		sb.WriteString(theme.Warn.Render("summary unavailable: "+m.err.Error()) + "\n\n")
	}
	sb.WriteString(theme.Title.Render("Today") + "\n")
	sb.WriteString(fmt.Sprintf("  sessions  %d\n", m.summary.SessionsToday))
	sb.WriteString(fmt.Sprintf("  minutes   %d\n", m.summary.MinutesToday))
	sb.WriteString(theme.Title.Render("This week") + "\n")
	sb.WriteString(fmt.Sprintf("  sessions  %d\n\n", m.summary.SessionsThisWeek))

	sb.WriteString(theme.Title.Render("Recent") + "\n")
	if len(m.summary.Recent) == 0 {
		sb.WriteString(theme.Muted.Render("  no sessions yet") + "\n")
	}
	for _, r := range m.summary.Recent {
		line := fmt.Sprintf("  %s  %3d min", r.StartTime.Local().Format("Mon 02 Jan 15:04"), r.DurationMinutes)
		if name, ok := m.subjects[r.SubjectID]; ok && r.SubjectID != 0 {
			line += "  " + name
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
