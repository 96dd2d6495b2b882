package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
	"studyo/internal/ui/theme"
)

// SubmitMsg carries the edited durations back to the app.
type SubmitMsg struct {
	Input pomodorodto.SettingsInput
}

type CancelMsg struct{}

const (
	fieldWork = iota
	fieldShort
	fieldLong
	fieldCycles
	fieldCount
)

var labels = [fieldCount]string{
	"Work (minutes)",
	"Short break (minutes)",
	"Long break (minutes)",
	"Cycles before long break",
}

type Model struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	editing bool
	current pomodorodto.SettingsOutput
	err     string
}

func New() Model {
	var m Model
	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 4
		ti.Width = 6
		ti.Prompt = ""
		m.inputs[i] = ti
	}
	return m
}

// Editing reports whether the form owns the keyboard.
func (m Model) Editing() bool { return m.editing }

// SetCurrent loads settings into the form unless the user is mid-edit.
func (m *Model) SetCurrent(s pomodorodto.SettingsOutput) {
	m.current = s
	if m.editing {
		return
	}
	m.fill()
}

// Edit focuses the first field.
func (m *Model) Edit() tea.Cmd {
	m.fill()
	m.editing = true
	m.err = ""
	m.focus = fieldWork
	return m.focusOnly(m.focus)
}

func (m *Model) fill() {
	values := [fieldCount]int{m.current.WorkMinutes, m.current.ShortBreakMinutes, m.current.LongBreakMinutes, m.current.CyclesBeforeLongBreak}
	for i, v := range values {
		m.inputs[i].SetValue(strconv.Itoa(v))
	}
}

func (m *Model) focusOnly(idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *Model) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.editing = false
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if !m.editing {
		if key.String() == "e" || key.String() == "enter" {
			return m, m.Edit()
		}
		return m, nil
	}
	switch key.String() {
	case "esc":
		m.blurAll()
		m.fill()
		m.err = ""
		return m, func() tea.Msg { return CancelMsg{} }
	case "tab", "down":
		m.focus = (m.focus + 1) % fieldCount
		return m, m.focusOnly(m.focus)
	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m, m.focusOnly(m.focus)
	case "enter":
		input, err := m.parse()
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.blurAll()
		return m, func() tea.Msg { return SubmitMsg{Input: input} }
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// parse only checks that every field is a whole number; range clamping
// happens when the settings are applied.
func (m Model) parse() (pomodorodto.SettingsInput, error) {
	var values [fieldCount]int
	for i := range m.inputs {
		raw := strings.TrimSpace(m.inputs[i].Value())
		n, err := strconv.Atoi(raw)
		if err != nil {
			return pomodorodto.SettingsInput{}, fmt.Errorf("%s: %q is not a whole number", strings.ToLower(labels[i]), raw)
		}
		values[i] = n
	}
	return pomodorodto.SettingsInput{
		WorkMinutes:           &values[fieldWork],
		ShortBreakMinutes:     &values[fieldShort],
		LongBreakMinutes:      &values[fieldLong],
		CyclesBeforeLongBreak: &values[fieldCycles],
	}, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Settings") + "\n\n")
	for i := range m.inputs {
		label := fmt.Sprintf("%-26s", labels[i])
		if m.editing && i == m.focus {
			sb.WriteString(theme.Hot.Render("› "+label) + m.inputs[i].View() + "\n")
			continue
		}
		sb.WriteString(theme.Muted.Render("  "+label) + m.inputs[i].View() + "\n")
	}
	subject := "none"
	if m.current.DefaultSubjectID != 0 {
		subject = fmt.Sprintf("#%d", m.current.DefaultSubjectID)
	}
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("  %-26s", "Default subject")) + subject + "\n\n")
	if m.err != "" {
		sb.WriteString(theme.Warn.Render(m.err) + "\n")
	}
	if m.editing {
		sb.WriteString(theme.Muted.Render("tab next field · enter save · esc cancel"))
	} else {
		sb.WriteString(theme.Muted.Render("e edit · values below 1 are raised to 1"))
	}
	return sb.String()
}
