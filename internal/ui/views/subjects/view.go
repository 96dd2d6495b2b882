package subjects

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
	"studyo/internal/ui/theme"
)

type LoadedMsg struct {
	Subjects []pomodorodto.SubjectOption
	Err      error
}

// ChosenMsg asks the app to make ID the default subject; zero clears it.
type ChosenMsg struct {
	ID   int64
	Name string
}

type subjectItem struct {
	subject pomodorodto.SubjectOption
	current bool
}

func (i subjectItem) Title() string {
	if i.current {
		return "★ " + i.subject.Name
	}
	return i.subject.Name
}

func (i subjectItem) Description() string {
	if i.subject.ID == 0 {
		return "sessions are saved without a subject"
	}
	return fmt.Sprintf("#%d", i.subject.ID)
}

func (i subjectItem) FilterValue() string { return i.subject.Name }

var noSubject = pomodorodto.SubjectOption{Name: "No subject"}

type Model struct {
	list     list.Model
	subjects []pomodorodto.SubjectOption
	current  int64
	err      error
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Default subject"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return Model{list: l}
}

// Filtering reports whether the list is capturing keystrokes.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Names maps subject ids to names for other views.
func (m Model) Names() map[int64]string {
	names := make(map[int64]string, len(m.subjects))
	for _, s := range m.subjects {
		names[s.ID] = s.Name
	}
	return names
}

// SetCurrent marks id as the active default subject.
func (m *Model) SetCurrent(id int64) tea.Cmd {
	m.current = id
	return m.refreshItems()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = "Default subject (" + msg.Err.Error() + ")"
			return m, nil
		}
		m.list.Title = "Default subject"
		m.subjects = msg.Subjects
		return m, m.refreshItems()

	case tea.KeyMsg:
		if msg.String() == "enter" && !m.Filtering() {
			if item, ok := m.list.SelectedItem().(subjectItem); ok {
				chosen := item.subject
				return m, func() tea.Msg { return ChosenMsg{ID: chosen.ID, Name: chosen.Name} }
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) refreshItems() tea.Cmd {
	items := make([]list.Item, 0, len(m.subjects)+1)
	items = append(items, subjectItem{subject: noSubject, current: m.current == 0})
	for _, s := range m.subjects {
		items = append(items, subjectItem{subject: s, current: s.ID == m.current})
	}
	return m.list.SetItems(items)
}

func (m Model) View() string {
	if m.err != nil && len(m.subjects) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), theme.Muted.Render("subjects are loaded from the backend; check api_base_url and token"))
	}
	return m.list.View()
}
