package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studyo/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

const (
	historyLimit = 20
	shownHints   = 5
)

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	usageStyle = lipgloss.NewStyle().Foreground(theme.Lavender)
	hintStyle  = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

type command struct {
	usage string
	about string
}

// commands must stay in sync with executePalette in app/model.go.
var commands = []command{
	{"start", "start the current stage"},
	{"pause", "pause the countdown"},
	{"skip", "end the stage now"},
	{"reset [work|short|long]", "refill the stage, optionally switching"},
	{"cycles:reset", "zero the cycle counter and today's count"},
	{"settings:work <minutes>", "work length"},
	{"settings:short <minutes>", "short break length"},
	{"settings:long <minutes>", "long break length"},
	{"settings:cycles <n>", "work cycles before a long break"},
	{"settings:subject <id|none>", "subject attached to new sessions"},
	{"settings:defaults", "restore 25/5/15/4"},
	{"summary:refresh", "reload totals and subjects"},
}

// Palette is a command-palette overlay backed by bubbles/textinput. Submitted
// commands are kept so up and down can recall them.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int

	history []string
	recall  int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "start, skip, reset long, settings:work 50…"
	ti.CharLimit = 64
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows an empty palette and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.recall = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(input string) {
	if input == "" || (len(p.history) > 0 && p.history[len(p.history)-1] == input) {
		return
	}
	p.history = append(p.history, input)
	if len(p.history) > historyLimit {
		p.history = p.history[len(p.history)-historyLimit:]
	}
}

func (p *Palette) step(delta int) {
	next := p.recall + delta
	if next < 0 || next > len(p.history) {
		return
	}
	p.recall = next
	if next == len(p.history) {
		p.input.SetValue("")
		return
	}
	p.input.SetValue(p.history[next])
	p.input.CursorEnd()
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.remember(val)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "up":
			p.step(-1)
			return p, nil
		case "down":
			p.step(1)
			return p, nil
		case "tab":
			if hints := Suggest(p.input.Value(), 1); len(hints) == 1 {
				verb, _, _ := strings.Cut(hints[0], " ")
				p.input.SetValue(verb + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Suggest returns up to limit command usages whose verb starts with the verb
// typed so far.
func Suggest(input string, limit int) []string {
	var out []string
	for _, c := range match(input, limit) {
		out = append(out, c.usage)
	}
	return out
}

func match(input string, limit int) []command {
	verb, _, _ := strings.Cut(strings.ToLower(strings.TrimLeft(input, " ")), " ")
	var out []command
	for _, c := range commands {
		if len(out) == limit {
			break
		}
		if verb == "" || strings.HasPrefix(c.usage, verb) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	lines := []string{theme.Title.Render("Command"), ": " + p.input.View()}
	if found := match(p.input.Value(), shownHints); len(found) > 0 {
		lines = append(lines, "")
		for _, c := range found {
			lines = append(lines, "  "+usageStyle.Render(c.usage)+"  "+hintStyle.Render(c.about))
		}
	}
	if len(p.history) > 0 {
		lines = append(lines, "", hintStyle.Render("↑/↓ history · tab complete"))
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
}
