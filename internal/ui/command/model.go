package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/wellness/internal/theme"
)

// Commands understood by the palette.
const (
	History = "history"
	Feed    = "feed"
	Refresh = "refresh"
	Logout  = "logout"
	Quit    = "quit"
)

var known = []string{History, Feed, Refresh, Logout, Quit}

// CommandMsg is emitted when the user executes a known command.
type CommandMsg string

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Resolve maps input to a known command. A unique prefix is accepted.
func Resolve(input string) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", false
	}
	match := ""
	for _, c := range known {
		if c == input {
			return c, true
		}
		if strings.HasPrefix(c, input) {
			if match != "" {
				return "", false
			}
			match = c
		}
	}
	return match, match != ""
}

// Model is the command palette view.
type Model struct {
	input   textinput.Model
	invalid string
	width   int
	height  int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = strings.Join(known, ", ")
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.input.Reset()
			m.invalid = ""
			return m, func() tea.Msg { return CancelMsg{} }
		case "enter":
			raw := m.input.Value()
			cmd, ok := Resolve(raw)
			if !ok {
				m.invalid = strings.TrimSpace(raw)
				return m, nil
			}
			m.input.Reset()
			m.invalid = ""
			return m, func() tea.Msg { return CommandMsg(cmd) }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Perintah")

	parts := []string{title, m.input.View()}
	if m.invalid != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render("perintah tidak dikenal: "+m.invalid))
	}

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	m.invalid = ""
	return m.input.Focus()
}
