package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/wellness/internal/keys"
	"github.com/nhle/wellness/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders the help overlay.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Pintasan Keyboard")
	footer := theme.HelpStyle.Render("Perintah: :history  :feed  :refresh  :logout  :quit")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.help.View(m.keys), "", footer)

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Height(max(m.height-4, 5)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
