// Package history is the screen listing past days and their completion.
package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	dayhistory "github.com/nhle/wellness/internal/history"
	"github.com/nhle/wellness/internal/keys"
	"github.com/nhle/wellness/internal/theme"
)

// BackMsg asks the app to return to the checklist.
type BackMsg struct{}

// Model is the history screen.
type Model struct {
	keys     *keys.KeyMap
	days     []dayhistory.Day
	loading  bool
	viewport viewport.Model
	width    int
	height   int
}

// New creates the history screen.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:     k,
		viewport: viewport.New(width, height),
		width:    width,
		height:   height,
	}
}

// SetLoading shows a placeholder until SetDays is called.
func (m *Model) SetLoading() {
	m.loading = true
	m.days = nil
}

// SetDays replaces the displayed days.
func (m *Model) SetDays(days []dayhistory.Day) {
	m.loading = false
	m.days = days
	m.viewport.SetContent(m.renderDays())
	m.viewport.GotoTop()
}

// Update scrolls the viewport and turns esc into BackMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the screen.
func (m Model) View() string {
	if m.loading {
		return theme.DimmedStyle.Render("Memuat riwayat...")
	}
	if len(m.days) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Belum ada riwayat.")
	}
	return m.viewport.View()
}

func (m Model) renderDays() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Riwayat"))
	b.WriteString("\n")

	for _, d := range m.days {
		pct := theme.PercentageStyle(d.Stats.Percentage).
			Render(fmt.Sprintf("%d%%", d.Stats.Percentage))
		fmt.Fprintf(&b, "%s  %d/%d  %s\n",
			lipgloss.NewStyle().Bold(true).Render(d.Date),
			d.Stats.Completed, d.Stats.Total, pct)

		for _, t := range d.Todos {
			mark := "[ ]"
			text := t.Text
			if t.Completed {
				mark = "[x]"
				text = theme.DoneStyle.Render(text)
			}
			b.WriteString(theme.ListItemStyle.Render(mark + " " + text))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	if !m.loading && len(m.days) > 0 {
		m.viewport.SetContent(m.renderDays())
	}
}
