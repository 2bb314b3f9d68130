// Package feed is the screen showing other users' completed todos.
package feed

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/wellness/internal/history"
	"github.com/nhle/wellness/internal/keys"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/theme"
)

// BackMsg asks the app to return to the checklist.
type BackMsg struct{}

// OpenMsg asks the app to show an item's detail and comments.
type OpenMsg struct {
	Item model.PublicTodo
}

type entry struct {
	date string
	item model.PublicTodo
}

// Model is the public feed screen.
type Model struct {
	keys    *keys.KeyMap
	entries []entry
	cursor  int
	offset  int
	loading bool
	width   int
	height  int
}

// New creates the feed screen.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetLoading shows a placeholder until SetDays is called.
func (m *Model) SetLoading() {
	m.loading = true
	m.entries = nil
	m.cursor = 0
	m.offset = 0
}

// SetDays flattens the grouped feed for cursor navigation.
func (m *Model) SetDays(days []history.FeedDay) {
	m.loading = false
	m.entries = m.entries[:0]
	for _, d := range days {
		for _, it := range d.Items {
			m.entries = append(m.entries, entry{date: d.Date, item: it})
		}
	}
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
}

// Len returns the number of items shown.
func (m Model) Len() int {
	return len(m.entries)
}

// Update handles navigation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.Select):
		if m.cursor < len(m.entries) {
			item := m.entries[m.cursor].item
			return m, func() tea.Msg { return OpenMsg{Item: item} }
		}
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m Model) visibleRows() int {
	// title plus a date header per screen is a safe upper bound
	v := m.height - 4
	if v < 1 {
		v = 1
	}
	return v
}

// View renders the feed.
func (m Model) View() string {
	if m.loading {
		return theme.DimmedStyle.Render("Memuat feed...")
	}
	if len(m.entries) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Belum ada todo yang diselesaikan.")
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Feed Publik"))
	b.WriteString("\n")

	end := min(m.offset+m.visibleRows(), len(m.entries))
	lastDate := ""
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		if e.date != lastDate {
			lastDate = e.date
			b.WriteString(lipgloss.NewStyle().Bold(true).Render(e.date))
			b.WriteString("\n")
		}

		line := fmt.Sprintf("%s  %s", theme.BadgeStyle.Render(e.item.UserName), e.item.Text)
		if e.item.HasImage() {
			line += " 📷"
		}
		if e.item.CompletedAt != nil {
			line += "  " + theme.DimmedStyle.Render(e.item.CompletedAt.Local().Format("15:04"))
		}
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.scroll()
}
