// Package todolist is the daily checklist screen: the mandatory catalog
// items followed by the user's custom todos.
package todolist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/wellness/internal/checklist"
	"github.com/nhle/wellness/internal/history"
	"github.com/nhle/wellness/internal/keys"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/theme"
)

// ToggleMsg asks the app to set a todo's completion state.
type ToggleMsg struct {
	TodoID    string
	Completed bool
}

// DeleteMsg asks the app to delete a custom todo.
type DeleteMsg struct {
	TodoID string
}

// OpenMsg asks the app to show a todo's detail and comments.
type OpenMsg struct {
	Todo model.Todo
}

// AttachMsg asks the app to attach a photo to a todo.
type AttachMsg struct {
	TodoID string
}

// RemoveImageMsg asks the app to remove a todo's photo.
type RemoveImageMsg struct {
	TodoID string
}

// Row is one line of the checklist.
type Row struct {
	Label     string
	Detail    string
	Todo      *model.Todo
	Completed bool
	Mandatory bool
}

// Model is the checklist screen.
type Model struct {
	keys     *keys.KeyMap
	day      string
	rows     []Row
	stats    history.Stats
	cursor   int
	loaded   bool
	progress progress.Model
	width    int
	height   int
}

// New creates an empty checklist screen.
func New(k *keys.KeyMap, width, height int) Model {
	p := progress.New(progress.WithDefaultGradient())
	p.Width = progressWidth(width)

	return Model{
		keys:     k,
		progress: p,
		width:    width,
		height:   height,
	}
}

// SetTodos replaces the day's todos. Catalog entries come first in catalog
// order, then every todo not backing an entry.
func (m *Model) SetTodos(day string, todos []model.Todo) {
	m.day = day
	m.loaded = true
	m.stats = history.Compute(todos)

	res := checklist.Reconcile(model.MandatoryCatalog(), todos)
	used := make(map[string]bool, len(res.Items))

	rows := make([]Row, 0, len(todos)+len(res.Items))
	for _, item := range res.Items {
		row := Row{
			Label:     item.Entry.Text,
			Detail:    item.Entry.Detail,
			Todo:      item.Todo,
			Completed: item.Completed,
			Mandatory: true,
		}
		if item.Todo != nil {
			used[item.Todo.ID] = true
		}
		rows = append(rows, row)
	}
	for i := range todos {
		if used[todos[i].ID] {
			continue
		}
		rows = append(rows, Row{
			Label:     todos[i].Text,
			Todo:      &todos[i],
			Completed: todos[i].Completed,
			Mandatory: todos[i].IsMandatory,
		})
	}

	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

// Clear drops the loaded day, used on logout.
func (m *Model) Clear() {
	m.day = ""
	m.rows = nil
	m.stats = history.Stats{}
	m.cursor = 0
	m.loaded = false
}

// Rows returns the current rows.
func (m Model) Rows() []Row {
	return m.rows
}

// Stats returns the day's completion statistics.
func (m Model) Stats() history.Stats {
	return m.stats
}

// Day returns the loaded day.
func (m Model) Day() string {
	return m.day
}

// Selected returns the row under the cursor.
func (m Model) Selected() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

// Update handles navigation and turns action keys into request messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Toggle):
			row, ok := m.Selected()
			if !ok || row.Todo == nil {
				return m, nil
			}
			req := ToggleMsg{TodoID: row.Todo.ID, Completed: !row.Completed}
			return m, func() tea.Msg { return req }
		case key.Matches(msg, m.keys.Select):
			row, ok := m.Selected()
			if !ok || row.Todo == nil {
				return m, nil
			}
			req := OpenMsg{Todo: *row.Todo}
			return m, func() tea.Msg { return req }
		case key.Matches(msg, m.keys.Delete):
			row, ok := m.Selected()
			if !ok || row.Todo == nil || row.Mandatory {
				return m, nil
			}
			req := DeleteMsg{TodoID: row.Todo.ID}
			return m, func() tea.Msg { return req }
		case key.Matches(msg, m.keys.Image):
			row, ok := m.Selected()
			if !ok || row.Todo == nil {
				return m, nil
			}
			req := AttachMsg{TodoID: row.Todo.ID}
			return m, func() tea.Msg { return req }
		case key.Matches(msg, m.keys.RemoveImage):
			row, ok := m.Selected()
			if !ok || row.Todo == nil || !row.Todo.HasImage() {
				return m, nil
			}
			req := RemoveImageMsg{TodoID: row.Todo.ID}
			return m, func() tea.Msg { return req }
		}
	}
	return m, nil
}

// View renders the checklist.
func (m Model) View() string {
	if !m.loaded {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Memuat checklist...")
	}

	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Checklist " + m.day))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(float64(m.stats.Percentage) / 100))
	b.WriteString("  ")
	b.WriteString(theme.PercentageStyle(m.stats.Percentage).Render(
		fmt.Sprintf("%d/%d selesai (%d%%)", m.stats.Completed, m.stats.Total, m.stats.Percentage),
	))
	b.WriteString("\n\n")

	customHeader := false
	for i, row := range m.rows {
		if !row.Mandatory && !customHeader {
			customHeader = true
			b.WriteString("\n")
			b.WriteString(theme.DimmedStyle.Render("Todo tambahan"))
			b.WriteString("\n")
		}
		b.WriteString(m.renderRow(row, i == m.cursor))
		b.WriteString("\n")
	}
	if !customHeader {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("Tekan n untuk menambah todo sendiri."))
	}

	return b.String()
}

func (m Model) renderRow(row Row, selected bool) string {
	box := "[ ]"
	if row.Completed {
		box = "[x]"
	}
	if row.Todo == nil {
		box = "[-]"
	}

	label := row.Label
	if row.Completed {
		label = theme.DoneStyle.Render(label)
	}
	line := box + " " + label
	if row.Todo != nil && row.Todo.HasImage() {
		line += " " + theme.BadgeStyle.Render("📷")
	}

	if !selected {
		return theme.ListItemStyle.Render(line)
	}
	if row.Detail != "" {
		detail := strings.ReplaceAll(row.Detail, "\n", "\n    ")
		line += "\n    " + theme.DimmedStyle.Render(detail)
	}
	return theme.SelectedItemStyle.Render(line)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = progressWidth(width)
}

func progressWidth(width int) int {
	w := width / 2
	if w < 10 {
		w = 10
	}
	if w > 50 {
		w = 50
	}
	return w
}
