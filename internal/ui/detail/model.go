package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/wellness/internal/keys"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/theme"
)

// CloseMsg signals the parent to close the detail overlay.
type CloseMsg struct{}

// CommentRequestMsg asks the parent to open the comment form for a todo.
type CommentRequestMsg struct {
	TodoID string
}

// Model is the todo detail overlay: the todo, its owner, its photo and
// its comments.
type Model struct {
	todo     *model.Todo
	owner    string
	comments []model.Comment
	loading  bool
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }

		case key.Matches(msg, m.keys.Comment):
			if m.todo != nil {
				id := m.todo.ID
				return m, func() tea.Msg { return CommentRequestMsg{TodoID: id} }
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.todo == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Tidak ada todo dipilih")
	}
	return m.viewport.View()
}

// TodoID returns the displayed todo's ID, or "" when nothing is shown.
func (m Model) TodoID() string {
	if m.todo == nil {
		return ""
	}
	return m.todo.ID
}

// SetTodo shows a todo and clears previously loaded comments.
func (m *Model) SetTodo(todo model.Todo, owner string) {
	m.todo = &todo
	m.owner = owner
	m.comments = nil
	m.loading = true
	m.refresh()
	m.viewport.GotoTop()
}

// SetComments replaces the comment list.
func (m *Model) SetComments(comments []model.Comment) {
	m.comments = comments
	m.loading = false
	m.refresh()
}

// AppendComment adds a freshly posted comment and scrolls to it.
func (m *Model) AppendComment(c model.Comment) {
	m.comments = append(m.comments, c)
	m.refresh()
	m.viewport.GotoBottom()
}

// Comments returns the displayed comments.
func (m Model) Comments() []model.Comment {
	return m.comments
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.todo == nil {
		return ""
	}

	todo := m.todo
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(todo.Text))

	status := theme.DimmedStyle.Render("belum selesai")
	if todo.Completed {
		status = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("selesai")
	}
	kind := "tambahan"
	if todo.IsMandatory {
		kind = "wajib"
	}
	sections = append(sections, lipgloss.JoinHorizontal(
		lipgloss.Top, status, "  ", theme.BadgeStyle.Render(kind),
	))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, val string) {
		sections = append(sections, fmt.Sprintf("%-9s %s",
			metaStyle.Render(label+":"), valStyle.Render(val)))
	}

	if m.owner != "" {
		meta("Oleh", m.owner)
	}
	meta("Tanggal", todo.Date)
	if todo.CompletedAt != nil {
		meta("Selesai", todo.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	if todo.HasImage() {
		meta("Foto", *todo.ImageURL)
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, headerStyle.Render(
		fmt.Sprintf("Komentar (%d)", len(m.comments)),
	))
	sections = append(sections, "")

	switch {
	case m.loading && len(m.comments) == 0:
		sections = append(sections, theme.DimmedStyle.Render("Memuat komentar..."))
	case len(m.comments) == 0:
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("Belum ada komentar. Tekan c untuk menulis."))
	default:
		authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
		for _, c := range m.comments {
			sections = append(sections, fmt.Sprintf("%s  %s",
				authorStyle.Render(c.UserName),
				timeStyle.Render(c.CreatedAt.Local().Format("2006-01-02 15:04")),
			))
			sections = append(sections, c.Comment, "")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.refresh()
}
