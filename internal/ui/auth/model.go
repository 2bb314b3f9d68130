// Package auth is the login / registration screen.
package auth

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/wellness/internal/theme"
)

// Mode values offered by the form.
const (
	ModeLogin    = "login"
	ModeRegister = "register"
)

// SubmitMsg is dispatched when the user submits a name.
type SubmitMsg struct {
	Name     string
	Register bool
}

// formBindings keeps huh's value pointers valid across model copies.
type formBindings struct {
	name string
	mode string
}

// Model is the auth screen.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	pending bool
	width   int
	height  int
}

// New creates the auth screen with an empty form.
func New(width, height int) Model {
	m := Model{
		fb:     &formBindings{mode: ModeLogin},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Reset clears the form, keeping the last chosen mode.
func (m *Model) Reset() tea.Cmd {
	m.fb.name = ""
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

// SetPending marks a submission in flight.
func (m *Model) SetPending(pending bool) {
	m.pending = pending
}

// Update forwards messages to the form and emits SubmitMsg on completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.pending = true
		submit := SubmitMsg{
			Name:     strings.TrimSpace(m.fb.name),
			Register: m.fb.mode == ModeRegister,
		}
		return m, func() tea.Msg { return submit }
	}
	return m, cmd
}

// View renders the screen.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Wellness Checklist")
	sub := theme.DimmedStyle.Render("Masuk atau daftar dengan nama kamu.")

	body := m.form.View()
	if m.pending {
		body = theme.DimmedStyle.Render("Memproses...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, sub, "", body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		theme.PanelStyle.Width(m.formWidth()+4).Render(content))
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nama").
				Placeholder("mis. Ana").
				CharLimit(64).
				Value(&m.fb.name).
				Validate(validateName),
			huh.NewSelect[string]().
				Title("Aksi").
				Options(
					huh.NewOption("Masuk", ModeLogin),
					huh.NewOption("Daftar", ModeRegister),
				).
				Value(&m.fb.mode),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width / 2
	if w < 30 {
		w = 30
	}
	if w > 60 {
		w = 60
	}
	return w
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("nama wajib diisi")
	}
	return nil
}
