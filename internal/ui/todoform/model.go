package todoform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/wellness/internal/theme"
)

// Kind selects what the single-field form collects.
type Kind int

const (
	// KindTodo collects the text of a new custom todo.
	KindTodo Kind = iota
	// KindComment collects a comment on Target.
	KindComment
	// KindImage collects a path to an image file to attach to Target.
	KindImage
)

// MaxLength bounds todo and comment text, counted in characters.
const MaxLength = 500

// SubmittedMsg is dispatched when the user submits the form.
type SubmittedMsg struct {
	Kind   Kind
	Target string
	Value  string
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	value string
}

// Model is the Bubble Tea model for the input overlay.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	kind   Kind
	target string
	width  int
	height int
}

// New creates a new form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form for kind. target is the todo ID for comments
// and images and is ignored for new todos.
func (m *Model) Start(kind Kind, target string) tea.Cmd {
	m.kind = kind
	m.target = target
	m.fb.value = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Active reports whether a form is in progress.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		sub := SubmittedMsg{Kind: m.kind, Target: m.target, Value: strings.TrimSpace(m.fb.value)}
		m.form = nil
		return m, func() tea.Msg { return sub }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	content := theme.TitleStyle.Render(m.title()) + "\n" + m.form.View()
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) title() string {
	switch m.kind {
	case KindComment:
		return "Tulis Komentar"
	case KindImage:
		return "Lampirkan Foto"
	default:
		return "Todo Baru"
	}
}

func (m *Model) buildForm() *huh.Form {
	var field huh.Field
	switch m.kind {
	case KindComment:
		field = huh.NewText().
			Title("Komentar").
			Placeholder("Semangat!").
			CharLimit(MaxLength).
			Value(&m.fb.value).
			Validate(validateText("komentar"))
	case KindImage:
		field = huh.NewInput().
			Title("Path file gambar").
			Placeholder("~/Pictures/bukti.jpg").
			Value(&m.fb.value).
			Validate(validateRequired("path"))
	default:
		field = huh.NewInput().
			Title("Todo").
			Placeholder("mis. Baca buku 10 menit").
			CharLimit(MaxLength).
			Value(&m.fb.value).
			Validate(validateText("todo"))
	}

	return huh.NewForm(huh.NewGroup(field)).
		WithWidth(m.formWidth()).
		WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s wajib diisi", fieldName)
		}
		return nil
	}
}

func validateText(fieldName string) func(string) error {
	required := validateRequired(fieldName)
	return func(s string) error {
		if err := required(s); err != nil {
			return err
		}
		if utf8.RuneCountInString(strings.TrimSpace(s)) > MaxLength {
			return fmt.Errorf("%s maksimal %d karakter", fieldName, MaxLength)
		}
		return nil
	}
}
