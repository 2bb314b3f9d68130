package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/nhle/wellness/internal/reminder"
	"github.com/nhle/wellness/internal/rollover"
	"github.com/nhle/wellness/internal/service"
	"github.com/nhle/wellness/internal/session"
	"github.com/nhle/wellness/internal/ui"
	authview "github.com/nhle/wellness/internal/ui/auth"
	"github.com/nhle/wellness/internal/ui/command"
	"github.com/nhle/wellness/internal/ui/detail"
	feedview "github.com/nhle/wellness/internal/ui/feed"
	helpview "github.com/nhle/wellness/internal/ui/help"
	historyview "github.com/nhle/wellness/internal/ui/history"
	"github.com/nhle/wellness/internal/ui/todoform"
	"github.com/nhle/wellness/internal/ui/todolist"
)

// Deps are the services and collaborators the root model drives.
type Deps struct {
	Todos    *service.Todos
	Auth     *service.Auth
	Comments *service.Comments
	Images   *service.Images
	Feed     *service.Feed
	Sessions *session.Manager

	Log zerolog.Logger

	// FS is where image paths typed by the user are read from.
	FS afero.Fs

	Location         *time.Location
	ReminderInterval time.Duration

	// RolloverOptions are passed to every session's scheduler.
	RolloverOptions []rollover.Option
}

// overlay sits above the current screen without changing router state.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayCommand
	overlayForm
	overlayDetail
)

// Model is the root Bubble Tea model. It owns the router, the active
// session and every screen.
type Model struct {
	deps   Deps
	keys   *KeyMap
	router Router
	layout ui.Layout
	ready  bool

	overlay overlay
	// formReturn is the overlay restored when the form closes.
	formReturn overlay

	session *session.Session
	sched   *rollover.Scheduler

	authView    authview.Model
	todoList    todolist.Model
	historyView historyview.Model
	feedView    feedview.Model
	detail      detail.Model
	form        todoform.Model
	helpView    helpview.Model
	commandView command.Model

	status    string
	statusErr bool
	reminder  string
}

// New creates the root model. A persisted session opens directly on the
// checklist; otherwise the auth screen is shown.
func New(deps Deps) Model {
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.ReminderInterval <= 0 {
		deps.ReminderInterval = reminder.DefaultInterval
	}

	keys := DefaultKeyMap()
	m := Model{
		deps:        deps,
		keys:        keys,
		router:      NewRouter(ScreenAuth),
		authView:    authview.New(80, 24),
		todoList:    todolist.New(keys, 80, 24),
		historyView: historyview.New(keys, 80, 24),
		feedView:    feedview.New(keys, 80, 24),
		detail:      detail.New(keys, 80, 24),
		form:        todoform.New(80, 24),
		helpView:    helpview.New(keys, 80, 24),
		commandView: command.New(80, 24),
	}

	if s, ok := deps.Sessions.Restore(context.Background()); ok {
		m.session = s
		m.sched = m.newScheduler(s)
		m.router = NewRouter(ScreenTodo)
		deps.Log.Info().Str("user_name", s.Name).Msg("session restored")
	}
	return m
}

// Init starts the restored session, or the auth form.
func (m Model) Init() tea.Cmd {
	if m.session != nil {
		return m.sessionCmds(true)
	}
	return m.authView.Init()
}

// Screen returns the router state.
func (m Model) Screen() Screen {
	return m.router.State()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.authView.SetSize(w, h)
		m.todoList.SetSize(w, h)
		m.historyView.SetSize(w, h)
		m.feedView.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActive(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopScheduler()
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case authview.SubmitMsg:
		m.clearStatus()
		return m, m.authenticate(msg.Name, msg.Register)

	case authResultMsg:
		if m.router.State() != ScreenAuth {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
			cmd := m.authView.Reset()
			return m, cmd
		}
		cmd := m.beginSession(msg)
		return m, cmd

	case todosLoadedMsg:
		if !m.current(msg.seq) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.todoList.SetTodos(msg.day, msg.todos)
		if msg.genErr != nil {
			m.setError(msg.genErr)
		}
		return m, nil

	case mutationDoneMsg:
		if !m.current(msg.seq) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus(mutationStatus(msg.op))
		return m, m.loadToday(false)

	case historyLoadedMsg:
		if !m.current(msg.seq) || m.router.State() != ScreenHistory {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.historyView.SetDays(msg.days)
		return m, nil

	case feedLoadedMsg:
		if !m.current(msg.seq) || m.router.State() != ScreenPublicFeed {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.feedView.SetDays(msg.days)
		return m, nil

	case commentsLoadedMsg:
		if !m.current(msg.seq) || !m.detailShowing(msg.todoID) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.detail.SetComments(msg.comments)
		return m, nil

	case commentAddedMsg:
		if !m.current(msg.seq) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("Komentar terkirim.")
		if m.detailShowing(msg.todoID) {
			m.detail.AppendComment(*msg.comment)
		}
		return m, nil

	case rollover.RolloverMsg:
		if !m.current(msg.Seq) || m.sched == nil {
			return m, nil
		}
		if msg.Err != nil {
			m.setError(msg.Err)
		} else {
			m.setStatus("Checklist hari baru siap: " + msg.Day)
		}
		return m, tea.Batch(m.loadToday(false), m.sched.WaitForNext())

	case reminder.TickMsg:
		if !m.current(msg.Seq) {
			return m, nil
		}
		m.reminder = reminder.Pick(m.session.Name, msg.At.In(m.deps.Location), nil)
		return m, reminder.Schedule(msg.Seq, m.deps.ReminderInterval)

	case todolist.ToggleMsg:
		return m, m.toggleTodo(msg.TodoID, msg.Completed)

	case todolist.DeleteMsg:
		return m, m.deleteTodo(msg.TodoID)

	case todolist.OpenMsg:
		cmd := m.openDetail(msg.Todo.ID, func() { m.detail.SetTodo(msg.Todo, m.session.Name) })
		return m, cmd

	case todolist.AttachMsg:
		cmd := m.openForm(todoform.KindImage, msg.TodoID)
		return m, cmd

	case todolist.RemoveImageMsg:
		return m, m.removeImage(msg.TodoID)

	case historyview.BackMsg, feedview.BackMsg:
		m.router.Fire(EventBack)
		return m, nil

	case feedview.OpenMsg:
		cmd := m.openDetail(msg.Item.ID, func() { m.detail.SetTodo(msg.Item.Todo, msg.Item.UserName) })
		return m, cmd

	case detail.CloseMsg:
		m.overlay = overlayNone
		return m, nil

	case detail.CommentRequestMsg:
		cmd := m.openForm(todoform.KindComment, msg.TodoID)
		return m, cmd

	case todoform.SubmittedMsg:
		m.overlay = m.formReturn
		switch msg.Kind {
		case todoform.KindTodo:
			return m, m.addTodo(msg.Value)
		case todoform.KindComment:
			return m, m.addComment(msg.Target, msg.Value)
		case todoform.KindImage:
			return m, m.attachImage(msg.Target, msg.Value)
		}
		return m, nil

	case todoform.CancelMsg:
		m.overlay = m.formReturn
		return m, nil

	case command.CommandMsg:
		m.overlay = overlayNone
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CancelMsg:
		m.overlay = overlayNone
		return m, nil
	}

	return m.updateActive(msg)
}

// handleKey routes a key to the active overlay, then to global bindings,
// then to the current screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.overlay = overlayNone
		}
		return m, nil
	case overlayCommand, overlayForm, overlayDetail:
		return m.updateActive(msg)
	}

	if m.router.State() == ScreenAuth {
		return m.updateActive(msg)
	}

	m.clearStatus()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopScheduler()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.overlay = overlayCommand
		cmd := m.commandView.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.Logout):
		cmd := m.logout()
		return m, cmd
	}

	if m.router.State() == ScreenTodo {
		switch {
		case key.Matches(msg, m.keys.History):
			cmd := m.show(EventShowHistory)
			return m, cmd
		case key.Matches(msg, m.keys.Feed):
			cmd := m.show(EventShowPublic)
			return m, cmd
		case key.Matches(msg, m.keys.New):
			cmd := m.openForm(todoform.KindTodo, "")
			return m, cmd
		}
	}

	return m.updateActive(msg)
}

// updateActive dispatches the message to the active overlay or screen.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.overlay {
	case overlayCommand:
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	case overlayForm:
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case overlayDetail:
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch m.router.State() {
	case ScreenAuth:
		m.authView, cmd = m.authView.Update(msg)
	case ScreenTodo:
		m.todoList, cmd = m.todoList.Update(msg)
	case ScreenHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ScreenPublicFeed:
		m.feedView, cmd = m.feedView.Update(msg)
	}
	return m, cmd
}

func (m *Model) newScheduler(s *session.Session) *rollover.Scheduler {
	todos, name := m.deps.Todos, s.Name
	generate := func(ctx context.Context, day string) error {
		return todos.GenerateForDay(ctx, name, day)
	}
	opts := append([]rollover.Option{rollover.WithLocation(m.deps.Location)}, m.deps.RolloverOptions...)
	return rollover.New(s.Seq, generate, opts...)
}

// beginSession persists the authenticated user and switches to the
// checklist.
func (m *Model) beginSession(res authResultMsg) tea.Cmd {
	if !m.router.Fire(EventLogin) {
		return nil
	}
	m.session = m.deps.Sessions.Begin(context.Background(), res.user)
	m.sched = m.newScheduler(m.session)
	m.todoList.Clear()
	m.authView.SetPending(false)

	m.deps.Log.Info().
		Str("user_name", res.user.Name).
		Bool("register", res.register).
		Msg("session started")

	if res.register {
		m.setStatus("Selamat datang, " + res.user.Name + "!")
	} else {
		m.setStatus("Halo lagi, " + res.user.Name + "!")
	}
	return m.sessionCmds(false)
}

// sessionCmds loads the day and starts the session's background tasks.
func (m Model) sessionCmds(generate bool) tea.Cmd {
	return tea.Batch(
		m.loadToday(generate),
		m.sched.Start(m.session.Context()),
		reminder.Schedule(m.session.Seq, reminder.FirstDelay),
	)
}

// logout returns to the auth screen from any logged-in screen.
func (m *Model) logout() tea.Cmd {
	if m.router.State() != ScreenTodo {
		m.router.Fire(EventBack)
	}
	if !m.router.Fire(EventLogout) {
		return nil
	}

	m.stopScheduler()
	if m.session != nil {
		m.deps.Log.Info().Str("user_name", m.session.Name).Msg("session ended")
		m.deps.Sessions.End(context.Background(), m.session)
	}
	m.session = nil
	m.sched = nil
	m.overlay = overlayNone
	m.reminder = ""
	m.todoList.Clear()
	m.setStatus("Berhasil keluar.")
	return m.authView.Reset()
}

func (m *Model) stopScheduler() {
	if m.sched != nil {
		m.sched.Stop()
	}
}

// show moves to the history or feed screen and starts loading it.
func (m *Model) show(e Event) tea.Cmd {
	if m.router.State() != ScreenTodo {
		m.router.Fire(EventBack)
	}
	if !m.router.Fire(e) {
		return nil
	}
	switch e {
	case EventShowHistory:
		m.historyView.SetLoading()
		return m.loadHistory()
	case EventShowPublic:
		m.feedView.SetLoading()
		return m.loadFeed()
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	switch m.router.State() {
	case ScreenHistory:
		return m.loadHistory()
	case ScreenPublicFeed:
		return m.loadFeed()
	default:
		return m.loadToday(false)
	}
}

func (m *Model) openDetail(todoID string, set func()) tea.Cmd {
	if m.session == nil {
		return nil
	}
	set()
	m.overlay = overlayDetail
	return m.loadComments(todoID)
}

func (m *Model) openForm(kind todoform.Kind, target string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.formReturn = overlayNone
	if m.overlay == overlayDetail {
		m.formReturn = overlayDetail
	}
	m.overlay = overlayForm
	return m.form.Start(kind, target)
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case command.History:
		return m.show(EventShowHistory)
	case command.Feed:
		return m.show(EventShowPublic)
	case command.Refresh:
		return m.refresh()
	case command.Logout:
		return m.logout()
	case command.Quit:
		m.stopScheduler()
		return tea.Quit
	default:
		return nil
	}
}

// current reports whether seq belongs to the active session.
func (m Model) current(seq uint64) bool {
	return m.session != nil && m.session.Seq == seq
}

func (m Model) detailShowing(todoID string) bool {
	return m.overlay == overlayDetail && m.detail.TodoID() == todoID
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = service.UserMessage(err)
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func mutationStatus(op string) string {
	switch op {
	case "add":
		return "Todo ditambahkan."
	case "delete":
		return "Todo dihapus."
	case "attach_image":
		return "Foto terlampir."
	case "remove_image":
		return "Foto dihapus."
	default:
		return ""
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Memuat..."
	}

	right := ""
	if m.session != nil {
		right = fmt.Sprintf("%s · %s", m.session.Name, m.deps.Todos.Day())
	}
	header := m.layout.RenderHeader("Wellness Checklist", right)

	message := m.status
	if message == "" {
		message = m.reminder
	}
	statusBar := m.layout.RenderStatusBar(m.keyHints(), message, m.statusErr)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the active overlay or
// screen.
func (m Model) renderContent() string {
	switch m.overlay {
	case overlayHelp:
		return m.helpView.View()
	case overlayCommand:
		return m.commandView.View()
	case overlayForm:
		return m.form.View()
	case overlayDetail:
		return m.detail.View()
	}

	switch m.router.State() {
	case ScreenAuth:
		return m.authView.View()
	case ScreenTodo:
		return m.todoList.View()
	case ScreenHistory:
		return m.historyView.View()
	case ScreenPublicFeed:
		return m.feedView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.overlay {
	case overlayHelp:
		return "? tutup bantuan | esc kembali"
	case overlayCommand:
		return "enter jalankan | esc batal"
	case overlayForm:
		return "enter kirim | esc batal"
	case overlayDetail:
		return "c komentar | j/k gulir | esc kembali"
	}

	switch m.router.State() {
	case ScreenAuth:
		return "enter lanjut | ctrl+c keluar"
	case ScreenHistory:
		return "j/k gulir | r muat ulang | esc kembali"
	case ScreenPublicFeed:
		return "enter detail | r muat ulang | esc kembali"
	default:
		return "x selesai | n baru | i foto | h riwayat | f feed | ? bantuan"
	}
}
