package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/nhle/wellness/internal/history"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/service"
)

// Every result below carries the Seq of the session that issued it.
// Results for another session are dropped.

type authResultMsg struct {
	user     *model.User
	register bool
	err      error
}

type todosLoadedMsg struct {
	seq   uint64
	day   string
	todos []model.Todo
	err   error
	// genErr is a failed checklist generation; the listing still loads.
	genErr error
}

// mutationDoneMsg reports an add, toggle, delete or image change. The day
// is reloaded after a success.
type mutationDoneMsg struct {
	seq uint64
	op  string
	err error
}

type historyLoadedMsg struct {
	seq  uint64
	days []history.Day
	err  error
}

type feedLoadedMsg struct {
	seq  uint64
	days []history.FeedDay
	err  error
}

type commentsLoadedMsg struct {
	seq      uint64
	todoID   string
	comments []model.Comment
	err      error
}

type commentAddedMsg struct {
	seq     uint64
	todoID  string
	comment *model.Comment
	err     error
}

func (m *Model) authenticate(name string, register bool) tea.Cmd {
	auth := m.deps.Auth
	return func() tea.Msg {
		ctx := context.Background()
		var (
			user *model.User
			err  error
		)
		if register {
			user, err = auth.Register(ctx, name)
		} else {
			user, err = auth.Login(ctx, name)
		}
		return authResultMsg{user: user, register: register, err: err}
	}
}

// loadToday lists the session user's todos for the current day. generate
// first ensures the mandatory rows exist, used when a session is restored.
func (m *Model) loadToday(generate bool) tea.Cmd {
	if m.session == nil {
		return nil
	}
	todos := m.deps.Todos
	seq, userID, name := m.session.Seq, m.session.UserID, m.session.Name
	return func() tea.Msg {
		ctx := context.Background()
		var genErr error
		if generate {
			genErr = todos.GenerateMandatoryTodos(ctx, name)
		}
		day := todos.Day()
		list, err := todos.ListTodos(ctx, userID, &day)
		return todosLoadedMsg{seq: seq, day: day, todos: list, err: err, genErr: genErr}
	}
}

func (m *Model) addTodo(text string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	todos := m.deps.Todos
	seq, userID := m.session.Seq, m.session.UserID
	return func() tea.Msg {
		_, err := todos.AddTodo(context.Background(), userID, text)
		return mutationDoneMsg{seq: seq, op: "add", err: err}
	}
}

func (m *Model) toggleTodo(todoID string, completed bool) tea.Cmd {
	if m.session == nil {
		return nil
	}
	todos := m.deps.Todos
	seq, userID := m.session.Seq, m.session.UserID
	return func() tea.Msg {
		err := todos.ToggleTodo(context.Background(), userID, todoID, completed)
		return mutationDoneMsg{seq: seq, op: "toggle", err: err}
	}
}

func (m *Model) deleteTodo(todoID string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	todos := m.deps.Todos
	seq, userID := m.session.Seq, m.session.UserID
	return func() tea.Msg {
		err := todos.DeleteTodo(context.Background(), userID, todoID)
		return mutationDoneMsg{seq: seq, op: "delete", err: err}
	}
}

// attachImage reads path from the configured filesystem and uploads it.
func (m *Model) attachImage(todoID, path string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	images, fs := m.deps.Images, m.deps.FS
	seq, userID := m.session.Seq, m.session.UserID
	return func() tea.Msg {
		path, err := expandHome(path)
		if err != nil {
			return mutationDoneMsg{seq: seq, op: "attach_image", err: err}
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return mutationDoneMsg{seq: seq, op: "attach_image", err: fmt.Errorf("reading image: %w", err)}
		}
		_, err = images.Attach(context.Background(), userID, todoID, service.Upload{
			Filename: filepath.Base(path),
			Data:     data,
		})
		return mutationDoneMsg{seq: seq, op: "attach_image", err: err}
	}
}

func (m *Model) removeImage(todoID string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	images := m.deps.Images
	seq, userID := m.session.Seq, m.session.UserID
	return func() tea.Msg {
		err := images.Remove(context.Background(), userID, todoID)
		return mutationDoneMsg{seq: seq, op: "remove_image", err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	if m.session == nil {
		return nil
	}
	todos := m.deps.Todos
	seq, userID := m.session.Seq, m.session.UserID
	return func() tea.Msg {
		days, err := todos.History(context.Background(), userID)
		return historyLoadedMsg{seq: seq, days: days, err: err}
	}
}

func (m *Model) loadFeed() tea.Cmd {
	if m.session == nil {
		return nil
	}
	feed := m.deps.Feed
	seq := m.session.Seq
	return func() tea.Msg {
		days, err := feed.Public(context.Background())
		return feedLoadedMsg{seq: seq, days: days, err: err}
	}
}

func (m *Model) loadComments(todoID string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	comments := m.deps.Comments
	seq := m.session.Seq
	return func() tea.Msg {
		list, err := comments.List(context.Background(), todoID)
		return commentsLoadedMsg{seq: seq, todoID: todoID, comments: list, err: err}
	}
}

func (m *Model) addComment(todoID, text string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	comments := m.deps.Comments
	seq, name := m.session.Seq, m.session.Name
	return func() tea.Msg {
		c, err := comments.Add(context.Background(), todoID, name, text)
		return commentAddedMsg{seq: seq, todoID: todoID, comment: c, err: err}
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
