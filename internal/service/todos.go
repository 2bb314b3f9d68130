// Package service implements the checklist operations on top of a Store:
// todo CRUD, mandatory generation, login and registration, comments,
// proof images and the public feed.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nhle/wellness/internal/history"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/store"
)

// Todos is the todo repository for one data store.
type Todos struct {
	store store.Store
	opts  options
}

// NewTodos creates a Todos service.
func NewTodos(s store.Store, opts ...Option) *Todos {
	return &Todos{store: s, opts: newOptions(opts)}
}

// Day returns the current calendar day in the configured location.
func (t *Todos) Day() string {
	return model.DayOf(t.opts.now(), t.opts.loc)
}

// ListTodos returns a user's todos, mandatory first then oldest first.
// A nil date lists every day. On failure the slice is empty, never nil.
func (t *Todos) ListTodos(ctx context.Context, userID string, date *string) (todos []model.Todo, err error) {
	defer func(start time.Time) { observe("list_todos", start, err) }(time.Now())

	ctx, cancel := t.opts.call(ctx)
	defer cancel()

	todos, err = t.store.GetTodos(ctx, store.TodoFilter{UserID: userID, Date: date})
	if err != nil {
		t.opts.log.Error().Err(err).
			Str("op", "list_todos").
			Str("user_id", userID).
			Msg("failed to list todos")
		return []model.Todo{}, unavailable(err)
	}
	return todos, nil
}

// Today lists the user's todos for the current day.
func (t *Todos) Today(ctx context.Context, userID string) ([]model.Todo, error) {
	day := t.Day()
	return t.ListTodos(ctx, userID, &day)
}

// AddTodo creates a custom, uncompleted todo for today.
func (t *Todos) AddTodo(ctx context.Context, userID, text string) (todo *model.Todo, err error) {
	defer func(start time.Time) { observe("add_todo", start, err) }(time.Now())

	text = strings.TrimSpace(text)
	if err := check(todoInput{Text: text}); err != nil {
		return nil, err
	}

	todo = &model.Todo{
		UserID: userID,
		Text:   text,
		Date:   t.Day(),
	}

	ctx, cancel := t.opts.call(ctx)
	defer cancel()

	if err := t.store.CreateTodo(ctx, todo); err != nil {
		t.opts.log.Error().Err(err).
			Str("op", "add_todo").
			Str("user_id", userID).
			Msg("failed to create todo")
		return nil, unavailable(err)
	}
	return todo, nil
}

// ToggleTodo sets a todo's completion state and stamps or clears its
// completion time.
func (t *Todos) ToggleTodo(ctx context.Context, userID, todoID string, completed bool) (err error) {
	defer func(start time.Time) { observe("toggle_todo", start, err) }(time.Now())

	ctx, cancel := t.opts.call(ctx)
	defer cancel()

	err = t.store.SetTodoCompleted(ctx, userID, todoID, completed)
	return t.todoErr("toggle_todo", userID, todoID, err)
}

// DeleteTodo removes a todo permanently.
func (t *Todos) DeleteTodo(ctx context.Context, userID, todoID string) (err error) {
	defer func(start time.Time) { observe("delete_todo", start, err) }(time.Now())

	ctx, cancel := t.opts.call(ctx)
	defer cancel()

	err = t.store.DeleteTodo(ctx, userID, todoID)
	return t.todoErr("delete_todo", userID, todoID, err)
}

// GenerateMandatoryTodos ensures the named user has today's mandatory
// checklist. It is a no-op when the rows already exist.
func (t *Todos) GenerateMandatoryTodos(ctx context.Context, userName string) error {
	return t.GenerateForDay(ctx, userName, t.Day())
}

// GenerateForDay ensures the named user has the mandatory checklist for day.
func (t *Todos) GenerateForDay(ctx context.Context, userName, day string) (err error) {
	defer func(start time.Time) { observe("generate_mandatory", start, err) }(time.Now())

	ctx, cancel := t.opts.call(ctx)
	defer cancel()

	n, err := t.store.GenerateMandatoryTodos(ctx, userName, day, model.MandatoryCatalog())
	if err != nil {
		t.opts.log.Error().Err(err).
			Str("op", "generate_mandatory").
			Str("user_name", userName).
			Str("date", day).
			Msg("failed to generate mandatory todos")
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return unavailable(err)
	}
	if n > 0 {
		t.opts.log.Info().
			Str("user_name", userName).
			Str("date", day).
			Int("count", n).
			Msg("generated mandatory todos")
	}
	return nil
}

// History returns every day of the user's todos, most recent first.
func (t *Todos) History(ctx context.Context, userID string) ([]history.Day, error) {
	todos, err := t.ListTodos(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return history.Group(todos), nil
}

func (t *Todos) todoErr(op, userID, todoID string, err error) error {
	if err == nil {
		return nil
	}
	t.opts.log.Error().Err(err).
		Str("op", op).
		Str("user_id", userID).
		Str("todo_id", todoID).
		Msg("todo operation failed")
	if errors.Is(err, store.ErrNotFound) {
		return ErrTodoNotFound
	}
	return unavailable(err)
}
