package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/store"
)

// Auth resolves users by name. Names are the only credential.
type Auth struct {
	store store.Store
	todos *Todos
	opts  options
}

// NewAuth creates an Auth service. todos is used to generate the day's
// mandatory checklist after a successful login or registration.
func NewAuth(s store.Store, todos *Todos, opts ...Option) *Auth {
	return &Auth{store: s, todos: todos, opts: newOptions(opts)}
}

// Login looks up an existing user by name.
func (a *Auth) Login(ctx context.Context, name string) (user *model.User, err error) {
	defer func(start time.Time) { observe("login", start, err) }(time.Now())

	name = strings.TrimSpace(name)
	if err := check(nameInput{Name: name}); err != nil {
		return nil, err
	}

	lookupCtx, cancel := a.opts.call(ctx)
	user, err = a.store.GetUserByName(lookupCtx, name)
	cancel()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		a.opts.log.Error().Err(err).
			Str("op", "login").
			Str("user_name", name).
			Msg("failed to look up user")
		return nil, unavailable(err)
	}

	a.ensureChecklist(ctx, user)
	return user, nil
}

// Register creates a new user with a unique name.
func (a *Auth) Register(ctx context.Context, name string) (user *model.User, err error) {
	defer func(start time.Time) { observe("register", start, err) }(time.Now())

	name = strings.TrimSpace(name)
	if err := check(nameInput{Name: name}); err != nil {
		return nil, err
	}

	createCtx, cancel := a.opts.call(ctx)
	user, err = a.store.CreateUser(createCtx, name)
	cancel()
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrNameTaken
		}
		a.opts.log.Error().Err(err).
			Str("op", "register").
			Str("user_name", name).
			Msg("failed to create user")
		return nil, unavailable(err)
	}

	a.ensureChecklist(ctx, user)
	return user, nil
}

// ensureChecklist generates today's mandatory todos. A failure is logged by
// Todos and does not fail the login.
func (a *Auth) ensureChecklist(ctx context.Context, user *model.User) {
	if a.todos == nil {
		return
	}
	_ = a.todos.GenerateMandatoryTodos(ctx, user.Name)
}
