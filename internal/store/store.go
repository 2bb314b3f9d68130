package store

import (
	"context"
	"errors"

	"github.com/nhle/wellness/internal/model"
)

var (
	// ErrNotFound is returned when a lookup or mutation matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert violates a unique constraint.
	ErrConflict = errors.New("conflict")
)

// TodoFilter controls which todos a query returns.
type TodoFilter struct {
	UserID string  // required
	Date   *string // YYYY-MM-DD or nil (all days)
}

// Store defines the persistence interface for users, todos, comments and the
// public feed. Every method that touches a todo on behalf of a user is scoped
// by that user's ID; a todo owned by someone else is reported as ErrNotFound.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// === Users ===

	CreateUser(ctx context.Context, name string) (*model.User, error)
	GetUserByName(ctx context.Context, name string) (*model.User, error)

	// === Todos ===

	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodo(ctx context.Context, userID, id string) (*model.Todo, error)
	GetTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error)
	SetTodoCompleted(ctx context.Context, userID, id string, completed bool) error
	SetTodoImage(ctx context.Context, userID, id string, imageURL *string) error
	DeleteTodo(ctx context.Context, userID, id string) error

	// GenerateMandatoryTodos inserts one mandatory todo per catalog entry for
	// the named user on day, unless mandatory todos already exist for that
	// day. It returns the number of rows inserted.
	GenerateMandatoryTodos(
		ctx context.Context,
		userName string,
		day string,
		catalog []model.CatalogEntry,
	) (int, error)

	// === Comments ===

	AddComment(ctx context.Context, c *model.Comment) error
	GetComments(ctx context.Context, todoID string) ([]model.Comment, error)

	// === Public feed ===

	GetPublicTodos(ctx context.Context, limit int) ([]model.PublicTodo, error)
}
