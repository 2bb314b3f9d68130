package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhle/wellness/internal/model"
)

// PostgresStore implements the Store interface on a Postgres pool. Mandatory
// todo generation runs server-side in the generate_mandatory_todos function.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to dsn, verifies the connection, and runs any
// pending schema migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging postgres: %w", err)
	}
	return nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		"CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)")
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var currentVersion int
	err = s.pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version",
	).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range pgMigrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// pgErrorCode returns the SQLSTATE of a Postgres error, or "".
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const (
	pgUniqueViolation = "23505"
	pgNoDataFound     = "P0002"
)

// CreateUser inserts a user with the given unique name.
func (s *PostgresStore) CreateUser(ctx context.Context, name string) (*model.User, error) {
	u := model.User{ID: uuid.New().String(), Name: name}

	err := s.pool.QueryRow(ctx,
		"INSERT INTO users (id, name) VALUES ($1, $2) RETURNING created_at",
		u.ID, u.Name,
	).Scan(&u.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("creating user %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("creating user %q: %w", name, err)
	}
	return &u, nil
}

// GetUserByName looks up a user by exact name.
func (s *PostgresStore) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, created_at FROM users WHERE name = $1", name,
	).Scan(&u.ID, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", name, err)
	}
	return &u, nil
}

// scanPgTodo scans a todo row selected with todoColumns.
func scanPgTodo(row pgx.Row, extra ...any) (model.Todo, error) {
	var todo model.Todo
	dest := []any{
		&todo.ID, &todo.UserID, &todo.Text, &todo.IsMandatory, &todo.Completed, &todo.Date,
		&todo.CreatedAt, &todo.CompletedAt, &todo.ImageURL, &todo.CatalogKey,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return model.Todo{}, fmt.Errorf("scanning todo row: %w", err)
	}
	return todo, nil
}

// CreateTodo inserts a new todo. Generates a UUID if ID is empty.
func (s *PostgresStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	if strings.TrimSpace(todo.Text) == "" {
		return fmt.Errorf("todo text must not be empty")
	}
	if todo.Date == "" {
		return fmt.Errorf("todo date must not be empty")
	}
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC()
	}
	if !todo.Completed {
		todo.CompletedAt = nil
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO todos (
			id, user_id, text, is_mandatory, completed, date,
			created_at, completed_at, image_url, catalog_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		todo.ID, todo.UserID, todo.Text, todo.IsMandatory, todo.Completed, todo.Date,
		todo.CreatedAt, todo.CompletedAt, todo.ImageURL, todo.CatalogKey,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("creating todo: %w", ErrConflict)
		}
		return fmt.Errorf("creating todo: %w", err)
	}
	return nil
}

// GetTodo retrieves a single todo owned by userID.
func (s *PostgresStore) GetTodo(ctx context.Context, userID, id string) (*model.Todo, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	todo, err := scanPgTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &todo, nil
}

// GetTodos retrieves a user's todos, mandatory first, then by creation time.
func (s *PostgresStore) GetTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE user_id = $1"
	args := []any{filter.UserID}
	if filter.Date != nil {
		query += " AND date = $2"
		args = append(args, *filter.Date)
	}
	query += " ORDER BY is_mandatory DESC, created_at ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanPgTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// SetTodoCompleted sets the completion flag and stamps or clears completed_at.
func (s *PostgresStore) SetTodoCompleted(ctx context.Context, userID, id string, completed bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE todos
		SET completed = $1,
		    completed_at = CASE WHEN $1 THEN now() ELSE NULL END
		WHERE id = $2 AND user_id = $3`,
		completed, id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetTodoImage attaches or clears the proof image URL.
func (s *PostgresStore) SetTodoImage(ctx context.Context, userID, id string, imageURL *string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE todos SET image_url = $1 WHERE id = $2 AND user_id = $3",
		imageURL, id, userID,
	)
	if err != nil {
		return fmt.Errorf("setting image for todo %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTodo removes a todo by ID. Cascades to its comments.
func (s *PostgresStore) DeleteTodo(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM todos WHERE id = $1 AND user_id = $2", id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// GenerateMandatoryTodos calls the server-side generation function.
func (s *PostgresStore) GenerateMandatoryTodos(
	ctx context.Context,
	userName string,
	day string,
	catalog []model.CatalogEntry,
) (int, error) {
	keys := make([]string, len(catalog))
	texts := make([]string, len(catalog))
	for i, entry := range catalog {
		keys[i] = entry.Key
		texts[i] = entry.Text
	}

	var inserted int
	err := s.pool.QueryRow(ctx,
		"SELECT generate_mandatory_todos($1, $2, $3, $4)",
		userName, day, keys, texts,
	).Scan(&inserted)
	if err != nil {
		if pgErrorCode(err) == pgNoDataFound {
			return 0, fmt.Errorf("user %q: %w", userName, ErrNotFound)
		}
		return 0, fmt.Errorf("generating mandatory todos: %w", err)
	}
	return inserted, nil
}

// AddComment appends a comment to a todo.
func (s *PostgresStore) AddComment(ctx context.Context, c *model.Comment) error {
	if strings.TrimSpace(c.Comment) == "" {
		return fmt.Errorf("comment must not be empty")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO todo_comments (id, todo_id, user_name, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.TodoID, c.UserName, c.Comment, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating comment on todo %s: %w", c.TodoID, err)
	}
	return nil
}

// GetComments returns a todo's comments, oldest first.
func (s *PostgresStore) GetComments(ctx context.Context, todoID string) ([]model.Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, todo_id, user_name, comment, created_at
		FROM todo_comments
		WHERE todo_id = $1
		ORDER BY created_at ASC`,
		todoID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying comments for todo %s: %w", todoID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.TodoID, &c.UserName, &c.Comment, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetPublicTodos returns the most recently completed todos of all users.
func (s *PostgresStore) GetPublicTodos(ctx context.Context, limit int) ([]model.PublicTodo, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+todoColumns+", user_name FROM public_todos ORDER BY completed_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying public todos: %w", err)
	}
	defer rows.Close()

	items := []model.PublicTodo{}
	for rows.Next() {
		var userName string
		todo, err := scanPgTodo(rows, &userName)
		if err != nil {
			return nil, err
		}
		items = append(items, model.PublicTodo{Todo: todo, UserName: userName})
	}
	return items, rows.Err()
}
