package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/wellness/internal/model"
)

// mandatorySpacing separates the created_at stamps of generated rows so that
// created_at ordering reproduces catalog order.
const mandatorySpacing = time.Millisecond

// CreateTodo inserts a new todo. Generates a UUID if ID is empty and stamps
// CreatedAt if it is zero. Date must already be set.
func (s *SQLiteStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (
			id, user_id, text, is_mandatory, completed, date,
			created_at, completed_at, image_url, catalog_key
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.UserID, todo.Text,
		boolToInt(todo.IsMandatory), boolToInt(todo.Completed), todo.Date,
		todo.CreatedAt, todo.CompletedAt, todo.ImageURL, todo.CatalogKey,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating todo: %w", ErrConflict)
		}
		return fmt.Errorf("creating todo: %w", err)
	}
	return nil
}

// GetTodo retrieves a single todo owned by userID.
func (s *SQLiteStore) GetTodo(ctx context.Context, userID, id string) (*model.Todo, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = ? AND user_id = ?",
		id, userID,
	)

	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &todo, nil
}

// GetTodos retrieves a user's todos, mandatory first, then by creation time.
func (s *SQLiteStore) GetTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error) {
	query, args := buildTodoQuery(filter)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}

	return todos, rows.Err()
}

// buildTodoQuery builds the SELECT for GetTodos.
func buildTodoQuery(filter TodoFilter) (string, []interface{}) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}

	if filter.Date != nil {
		conditions = append(conditions, "date = ?")
		args = append(args, *filter.Date)
	}

	query := "SELECT " + todoColumns + " FROM todos WHERE " +
		strings.Join(conditions, " AND ") +
		" ORDER BY is_mandatory DESC, created_at ASC"

	return query, args
}

// SetTodoCompleted sets the completion flag and stamps or clears
// completed_at in a single statement.
func (s *SQLiteStore) SetTodoCompleted(
	ctx context.Context,
	userID, id string,
	completed bool,
) error {
	var completedAt *time.Time
	if completed {
		now := time.Now().UTC()
		completedAt = &now
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE todos SET completed = ?, completed_at = ? WHERE id = ? AND user_id = ?",
		boolToInt(completed), completedAt, id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %s: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetTodoImage attaches or clears the proof image URL.
func (s *SQLiteStore) SetTodoImage(
	ctx context.Context,
	userID, id string,
	imageURL *string,
) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE todos SET image_url = ? WHERE id = ? AND user_id = ?",
		imageURL, id, userID,
	)
	if err != nil {
		return fmt.Errorf("setting image for todo %s: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTodo removes a todo by ID. Cascades to its comments.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// GenerateMandatoryTodos inserts the catalog rows for userName on day inside
// one transaction. Existing mandatory rows for the day make it a no-op; the
// unique (user_id, date, catalog_key) index absorbs concurrent callers.
func (s *SQLiteStore) GenerateMandatoryTodos(
	ctx context.Context,
	userName string,
	day string,
	catalog []model.CatalogEntry,
) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.GetContext(ctx, &userID, "SELECT id FROM users WHERE name = ?", userName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %q: %w", userName, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up user %q: %w", userName, err)
	}

	var existing int
	err = tx.GetContext(ctx, &existing,
		"SELECT COUNT(*) FROM todos WHERE user_id = ? AND date = ? AND is_mandatory = 1",
		userID, day,
	)
	if err != nil {
		return 0, fmt.Errorf("counting mandatory todos: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR IGNORE INTO todos (
			id, user_id, text, is_mandatory, completed, date,
			created_at, catalog_key
		) VALUES (?, ?, ?, 1, 0, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing mandatory insert: %w", err)
	}
	defer stmt.Close()

	base := time.Now().UTC()
	inserted := 0
	for i, entry := range catalog {
		result, err := stmt.ExecContext(ctx,
			uuid.New().String(), userID, entry.Text, day,
			base.Add(time.Duration(i)*mandatorySpacing), entry.Key,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting mandatory todo %s: %w", entry.Key, err)
		}
		n, _ := result.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing mandatory todos: %w", err)
	}
	return inserted, nil
}
