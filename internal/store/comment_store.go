package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/wellness/internal/model"
)

// AddComment appends a comment to a todo. Generates a UUID if ID is empty.
func (s *SQLiteStore) AddComment(ctx context.Context, c *model.Comment) error {
	if strings.TrimSpace(c.Comment) == "" {
		return fmt.Errorf("comment must not be empty")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todo_comments (id, todo_id, user_name, comment, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TodoID, c.UserName, c.Comment, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating comment on todo %s: %w", c.TodoID, err)
	}
	return nil
}

// GetComments returns a todo's comments, oldest first.
func (s *SQLiteStore) GetComments(ctx context.Context, todoID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := s.db.SelectContext(ctx, &comments, `
		SELECT id, todo_id, user_name, comment, created_at
		FROM todo_comments
		WHERE todo_id = ?
		ORDER BY created_at ASC`,
		todoID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying comments for todo %s: %w", todoID, err)
	}
	return comments, nil
}

// GetPublicTodos returns the most recently completed todos of all users.
func (s *SQLiteStore) GetPublicTodos(ctx context.Context, limit int) ([]model.PublicTodo, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+todoColumns+", user_name FROM public_todos ORDER BY completed_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying public todos: %w", err)
	}
	defer rows.Close()

	items := []model.PublicTodo{}
	for rows.Next() {
		var userName string
		todo, err := scanTodo(rows, &userName)
		if err != nil {
			return nil, err
		}
		items = append(items, model.PublicTodo{Todo: todo, UserName: userName})
	}

	return items, rows.Err()
}
