package service

import (
	"context"
	"strings"
	"time"

	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/store"
)

// Comments reads and appends remarks on todos.
type Comments struct {
	store store.Store
	opts  options
}

// NewComments creates a Comments service.
func NewComments(s store.Store, opts ...Option) *Comments {
	return &Comments{store: s, opts: newOptions(opts)}
}

// List returns a todo's comments, oldest first.
func (c *Comments) List(ctx context.Context, todoID string) (comments []model.Comment, err error) {
	defer func(start time.Time) { observe("list_comments", start, err) }(time.Now())

	ctx, cancel := c.opts.call(ctx)
	defer cancel()

	comments, err = c.store.GetComments(ctx, todoID)
	if err != nil {
		c.opts.log.Error().Err(err).
			Str("op", "list_comments").
			Str("todo_id", todoID).
			Msg("failed to list comments")
		return []model.Comment{}, unavailable(err)
	}
	return comments, nil
}

// Add appends a comment written by userName.
func (c *Comments) Add(ctx context.Context, todoID, userName, text string) (comment *model.Comment, err error) {
	defer func(start time.Time) { observe("add_comment", start, err) }(time.Now())

	in := commentInput{
		TodoID:   todoID,
		UserName: strings.TrimSpace(userName),
		Comment:  strings.TrimSpace(text),
	}
	if err := check(in); err != nil {
		return nil, err
	}

	comment = &model.Comment{
		TodoID:    in.TodoID,
		UserName:  in.UserName,
		Comment:   in.Comment,
		CreatedAt: c.opts.now().UTC(),
	}

	ctx, cancel := c.opts.call(ctx)
	defer cancel()

	if err := c.store.AddComment(ctx, comment); err != nil {
		c.opts.log.Error().Err(err).
			Str("op", "add_comment").
			Str("todo_id", todoID).
			Str("user_name", in.UserName).
			Msg("failed to add comment")
		return nil, unavailable(err)
	}
	return comment, nil
}
