package service

import (
	"context"
	"time"

	"github.com/nhle/wellness/internal/history"
	"github.com/nhle/wellness/internal/store"
)

// DefaultFeedLimit caps the number of public items read at once.
const DefaultFeedLimit = 100

// Feed reads other users' completed todos.
type Feed struct {
	store store.Store
	limit int
	opts  options
}

// NewFeed creates a Feed service. A non-positive limit uses
// DefaultFeedLimit.
func NewFeed(s store.Store, limit int, opts ...Option) *Feed {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &Feed{store: s, limit: limit, opts: newOptions(opts)}
}

// Public returns the most recently completed todos grouped by day.
func (f *Feed) Public(ctx context.Context) (days []history.FeedDay, err error) {
	defer func(start time.Time) { observe("public_feed", start, err) }(time.Now())

	ctx, cancel := f.opts.call(ctx)
	defer cancel()

	items, err := f.store.GetPublicTodos(ctx, f.limit)
	if err != nil {
		f.opts.log.Error().Err(err).
			Str("op", "public_feed").
			Msg("failed to read public todos")
		return nil, unavailable(err)
	}
	return history.GroupFeed(items), nil
}
