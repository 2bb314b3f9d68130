package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestUser registers a user with the given name.
func NewTestUser(t *testing.T, s store.Store, name string) *model.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), name)
	if err != nil {
		t.Fatalf("creating test user %q: %v", name, err)
	}
	return u
}

// Clock is a settable time source for tests.
type Clock struct {
	T time.Time
}

// NewClock returns a Clock fixed at t.
func NewClock(t time.Time) *Clock {
	return &Clock{T: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	return c.T
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
