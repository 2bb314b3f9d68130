package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/nhle/wellness/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:        "user-1",
		Name:      "Ana",
		CreatedAt: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"file":    NewFileStore(afero.NewMemMapFs(), "/cfg/session.json"),
		"keyring": NewKeyringStoreWith(keyring.NewArrayKeyring(nil), "test"),
	}
}

func TestManagerBeginRestoreEnd(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			m := NewManager(store, zerolog.Nop())

			if _, ok := m.Restore(ctx); ok {
				t.Fatalf("Restore() on empty store = true, want false")
			}

			s := m.Begin(ctx, testUser())
			if s.Name != "Ana" || s.UserID != "user-1" {
				t.Fatalf("Begin() identity = %+v", s.Identity)
			}

			restored, ok := m.Restore(ctx)
			if !ok {
				t.Fatalf("Restore() = false, want persisted session")
			}
			if restored.UserID != s.UserID || restored.Name != s.Name || !restored.CreatedAt.Equal(s.CreatedAt) {
				t.Fatalf("Restore() = %+v, want %+v", restored.Identity, s.Identity)
			}
			if restored.Seq <= s.Seq {
				t.Fatalf("Restore().Seq = %d, want greater than %d", restored.Seq, s.Seq)
			}

			m.End(ctx, restored)
			if !restored.Done() {
				t.Fatalf("session context not cancelled after End()")
			}
			if _, ok := m.Restore(ctx); ok {
				t.Fatalf("Restore() after End() = true, want false")
			}
		})
	}
}

func TestRestoreCorruptDataClears(t *testing.T) {
	ctx := context.Background()
	tests := map[string][]byte{
		"not json":     []byte("{{{"),
		"missing user": []byte(`{"name":"Ana"}`),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			store := NewFileStore(fs, "/cfg/session.json")
			if err := store.Save(ctx, data); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			m := NewManager(store, zerolog.Nop())
			if _, ok := m.Restore(ctx); ok {
				t.Fatalf("Restore(%s) = true, want false", name)
			}
			if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
				t.Fatalf("Load() after corrupt restore error = %v, want ErrNoSession", err)
			}
		})
	}
}

func TestFileStoreMissing(t *testing.T) {
	store := NewFileStore(afero.NewMemMapFs(), "/nowhere/session.json")

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load() error = %v, want ErrNoSession", err)
	}
	if err := store.Clear(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Clear() error = %v, want ErrNoSession", err)
	}
}

func TestSeqIsMonotonic(t *testing.T) {
	m := NewManager(NewFileStore(afero.NewMemMapFs(), "/s.json"), zerolog.Nop())

	var last uint64
	for i := 0; i < 5; i++ {
		s := m.Begin(context.Background(), testUser())
		if s.Seq <= last {
			t.Fatalf("Seq = %d after %d, want increasing", s.Seq, last)
		}
		last = s.Seq
	}
}

// Integration-style test: runs only if REDIS_ADDR is set.
func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, addr, "", 0, "it-"+t.Name())
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()
	_ = store.Clear(ctx)

	m := NewManager(store, zerolog.Nop())
	s := m.Begin(ctx, testUser())
	if _, ok := m.Restore(ctx); !ok {
		t.Fatalf("Restore() = false, want persisted session")
	}
	m.End(ctx, s)
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load() after End() error = %v, want ErrNoSession", err)
	}
}
