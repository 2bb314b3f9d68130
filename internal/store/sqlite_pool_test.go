package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nhle/wellness/internal/model"
)

// newFileStore opens a file-backed store so the pool can hold more than
// one connection.
func newFileStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "wellness.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return s
}

func seedTodo(t *testing.T, s *SQLiteStore, userName, text string) (*model.User, *model.Todo) {
	t.Helper()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, userName)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	td := &model.Todo{UserID: u.ID, Text: text, Date: "2026-10-16"}
	if err := s.CreateTodo(ctx, td); err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}
	return u, td
}

func TestEveryConnectionGetsPragmas(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	conns := make([]*sql.Conn, 2)
	for i := range conns {
		c, err := s.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn() error = %v", err)
		}
		defer c.Close()
		conns[i] = c
	}

	for i, c := range conns {
		var fk, timeout int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d: PRAGMA foreign_keys error = %v", i, err)
		}
		if err := c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: PRAGMA busy_timeout error = %v", i, err)
		}
		if fk != 1 || timeout != 5000 {
			t.Fatalf("conn %d: foreign_keys = %d, busy_timeout = %d, want 1 and 5000", i, fk, timeout)
		}
	}
}

func TestDeleteTodoCascadesOnAnyConnection(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	u, td := seedTodo(t, s, "Ana", "Baca buku")

	if err := s.AddComment(ctx, &model.Comment{TodoID: td.ID, UserName: "Budi", Comment: "Mantap"}); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	// Holding a connection forces the delete onto a different one.
	held, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}
	defer held.Close()

	if err := s.DeleteTodo(ctx, u.ID, td.ID); err != nil {
		t.Fatalf("DeleteTodo() error = %v", err)
	}

	var orphans int
	if err := s.db.GetContext(ctx, &orphans, "SELECT COUNT(*) FROM todo_comments WHERE todo_id = ?", td.ID); err != nil {
		t.Fatalf("counting comments: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("comments after DeleteTodo() = %d, want 0", orphans)
	}

	err = s.AddComment(ctx, &model.Comment{TodoID: td.ID, UserName: "Budi", Comment: "Telat"})
	if err == nil {
		t.Fatalf("AddComment() on deleted todo succeeded, want foreign key error")
	}
}

func TestConcurrentMutationsWaitForLock(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	u, td := seedTodo(t, s, "Ana", "Jalan pagi")

	const rounds, writers = 5, 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		failed = append(failed, err)
		mu.Unlock()
	}

	for r := 0; r < rounds; r++ {
		for w := 0; w < writers; w++ {
			wg.Add(2)
			go func(done bool) {
				defer wg.Done()
				record(s.SetTodoCompleted(ctx, u.ID, td.ID, done))
			}(w%2 == 0)
			go func(n int) {
				defer wg.Done()
				record(s.CreateTodo(ctx, &model.Todo{
					UserID: u.ID,
					Text:   fmt.Sprintf("todo %d-%d", r, n),
					Date:   "2026-10-16",
				}))
			}(w)
		}
		wg.Wait()
	}

	if len(failed) > 0 {
		t.Fatalf("failed mutations = %d, want 0 (first: %v)", len(failed), failed[0])
	}

	todos, err := s.GetTodos(ctx, TodoFilter{UserID: u.ID})
	if err != nil {
		t.Fatalf("GetTodos() error = %v", err)
	}
	if want := 1 + rounds*writers; len(todos) != want {
		t.Fatalf("GetTodos() returned %d todos, want %d", len(todos), want)
	}
}
