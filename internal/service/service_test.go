package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/nhle/wellness/internal/blob"
	"github.com/nhle/wellness/internal/history"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/service"
	"github.com/nhle/wellness/internal/store"
	"github.com/nhle/wellness/tests/testutil"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fixture struct {
	store *store.SQLiteStore
	clock *testutil.Clock
	todos *service.Todos
	auth  *service.Auth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewTestStore(t)
	clock := testutil.NewClock(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
	opts := []service.Option{service.WithNow(clock.Now), service.WithLocation(time.UTC)}
	todos := service.NewTodos(s, opts...)
	return &fixture{
		store: s,
		clock: clock,
		todos: todos,
		auth:  service.NewAuth(s, todos, opts...),
	}
}

// failingStore reports every call as a transport failure.
type failingStore struct {
	store.Store
}

var errDown = errors.New("connection refused")

func (failingStore) GetTodos(context.Context, store.TodoFilter) ([]model.Todo, error) {
	return nil, errDown
}

func (failingStore) SetTodoCompleted(context.Context, string, string, bool) error {
	return errDown
}

func (failingStore) GetUserByName(context.Context, string) (*model.User, error) {
	return nil, errDown
}

func (failingStore) GetPublicTodos(context.Context, int) ([]model.PublicTodo, error) {
	return nil, errDown
}

func TestAnaScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ana, err := f.auth.Register(ctx, "  Ana ")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if ana.Name != "Ana" {
		t.Fatalf("Register() name = %q, want trimmed %q", ana.Name, "Ana")
	}

	todos, err := f.todos.Today(ctx, ana.ID)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if len(todos) != 7 {
		t.Fatalf("len(Today()) = %d, want 7 mandatory todos", len(todos))
	}
	for _, td := range todos {
		if !td.IsMandatory || td.Completed {
			t.Fatalf("todo %q = %+v, want incomplete mandatory", td.Text, td)
		}
	}

	book, err := f.todos.AddTodo(ctx, ana.ID, "Baca buku")
	if err != nil {
		t.Fatalf("AddTodo() error = %v", err)
	}
	if book.IsMandatory || book.Date != "2026-10-16" {
		t.Fatalf("AddTodo() = %+v, want custom todo dated 2026-10-16", book)
	}

	if err := f.todos.ToggleTodo(ctx, ana.ID, book.ID, true); err != nil {
		t.Fatalf("ToggleTodo() error = %v", err)
	}

	todos, _ = f.todos.Today(ctx, ana.ID)
	stats := history.Compute(todos)
	if stats.Total != 8 || stats.Completed != 1 || stats.Percentage != 13 {
		t.Fatalf("stats = %+v, want 1/8 13%%", stats)
	}

	if _, err := f.auth.Login(ctx, "Ana"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	todos, _ = f.todos.Today(ctx, ana.ID)
	if len(todos) != 8 {
		t.Fatalf("len(Today()) after re-login = %d, want 8", len(todos))
	}
	if last := todos[len(todos)-1]; last.ID != book.ID {
		t.Fatalf("custom todo not last: got %q", last.Text)
	}
}

func TestAuthErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.auth.Login(ctx, "Nobody"); !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("Login(unknown) error = %v, want ErrUserNotFound", err)
	}
	if _, err := f.auth.Register(ctx, "Budi"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := f.auth.Register(ctx, "Budi"); !errors.Is(err, service.ErrNameTaken) {
		t.Fatalf("Register(taken) error = %v, want ErrNameTaken", err)
	}
	if _, err := f.auth.Register(ctx, "   "); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("Register(blank) error = %v, want ErrValidation", err)
	}
	if _, err := f.auth.Register(ctx, strings.Repeat("x", 65)); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("Register(long) error = %v, want ErrValidation", err)
	}
}

func TestAddTodoValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.NewTestUser(t, f.store, "Citra")

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", " \t\n"},
		{"too long", strings.Repeat("a", service.MaxTextLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.todos.AddTodo(ctx, u.ID, tt.text); !errors.Is(err, service.ErrValidation) {
				t.Fatalf("AddTodo(%q) error = %v, want ErrValidation", tt.name, err)
			}
		})
	}

	todos, _ := f.todos.ListTodos(ctx, u.ID, nil)
	if len(todos) != 0 {
		t.Fatalf("rejected input created %d todos", len(todos))
	}

	// 500 multi-byte characters is within the limit.
	if _, err := f.todos.AddTodo(ctx, u.ID, strings.Repeat("é", service.MaxTextLength)); err != nil {
		t.Fatalf("AddTodo(500 runes) error = %v", err)
	}
}

func TestToggleOnOffClearsCompletedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.NewTestUser(t, f.store, "Dewi")

	td, err := f.todos.AddTodo(ctx, u.ID, "Jalan sore")
	if err != nil {
		t.Fatalf("AddTodo() error = %v", err)
	}
	if err := f.todos.ToggleTodo(ctx, u.ID, td.ID, true); err != nil {
		t.Fatalf("ToggleTodo(true) error = %v", err)
	}
	if err := f.todos.ToggleTodo(ctx, u.ID, td.ID, false); err != nil {
		t.Fatalf("ToggleTodo(false) error = %v", err)
	}

	got, err := f.store.GetTodo(ctx, u.ID, td.ID)
	if err != nil {
		t.Fatalf("GetTodo() error = %v", err)
	}
	if got.Completed || got.CompletedAt != nil {
		t.Fatalf("GetTodo() = %+v, want incomplete with nil completed_at", got)
	}
}

func TestForeignTodoIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := testutil.NewTestUser(t, f.store, "Eka")
	other := testutil.NewTestUser(t, f.store, "Fajar")

	td, err := f.todos.AddTodo(ctx, owner.ID, "Rahasia")
	if err != nil {
		t.Fatalf("AddTodo() error = %v", err)
	}

	if err := f.todos.ToggleTodo(ctx, other.ID, td.ID, true); !errors.Is(err, service.ErrTodoNotFound) {
		t.Fatalf("ToggleTodo(foreign) error = %v, want ErrTodoNotFound", err)
	}
	if err := f.todos.DeleteTodo(ctx, other.ID, td.ID); !errors.Is(err, service.ErrTodoNotFound) {
		t.Fatalf("DeleteTodo(foreign) error = %v, want ErrTodoNotFound", err)
	}
	if err := f.todos.DeleteTodo(ctx, owner.ID, td.ID); err != nil {
		t.Fatalf("DeleteTodo(owner) error = %v", err)
	}
	if err := f.todos.DeleteTodo(ctx, owner.ID, td.ID); !errors.Is(err, service.ErrTodoNotFound) {
		t.Fatalf("DeleteTodo(again) error = %v, want ErrTodoNotFound", err)
	}
}

func TestStoreFailureIsReported(t *testing.T) {
	ctx := context.Background()
	todos := service.NewTodos(failingStore{})

	got, err := todos.ListTodos(ctx, "u", nil)
	if !errors.Is(err, service.ErrStoreUnavailable) {
		t.Fatalf("ListTodos() error = %v, want ErrStoreUnavailable", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("ListTodos() = %v, want empty non-nil slice", got)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("ListTodos() error = %q, want cause text", err)
	}

	if err := todos.ToggleTodo(ctx, "u", "t", true); !errors.Is(err, service.ErrStoreUnavailable) {
		t.Fatalf("ToggleTodo() error = %v, want ErrStoreUnavailable", err)
	}

	auth := service.NewAuth(failingStore{}, todos)
	if _, err := auth.Login(ctx, "Ana"); !errors.Is(err, service.ErrStoreUnavailable) {
		t.Fatalf("Login() error = %v, want ErrStoreUnavailable", err)
	}

	feed := service.NewFeed(failingStore{}, 0)
	if _, err := feed.Public(ctx); !errors.Is(err, service.ErrStoreUnavailable) {
		t.Fatalf("Public() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestHistoryGroupsDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u, err := f.auth.Register(ctx, "Gita")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		f.clock.Advance(24 * time.Hour)
		if err := f.todos.GenerateMandatoryTodos(ctx, u.Name); err != nil {
			t.Fatalf("GenerateMandatoryTodos() error = %v", err)
		}
	}

	days, err := f.todos.History(ctx, u.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	want := []string{"2026-10-18", "2026-10-17", "2026-10-16"}
	if len(days) != len(want) {
		t.Fatalf("len(History()) = %d, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Date != want[i] || d.Stats.Total != 7 {
			t.Fatalf("days[%d] = %s (%d todos), want %s (7)", i, d.Date, d.Stats.Total, want[i])
		}
	}
}

func TestGenerateForUnknownUser(t *testing.T) {
	f := newFixture(t)
	err := f.todos.GenerateMandatoryTodos(context.Background(), "Ghost")
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("GenerateMandatoryTodos(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.NewTestUser(t, f.store, "Hana")
	td, _ := f.todos.AddTodo(ctx, u.ID, "Yoga")

	comments := service.NewComments(f.store, service.WithNow(f.clock.Now))

	if _, err := comments.Add(ctx, td.ID, "Hana", "   "); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("Add(blank) error = %v, want ErrValidation", err)
	}
	if _, err := comments.Add(ctx, td.ID, "Hana", "  pertama  "); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	f.clock.Advance(time.Minute)
	if _, err := comments.Add(ctx, td.ID, "Budi", "kedua"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := comments.List(ctx, td.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].Comment != "pertama" || got[1].Comment != "kedua" {
		t.Fatalf("List() = %+v, want trimmed comments oldest first", got)
	}
}

func TestFeedPublic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.NewTestUser(t, f.store, "Indra")

	for _, text := range []string{"Lari", "Renang", "Belum"} {
		td, err := f.todos.AddTodo(ctx, u.ID, text)
		if err != nil {
			t.Fatalf("AddTodo() error = %v", err)
		}
		if text != "Belum" {
			if err := f.todos.ToggleTodo(ctx, u.ID, td.ID, true); err != nil {
				t.Fatalf("ToggleTodo() error = %v", err)
			}
		}
	}

	days, err := service.NewFeed(f.store, 1).Public(ctx)
	if err != nil {
		t.Fatalf("Public() error = %v", err)
	}
	if len(days) != 1 || len(days[0].Items) != 1 {
		t.Fatalf("Public() = %+v, want one day with one item", days)
	}
	if days[0].Items[0].UserName != "Indra" {
		t.Fatalf("UserName = %q, want Indra", days[0].Items[0].UserName)
	}
}

// countingBlobs records calls so tests can assert nothing was written.
type countingBlobs struct {
	blob.Store
	puts int
}

func (c *countingBlobs) Put(ctx context.Context, key string, r io.Reader, ct string) error {
	c.puts++
	return c.Store.Put(ctx, key, r, ct)
}

func newImages(t *testing.T, f *fixture, max int64) (*service.Images, *countingBlobs) {
	t.Helper()
	fs, err := blob.NewFSStore(afero.NewMemMapFs(), "/images")
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	cb := &countingBlobs{Store: fs}
	im := service.NewImages(f.store, cb, "http://localhost:8085/", max, service.WithNow(f.clock.Now))
	return im, cb
}

func TestImageValidationRunsFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	im, cb := newImages(t, f, 64)

	tests := []struct {
		name string
		up   service.Upload
	}{
		{"not an image", service.Upload{Filename: "notes.png", Data: []byte("hello, plain text")}},
		{"too large", service.Upload{Filename: "big.png", Data: append(append([]byte{}, pngHeader...), make([]byte, 64)...)}},
		{"empty", service.Upload{Filename: "empty.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := im.Attach(ctx, "nobody", "missing", tt.up); !errors.Is(err, service.ErrValidation) {
				t.Fatalf("Attach() error = %v, want ErrValidation", err)
			}
		})
	}
	if cb.puts != 0 {
		t.Fatalf("blob store touched %d times, want 0", cb.puts)
	}
}

func TestImageAttachAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	im, cb := newImages(t, f, 0)
	u := testutil.NewTestUser(t, f.store, "Joko")
	td, _ := f.todos.AddTodo(ctx, u.ID, "Masak sayur")

	url, err := im.Attach(ctx, u.ID, td.ID, service.Upload{Filename: "bukti.PNG", Data: pngHeader})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	wantURL := "http://localhost:8085/images/" + blob.Key(td.ID, f.clock.Now(), "png")
	if url != wantURL {
		t.Fatalf("Attach() = %q, want %q", url, wantURL)
	}

	got, _ := f.store.GetTodo(ctx, u.ID, td.ID)
	if !got.HasImage() || *got.ImageURL != url {
		t.Fatalf("todo image = %v, want %q", got.ImageURL, url)
	}
	if _, err := cb.Open(ctx, blob.KeyFromURL(url)); err != nil {
		t.Fatalf("blob missing after Attach(): %v", err)
	}

	if err := im.Remove(ctx, u.ID, td.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got, _ = f.store.GetTodo(ctx, u.ID, td.ID)
	if got.HasImage() {
		t.Fatalf("image_url = %v after Remove(), want nil", *got.ImageURL)
	}
	if _, err := cb.Open(ctx, blob.KeyFromURL(url)); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("blob after Remove() error = %v, want ErrNotFound", err)
	}
	if err := im.Remove(ctx, u.ID, td.ID); err != nil {
		t.Fatalf("Remove(no image) error = %v, want no-op", err)
	}
}

func TestImageReplaceDeletesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	im, cb := newImages(t, f, 0)
	u := testutil.NewTestUser(t, f.store, "Maya")
	td, _ := f.todos.AddTodo(ctx, u.ID, "Jalan pagi")

	first, err := im.Attach(ctx, u.ID, td.ID, service.Upload{Filename: "a.png", Data: pngHeader})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	f.clock.Advance(time.Second)
	second, err := im.Attach(ctx, u.ID, td.ID, service.Upload{Filename: "b.png", Data: pngHeader})
	if err != nil {
		t.Fatalf("Attach(replace) error = %v", err)
	}
	if first == second {
		t.Fatalf("Attach(replace) reused key %q", second)
	}

	if _, err := cb.Open(ctx, blob.KeyFromURL(first)); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("replaced blob error = %v, want ErrNotFound", err)
	}
	if _, err := cb.Open(ctx, blob.KeyFromURL(second)); err != nil {
		t.Fatalf("new blob missing: %v", err)
	}
}

func TestImageAttachForeignTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	im, cb := newImages(t, f, 0)
	owner := testutil.NewTestUser(t, f.store, "Kiki")
	other := testutil.NewTestUser(t, f.store, "Lina")
	td, _ := f.todos.AddTodo(ctx, owner.ID, "Meditasi")

	_, err := im.Attach(ctx, other.ID, td.ID, service.Upload{Filename: "x.png", Data: pngHeader})
	if !errors.Is(err, service.ErrTodoNotFound) {
		t.Fatalf("Attach(foreign) error = %v, want ErrTodoNotFound", err)
	}
	if cb.puts != 0 {
		t.Fatalf("blob store touched %d times for foreign todo", cb.puts)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{service.ErrUserNotFound, "daftar"},
		{service.ErrNameTaken, "masuk"},
		{service.ErrTodoNotFound, "tidak ditemukan"},
		{service.ErrStoreUnavailable, "server"},
	}
	for _, tt := range tests {
		if got := service.UserMessage(tt.err); !strings.Contains(got, tt.want) {
			t.Fatalf("UserMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}

	_, err := service.NewTodos(failingStore{}).AddTodo(context.Background(), "u", "")
	if got := service.UserMessage(err); !strings.Contains(got, "text must not be empty") {
		t.Fatalf("UserMessage(validation) = %q, want field detail", got)
	}
}
