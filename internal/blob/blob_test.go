package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	tests := []struct {
		ext  string
		want string
	}{
		{"png", "todo-1-1700000000123.png"},
		{".JPG", "todo-1-1700000000123.jpg"},
		{"", "todo-1-1700000000123.bin"},
	}
	for _, tt := range tests {
		if got := Key("todo-1", at, tt.ext); got != tt.want {
			t.Fatalf("Key(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8085/images/abc-1.png":       "abc-1.png",
		"http://localhost:8085/images/abc-1.png?v=2":   "abc-1.png",
		"https://cdn.example.com/todo-images/x-9.webp": "x-9.webp",
	}
	for in, want := range tests {
		if got := KeyFromURL(in); got != want {
			t.Fatalf("KeyFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateKey(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "../etc/passwd", `a\b`} {
		if err := ValidateKey(bad); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("ValidateKey(%q) = %v, want ErrInvalidKey", bad, err)
		}
	}
	if err := ValidateKey("todo-1-1.png"); err != nil {
		t.Fatalf("ValidateKey(valid) = %v", err)
	}
}

func TestFSStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(afero.NewMemMapFs(), "/images")
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}

	data := []byte("not really a png")
	if err := s.Put(ctx, "t-1.png", bytes.NewReader(data), "image/png"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rc, err := s.Open(ctx, "t-1.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || !bytes.Equal(got, data) {
		t.Fatalf("Open() read = %q, %v; want %q", got, err, data)
	}

	if err := s.Delete(ctx, "t-1.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Open(ctx, "t-1.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "t-1.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestFSStoreRejectsTraversal(t *testing.T) {
	s, err := NewFSStore(afero.NewMemMapFs(), "/images")
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	err = s.Put(context.Background(), "../escape.png", bytes.NewReader(nil), "image/png")
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Put(../escape.png) error = %v, want ErrInvalidKey", err)
	}
}

// Integration-style test: runs only if MONGO_URI is set.
func TestGridFSStoreIntegration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewGridFSStore(ctx, uri, "wellness_test", "")
	if err != nil {
		t.Fatalf("NewGridFSStore() error = %v", err)
	}
	defer s.Close(context.Background())

	key := Key("it", time.Now(), "png")
	if err := s.Put(ctx, key, bytes.NewReader([]byte("x")), "image/png"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	rc.Close()
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Open(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open(deleted) error = %v, want ErrNotFound", err)
	}
}
