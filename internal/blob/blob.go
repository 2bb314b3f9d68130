// Package blob stores proof images as named binary objects.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that could escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// Store is a flat namespace of binary objects.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Key names the object for a todo's image uploaded at t. ext may be given
// with or without its leading dot.
func Key(todoID string, t time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s-%d.%s", todoID, t.UnixMilli(), ext)
}

// KeyFromURL returns the last path element of a public image URL.
func KeyFromURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return path.Base(url)
}

// ValidateKey rejects empty keys and keys containing path separators.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
