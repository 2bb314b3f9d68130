package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FSStore keeps objects as files in one directory.
type FSStore struct {
	fs  afero.Fs
	dir string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates the directory if needed and returns a store rooted
// there. Tests pass afero.NewMemMapFs().
func NewFSStore(fs afero.Fs, dir string) (*FSStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &FSStore{fs: fs, dir: dir}, nil
}

func (s *FSStore) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key), nil
}

// Put writes r to key, replacing any existing object. The content type is
// detected again on read and is not stored.
func (s *FSStore) Put(_ context.Context, key string, r io.Reader, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := afero.WriteReader(s.fs, p, r); err != nil {
		return fmt.Errorf("writing object %s: %w", key, err)
	}
	return nil
}

// Open returns a reader for key.
func (s *FSStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("opening object %s: %w", key, err)
	}
	return f, nil
}

// Delete removes key.
func (s *FSStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("object %s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}
