package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nhle/wellness/internal/blob"
	"github.com/nhle/wellness/internal/store"
)

// DefaultMaxImageBytes is the upload size limit.
const DefaultMaxImageBytes = 5 << 20

// Upload is an image chosen by the user.
type Upload struct {
	Filename string
	Data     []byte
}

// Images attaches proof photos to todos.
type Images struct {
	store    store.Store
	blobs    blob.Store
	baseURL  string
	maxBytes int64
	opts     options
}

// NewImages creates an Images service. Public URLs are built as
// baseURL + "/images/" + key.
func NewImages(s store.Store, blobs blob.Store, baseURL string, maxBytes int64, opts ...Option) *Images {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Images{
		store:    s,
		blobs:    blobs,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		opts:     newOptions(opts),
	}
}

// URL returns the public URL of an object key.
func (im *Images) URL(key string) string {
	return im.baseURL + "/images/" + key
}

// Validate checks the size and detected type of an upload and returns the
// detected MIME type.
func (im *Images) Validate(up Upload) (*mimetype.MIME, error) {
	if len(up.Data) == 0 {
		return nil, invalid("file is empty")
	}
	if int64(len(up.Data)) > im.maxBytes {
		return nil, invalid("file is larger than %d MB", im.maxBytes>>20)
	}
	mt := mimetype.Detect(up.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, invalid("file must be an image, got %s", mt.String())
	}
	return mt, nil
}

// Attach stores an image and links it to the todo. It returns the
// public URL.
func (im *Images) Attach(ctx context.Context, userID, todoID string, up Upload) (url string, err error) {
	defer func(start time.Time) { observe("attach_image", start, err) }(time.Now())

	mt, err := im.Validate(up)
	if err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(filepath.Ext(up.Filename), ".")
	if ext == "" {
		ext = mt.Extension()
	}
	key := blob.Key(todoID, im.opts.now(), ext)

	ctx, cancel := im.opts.call(ctx)
	defer cancel()

	// The todo must belong to the user before anything is written.
	prev, err := im.store.GetTodo(ctx, userID, todoID)
	if err != nil {
		return "", im.todoErr("attach_image", userID, todoID, err)
	}

	if err := im.blobs.Put(ctx, key, bytes.NewReader(up.Data), mt.String()); err != nil {
		im.opts.log.Error().Err(err).
			Str("op", "attach_image").
			Str("todo_id", todoID).
			Str("key", key).
			Msg("failed to upload image")
		return "", unavailable(err)
	}

	url = im.URL(key)
	if err := im.store.SetTodoImage(ctx, userID, todoID, &url); err != nil {
		if derr := im.blobs.Delete(ctx, key); derr != nil {
			im.opts.log.Warn().Err(derr).Str("key", key).Msg("failed to remove orphaned image")
		}
		return "", im.todoErr("attach_image", userID, todoID, err)
	}

	// The replaced image is unreachable once the row points elsewhere.
	if prev.HasImage() {
		if old := blob.KeyFromURL(*prev.ImageURL); old != key {
			if derr := im.blobs.Delete(ctx, old); derr != nil && !errors.Is(derr, blob.ErrNotFound) {
				im.opts.log.Warn().Err(derr).Str("key", old).Msg("failed to remove replaced image")
			}
		}
	}
	return url, nil
}

// Remove deletes the todo's image and clears its URL. It is a no-op for a
// todo without an image.
func (im *Images) Remove(ctx context.Context, userID, todoID string) (err error) {
	defer func(start time.Time) { observe("remove_image", start, err) }(time.Now())

	ctx, cancel := im.opts.call(ctx)
	defer cancel()

	todo, err := im.store.GetTodo(ctx, userID, todoID)
	if err != nil {
		return im.todoErr("remove_image", userID, todoID, err)
	}
	if !todo.HasImage() {
		return nil
	}

	key := blob.KeyFromURL(*todo.ImageURL)
	if err := im.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
		im.opts.log.Error().Err(err).
			Str("op", "remove_image").
			Str("todo_id", todoID).
			Str("key", key).
			Msg("failed to delete image")
		return unavailable(err)
	}

	if err := im.store.SetTodoImage(ctx, userID, todoID, nil); err != nil {
		return im.todoErr("remove_image", userID, todoID, err)
	}
	return nil
}

func (im *Images) todoErr(op, userID, todoID string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrTodoNotFound
	}
	im.opts.log.Error().Err(err).
		Str("op", op).
		Str("user_id", userID).
		Str("todo_id", todoID).
		Msg("image operation failed")
	return unavailable(err)
}
