package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/nhle/wellness/internal/blob"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/session"
	"github.com/nhle/wellness/internal/store"
)

// connectTimeout bounds opening each backend at startup.
const connectTimeout = 15 * time.Second

// closers runs cleanup in reverse order of registration.
type closers []func() error

func (c *closers) add(f func() error) {
	*c = append(*c, f)
}

func (c closers) closeAll(log zerolog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			log.Warn().Err(err).Msg("cleanup failed")
		}
	}
}

func openStore(ctx context.Context, cfg model.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case model.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("store.postgres_dsn is required for the postgres driver")
		}
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return store.NewPostgresStore(ctx, cfg.PostgresDSN)
	case model.DriverSQLite, "":
		return store.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openBlobs(ctx context.Context, cfg model.ImageConfig, cl *closers) (blob.Store, error) {
	switch cfg.Backend {
	case model.ImageBackendGridFS:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		g, err := blob.NewGridFSStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		cl.add(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			return g.Close(ctx)
		})
		return g, nil
	case model.ImageBackendFS, "":
		return blob.NewFSStore(afero.NewOsFs(), cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.Backend)
	}
}

func openSessionStore(ctx context.Context, cfg model.SessionConfig, cl *closers) (session.Store, error) {
	switch cfg.Backend {
	case model.SessionBackendRedis:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		r, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Profile)
		if err != nil {
			return nil, err
		}
		cl.add(r.Close)
		return r, nil
	case model.SessionBackendFile:
		path := cfg.FilePath
		if path == "" {
			path = filepath.Join(model.ConfigDir(), "session.json")
		}
		return session.NewFileStore(afero.NewOsFs(), path), nil
	case model.SessionBackendKeyring, "":
		return session.NewKeyringStore(cfg.Profile), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// closerFunc adapts an io.Closer for the closers list.
func closerFunc(c io.Closer) func() error {
	return c.Close
}
