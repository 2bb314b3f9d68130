// Package logging builds the application logger. The TUI owns stdout, so
// logs always go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/wellness/internal/model"
)

// New opens cfg.Path for appending and returns a logger writing to it,
// along with the file so the caller can close it on exit.
func New(cfg model.LogConfig) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}
	return NewWithWriter(f, cfg), f, nil
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(w io.Writer, cfg model.LogConfig) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	if !cfg.JSON {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.DateTime,
		}
	}

	return zerolog.New(w).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// mean info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
