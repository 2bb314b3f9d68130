package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nhle/wellness/internal/model"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONOutputHasFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, model.LogConfig{Level: "info", JSON: true})

	log.Debug().Msg("hidden")
	log.Info().Str("op", "login").Msg("hello")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug filtered): %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	for _, key := range []string{"timestamp", "caller", "pid", "op"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("log entry missing %q: %v", key, entry)
		}
	}
}

func TestNewCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wellness.log")

	log, closer, err := New(model.LogConfig{Level: "info", Path: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info().Msg("started")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "started") {
		t.Fatalf("log file = %q, want message", data)
	}
}
