package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "torrench.log")

	log, closer, err := NewLogger(Options{File: path, Level: "info", MaxSize: 1})
	require.NoError(t, err)

	log.With("session", "abc").Info("search started", "site", "tpb")
	log.Debug("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "search started", rec["msg"])
	assert.Equal(t, "abc", rec["session"])
	assert.Equal(t, "tpb", rec["site"])
}

func TestNewLoggerVerboseMirrorsToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torrench.log")
	var stderr bytes.Buffer

	log, closer, err := NewLogger(Options{File: path, Level: "error", Verbose: true, Stderr: &stderr})
	require.NoError(t, err)
	defer closer.Close()

	log.Debug("probe", "candidate", "https://m")

	assert.Contains(t, stderr.String(), `"msg":"probe"`)
	assert.Contains(t, stderr.String(), `"level":"DEBUG"`)
}

func TestNewLoggerWithoutFile(t *testing.T) {
	log, closer, err := NewLogger(Options{})
	require.NoError(t, err)
	require.NotNil(t, log)

	log.Info("dropped")
	assert.NoError(t, closer.Close())
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, _, err := NewLogger(Options{Level: "chatty"})
	assert.Error(t, err)
}
