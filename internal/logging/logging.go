// Package logging builds the structured logger shared by every session.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options mirrors the [log] section of the config file.
type Options struct {
	File       string
	Level      string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool

	// Verbose forces debug level and copies every record to Stderr.
	Verbose bool
	Stderr  io.Writer
}

// NewLogger returns a JSON logger writing to a rotating file. The returned
// closer flushes and closes the file.
// If Verbose == true, level = Debug, else the configured level.
func NewLogger(opts Options) (*slog.Logger, io.Closer, error) {
	level := new(slog.LevelVar)
	if opts.Verbose {
		level.Set(slog.LevelDebug)
	} else {
		l, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, err
		}
		level.Set(l)
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}
	if opts.Verbose {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, stderr)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler), closer, nil
}

// ParseLevel accepts debug, info, warn, and error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
