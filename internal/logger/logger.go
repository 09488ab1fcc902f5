// =============================================================================
// Preston RPA - Logging Setup
// =============================================================================

// Package logger configures the process-wide zerolog channels: a console
// writer for the operator and an append-only JSON file that persists every
// run event. The file handle is opened once at run start and passed by
// reference; nothing logs through ambient globals.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New creates the console logger used for operator-facing output.
func New(level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger()
}

// NewWithWriter creates a logger with a custom writer, used by tests.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// OpenRunLog opens the append-only run log file, creating parent directories
// as needed, and returns a logger writing JSON lines to it together with the
// file handle. The caller owns the handle and closes it at run end.
func OpenRunLog(path, level string) (zerolog.Logger, *os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log := zerolog.New(f).Level(parseLevel(level)).With().Timestamp().Logger()
	return log, f, nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
