// Package logger provides structured logging for toastlog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuanbt/toastlog/internal/config"
)

// LogFile is the name of the embedded log inside the log directory.
const LogFile = "toastlog.log"

// NewEmbeddedLogger creates a logger that ONLY writes to file (for TUI embedding).
// Returns the logger and a cleanup function to close the file.
func NewEmbeddedLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := ParseLevel(cfg.Log.Level)

	// Ensure log directory exists
	if err := os.MkdirAll(cfg.Log.Directory, 0755); err != nil {
		return nil, nil, err
	}

	logPath := filepath.Join(cfg.Log.Directory, LogFile)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	// File ONLY, the terminal belongs to the TUI
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
	})

	cleanup := func() { file.Close() }
	return slog.New(handler).With("component", "tui"), cleanup, nil
}

// NewConsoleLogger creates a simple console-only logger writing to w.
func NewConsoleLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Log.Level)

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
