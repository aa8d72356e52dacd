package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tuanbt/toastlog/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestNewEmbeddedLoggerWritesFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Directory = filepath.Join(t.TempDir(), "nested", "logs")

	log, cleanup, err := NewEmbeddedLogger(cfg)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	log.Info("notification recorded", "seq", 1)
	cleanup()

	data, err := os.ReadFile(filepath.Join(cfg.Log.Directory, LogFile))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"notification recorded"`) {
		t.Errorf("expected JSON log line, got %s", data)
	}
}

func TestNewConsoleLoggerRespectsLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	log := NewConsoleLogger(cfg, &buf)
	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("expected info to be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warn to be written")
	}
}
