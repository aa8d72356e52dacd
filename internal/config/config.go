// Package config handles loading and validation of toastlog configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Interception strategies and passive scopes.
const (
	StrategyActive  = "active"
	StrategyPassive = "passive"

	ScopeApp   = "app"
	ScopeInbox = "inbox"
)

// Environment variables that override file values.
const (
	EnvLogLevel   = "TOASTLOG_LOG_LEVEL"
	EnvStrategy   = "TOASTLOG_STRATEGY"
	EnvScope      = "TOASTLOG_SCOPE"
	EnvIngestAddr = "TOASTLOG_INGEST_ADDR"
	EnvJWTSecret  = "TOASTLOG_JWT_SECRET"
)

// Config represents the toastlog configuration.
type Config struct {
	Log          LogConfig          `json:"log" yaml:"log"`
	Toast        ToastConfig        `json:"toast" yaml:"toast"`
	Interception InterceptionConfig `json:"interception" yaml:"interception"`
	Inbox        InboxConfig        `json:"inbox" yaml:"inbox"`
	Spool        SpoolConfig        `json:"spool" yaml:"spool"`
	Ingest       IngestConfig       `json:"ingest" yaml:"ingest"`
	Archive      ArchiveConfig      `json:"archive" yaml:"archive"`
}

// LogConfig controls the slog output.
type LogConfig struct {
	// Directory is where toastlog.log is written.
	Directory string `json:"directory" yaml:"directory"`
	// Level sets the logging verbosity (debug, info, warn, error).
	Level string `json:"level" yaml:"level"`
}

// ToastConfig controls the toaster.
type ToastConfig struct {
	DurationSeconds int `json:"duration_seconds" yaml:"duration_seconds"`
	MaxVisible      int `json:"max_visible" yaml:"max_visible"`
}

// Duration returns DurationSeconds as a time.Duration.
func (t ToastConfig) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}

// InterceptionConfig selects how emissions reach the notification log.
type InterceptionConfig struct {
	// Strategy is "active" (wrapper) or "passive" (patched table).
	Strategy string `json:"strategy" yaml:"strategy"`
	// Scope is what a passive session is bound to: "app" or "inbox".
	Scope string `json:"scope" yaml:"scope"`
}

// InboxConfig controls the inbox panel.
type InboxConfig struct {
	// Buffer is the update subscription buffer.
	Buffer int `json:"buffer" yaml:"buffer"`
}

// SpoolConfig controls the spool directory watcher.
type SpoolConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Directory string `json:"directory" yaml:"directory"`
}

// IngestConfig controls the HTTP ingest server.
type IngestConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	Address         string  `json:"address" yaml:"address"`
	JWTSecret       string  `json:"jwt_secret" yaml:"jwt_secret"`
	KeyHash         string  `json:"key_hash" yaml:"key_hash"`
	TokenTTLSeconds int     `json:"token_ttl_seconds" yaml:"token_ttl_seconds"`
	RatePerSecond   float64 `json:"rate_per_second" yaml:"rate_per_second"`
	Burst           int     `json:"burst" yaml:"burst"`
}

// TokenTTL returns TokenTTLSeconds as a time.Duration.
func (i IngestConfig) TokenTTL() time.Duration {
	return time.Duration(i.TokenTTLSeconds) * time.Second
}

// ArchiveConfig controls the JSON export of the notification log.
type ArchiveConfig struct {
	File   string `json:"file" yaml:"file"`
	OnExit bool   `json:"on_exit" yaml:"on_exit"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Directory: "./logs",
			Level:     "info",
		},
		Toast: ToastConfig{
			DurationSeconds: 4,
			MaxVisible:      3,
		},
		Interception: InterceptionConfig{
			Strategy: StrategyActive,
			Scope:    ScopeApp,
		},
		Inbox: InboxConfig{
			Buffer: 64,
		},
		Spool: SpoolConfig{
			Enabled:   false,
			Directory: "./spool",
		},
		Ingest: IngestConfig{
			Enabled:         false,
			Address:         "127.0.0.1:7878",
			TokenTTLSeconds: 3600,
			RatePerSecond:   5,
			Burst:           10,
		},
		Archive: ArchiveConfig{
			File:   "notifications.json",
			OnExit: false,
		},
	}
}

// Load reads configuration from a YAML (.yaml, .yml) or JSON file and
// applies environment overrides.
// If the file doesn't exist, it returns DefaultConfig with overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err == nil {
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

// applyEnv overrides file values with TOASTLOG_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStrategy); v != "" {
		c.Interception.Strategy = strings.ToLower(v)
	}
	if v := os.Getenv(EnvScope); v != "" {
		c.Interception.Scope = strings.ToLower(v)
	}
	if v := os.Getenv(EnvIngestAddr); v != "" {
		c.Ingest.Address = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Ingest.JWTSecret = v
	}
}

// applyDefaults fills in default values for any fields that are zero/empty.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Log.Directory == "" {
		c.Log.Directory = defaults.Log.Directory
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Toast.DurationSeconds <= 0 {
		c.Toast.DurationSeconds = defaults.Toast.DurationSeconds
	}
	if c.Toast.MaxVisible <= 0 {
		c.Toast.MaxVisible = defaults.Toast.MaxVisible
	}
	if c.Interception.Strategy == "" {
		c.Interception.Strategy = defaults.Interception.Strategy
	}
	if c.Interception.Scope == "" {
		c.Interception.Scope = defaults.Interception.Scope
	}
	if c.Inbox.Buffer <= 0 {
		c.Inbox.Buffer = defaults.Inbox.Buffer
	}
	if c.Spool.Directory == "" {
		c.Spool.Directory = defaults.Spool.Directory
	}
	if c.Ingest.Address == "" {
		c.Ingest.Address = defaults.Ingest.Address
	}
	if c.Ingest.TokenTTLSeconds <= 0 {
		c.Ingest.TokenTTLSeconds = defaults.Ingest.TokenTTLSeconds
	}
	if c.Ingest.RatePerSecond <= 0 {
		c.Ingest.RatePerSecond = defaults.Ingest.RatePerSecond
	}
	if c.Ingest.Burst <= 0 {
		c.Ingest.Burst = defaults.Ingest.Burst
	}
	if c.Archive.File == "" {
		c.Archive.File = defaults.Archive.File
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	switch c.Interception.Strategy {
	case StrategyActive, StrategyPassive:
	default:
		return fmt.Errorf("invalid interception.strategy: %s (must be active or passive)", c.Interception.Strategy)
	}

	switch c.Interception.Scope {
	case ScopeApp, ScopeInbox:
	default:
		return fmt.Errorf("invalid interception.scope: %s (must be app or inbox)", c.Interception.Scope)
	}

	if c.Toast.DurationSeconds < 1 {
		return fmt.Errorf("toast.duration_seconds must be at least 1, got %d", c.Toast.DurationSeconds)
	}
	if c.Toast.MaxVisible > 10 {
		return fmt.Errorf("toast.max_visible should not exceed 10, got %d", c.Toast.MaxVisible)
	}

	if c.Ingest.Enabled {
		if c.Ingest.JWTSecret == "" {
			return fmt.Errorf("ingest.jwt_secret is required when ingest is enabled")
		}
		if len(c.Ingest.JWTSecret) < 16 {
			return fmt.Errorf("ingest.jwt_secret must be at least 16 characters")
		}
		if c.Ingest.KeyHash == "" {
			return fmt.Errorf("ingest.key_hash is required when ingest is enabled")
		}
	}

	return nil
}

// Save writes the configuration to path, as YAML or JSON by extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
