// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/rigrun-chat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigrun-chat configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Reconnect ReconnectConfig `toml:"reconnect"`
	UI        UIConfig        `toml:"ui"`
	Compare   CompareConfig   `toml:"compare"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig locates the chat server.
type ServerConfig struct {
	// URL is the websocket endpoint carrying the streaming protocol.
	URL string `toml:"url"`
	// APIURL is the base of the request/response HTTP API.
	APIURL string `toml:"api_url"`
	// RequestTimeoutSecs bounds each HTTP request.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// ReconnectConfig tunes the reconnection backoff.
type ReconnectConfig struct {
	InitialDelayMs    int     `toml:"initial_delay_ms"`
	MaxDelayMs        int     `toml:"max_delay_ms"`
	Multiplier        float64 `toml:"multiplier"`
	MinDialIntervalMs int     `toml:"min_dial_interval_ms"`
}

// UIConfig contains presentation preferences.
type UIConfig struct {
	// Sidebar shows the session sidebar on startup.
	Sidebar bool `toml:"sidebar"`
	// Markdown renders finished assistant text through glamour.
	Markdown bool `toml:"markdown"`
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme"`
}

// CompareConfig contains comparison defaults.
type CompareConfig struct {
	DefaultRegion string `toml:"default_region"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
	// Path is the log file; empty means ~/.rigrun-chat/chat.log.
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:                "ws://localhost:8000/ws/chat",
			APIURL:             "http://localhost:8000",
			RequestTimeoutSecs: 60,
		},
		Reconnect: ReconnectConfig{
			InitialDelayMs:    500,
			MaxDelayMs:        15000,
			Multiplier:        2.0,
			MinDialIntervalMs: 250,
		},
		UI: UIConfig{
			Sidebar:  true,
			Markdown: true,
			Theme:    "auto",
		},
		Compare: CompareConfig{
			DefaultRegion: "Global",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// RequestTimeout returns the HTTP request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigrun-chat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigrun-chat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the log file path, resolving the default when unset.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chat.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.rigrun-chat/config.toml (and ~/.rigrun-chat/.env), falling back to defaults when the
// file does not exist. Environment overrides are applied last, then the
// result is validated.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return finish(Default())
	}
	if err := LoadEnvFile(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. Keys absent from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return finish(cfg)
}

// Parse decodes TOML text into a validated configuration.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# rigrun-chat configuration file")
	fmt.Fprintln(&buf, "# Generated by rigrun-chat - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Server
	// ==========================================================================

	if msg := checkURL(c.Server.URL, "ws", "wss"); msg != "" {
		errs = append(errs, ValidationError{Field: "server.url", Message: msg})
	}
	if msg := checkURL(c.Server.APIURL, "http", "https"); msg != "" {
		errs = append(errs, ValidationError{Field: "server.api_url", Message: msg})
	}
	if c.Server.RequestTimeoutSecs <= 0 || c.Server.RequestTimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "server.request_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Server.RequestTimeoutSecs),
		})
	}

	// ==========================================================================
	// Reconnect
	// ==========================================================================

	if c.Reconnect.InitialDelayMs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "reconnect.initial_delay_ms",
			Message: fmt.Sprintf("must be positive, got %d", c.Reconnect.InitialDelayMs),
		})
	}
	if c.Reconnect.MaxDelayMs < c.Reconnect.InitialDelayMs {
		errs = append(errs, ValidationError{
			Field:   "reconnect.max_delay_ms",
			Message: fmt.Sprintf("must be at least initial_delay_ms (%d), got %d", c.Reconnect.InitialDelayMs, c.Reconnect.MaxDelayMs),
		})
	}
	if c.Reconnect.Multiplier < 1 {
		errs = append(errs, ValidationError{
			Field:   "reconnect.multiplier",
			Message: fmt.Sprintf("must be >= 1, got %g", c.Reconnect.Multiplier),
		})
	}
	if c.Reconnect.MinDialIntervalMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "reconnect.min_dial_interval_ms",
			Message: fmt.Sprintf("must not be negative, got %d", c.Reconnect.MinDialIntervalMs),
		})
	}

	// ==========================================================================
	// UI / Log
	// ==========================================================================

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkURL(raw string, schemes ...string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return "URL has no host"
			}
			return ""
		}
	}
	return fmt.Sprintf("scheme must be one of %s, got '%s'", strings.Join(schemes, ", "), u.Scheme)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides.
//   - RIGRUN_CHAT_SERVER_URL: overrides server.url
//   - RIGRUN_CHAT_API_URL: overrides server.api_url
//   - RIGRUN_CHAT_LOG_LEVEL: overrides log.level
//   - RIGRUN_CHAT_REGION: overrides compare.default_region
//   - RIGRUN_CHAT_TIMEOUT: overrides server.request_timeout_secs
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RIGRUN_CHAT_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("RIGRUN_CHAT_API_URL"); v != "" {
		c.Server.APIURL = v
	}
	if v := os.Getenv("RIGRUN_CHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RIGRUN_CHAT_REGION"); v != "" {
		c.Compare.DefaultRegion = v
	}
	if v := os.Getenv("RIGRUN_CHAT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.RequestTimeoutSecs = secs
		}
	}
}

// Clone returns a copy of the configuration. All fields are values.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
