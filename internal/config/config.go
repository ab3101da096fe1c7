// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages thatbot configuration with TOML and JSON support.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/thatbot/internal/util"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// Config is the root configuration for thatbot
type Config struct {
	// Version of the config schema
	Version string `toml:"version" json:"version"`

	// Server holds settings for the chat server
	Server ServerConfig `toml:"server" json:"server"`

	// Backend holds settings for the client side talking to the server
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Local holds settings for the local Ollama runtime
	Local LocalConfig `toml:"local" json:"local"`

	// Uploads holds settings for image upload storage
	Uploads UploadsConfig `toml:"uploads" json:"uploads"`

	// Voice holds settings for voice input
	Voice VoiceConfig `toml:"voice" json:"voice"`

	// UI holds settings for the terminal interface
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServerConfig configures the chat server
type ServerConfig struct {
	// Host is the address the server binds to
	Host string `toml:"host" json:"host"`

	// Port is the TCP port the server listens on
	Port int `toml:"port" json:"port"`

	// RatePerMinute caps chat requests per session per minute
	RatePerMinute int `toml:"rate_per_minute" json:"rate_per_minute"`

	// RateBurst is the short-term burst allowance on top of the rate cap
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// BackendConfig configures how clients reach the chat server
type BackendConfig struct {
	// BaseURL is the server address clients talk to
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs bounds a single chat request end to end
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// HealthTimeoutSecs bounds health probes
	HealthTimeoutSecs int `toml:"health_timeout_secs" json:"health_timeout_secs"`
}

// LocalConfig configures the local Ollama runtime
type LocalConfig struct {
	// OllamaURL is the Ollama server address
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`

	// OllamaModel is the model used for chat replies
	OllamaModel string `toml:"ollama_model" json:"ollama_model"`

	// TimeoutSecs bounds a single generation request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// AutoStart launches Ollama when the server finds it not running
	AutoStart bool `toml:"auto_start" json:"auto_start"`
}

// UploadsConfig configures image upload storage
type UploadsConfig struct {
	// Dir is where uploaded images are stored. Empty means <config dir>/uploads.
	Dir string `toml:"dir" json:"dir"`

	// MaxBytes is the largest accepted upload
	MaxBytes int64 `toml:"max_bytes" json:"max_bytes"`
}

// VoiceConfig configures voice input
type VoiceConfig struct {
	// Command is an external speech-to-text command that prints a transcript
	// to stdout. Empty disables voice input.
	Command string `toml:"command" json:"command"`

	// TimeoutSecs bounds a single transcription run
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// UIConfig configures the terminal interface
type UIConfig struct {
	// Theme selects the color theme: dark, light, or auto
	Theme string `toml:"theme" json:"theme"`

	// CompactMode reduces padding in the chat view
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Host:          "127.0.0.1",
			Port:          5000,
			RatePerMinute: 30,
			RateBurst:     5,
		},
		Backend: BackendConfig{
			BaseURL:           "http://127.0.0.1:5000",
			TimeoutSecs:       120,
			HealthTimeoutSecs: 5,
		},
		Local: LocalConfig{
			OllamaURL:   "http://127.0.0.1:11434",
			OllamaModel: "llama3.2",
			TimeoutSecs: 90,
			AutoStart:   true,
		},
		Uploads: UploadsConfig{
			Dir:      "",
			MaxBytes: 10 * 1024 * 1024,
		},
		Voice: VoiceConfig{
			Command:     "",
			TimeoutSecs: 30,
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the thatbot configuration directory (~/.thatbot)
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".thatbot"), nil
}

// ConfigPathTOML returns the path to the TOML config file
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// UploadsDir returns the default directory for uploaded images
func UploadsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "uploads"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config file permissions to owner-only
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm() != 0600 {
		_ = os.Chmod(path, 0600)
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration with the standard precedence:
// config.toml, then config.json, then built-in defaults.
// Environment overrides apply on top of whichever source loaded.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(tomlPath); err == nil {
		cfg, err := LoadTOML(tomlPath)
		if err != nil {
			return nil, err
		}
		cfg.ApplyEnvOverrides()
		cfg.Migrate()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(jsonPath); err == nil {
		cfg, err := LoadJSON(jsonPath)
		if err != nil {
			return nil, err
		}
		cfg.ApplyEnvOverrides()
		cfg.Migrate()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file
func LoadTOML(path string) (*Config, error) {
	ensureSecurePermissions(path)

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.fillDefaults()
	return &cfg, nil
}

// LoadJSON loads configuration from a JSON file
func LoadJSON(path string) (*Config, error) {
	ensureSecurePermissions(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.fillDefaults()
	return &cfg, nil
}

// LoadFromPath loads configuration from an explicit path, picking the
// decoder by file extension.
func LoadFromPath(path string) (*Config, error) {
	var cfg *Config
	var err error

	switch {
	case strings.HasSuffix(path, ".toml"):
		cfg, err = LoadTOML(path)
	case strings.HasSuffix(path, ".json"):
		cfg, err = LoadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	cfg.Migrate()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults fills zero-valued fields with defaults after decoding.
// Decoders leave absent fields at their zero value, which would otherwise
// fail validation.
func (c *Config) fillDefaults() {
	def := Default()

	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.RatePerMinute == 0 {
		c.Server.RatePerMinute = def.Server.RatePerMinute
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = def.Server.RateBurst
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = def.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	if c.Backend.HealthTimeoutSecs == 0 {
		c.Backend.HealthTimeoutSecs = def.Backend.HealthTimeoutSecs
	}
	if c.Local.OllamaURL == "" {
		c.Local.OllamaURL = def.Local.OllamaURL
	}
	if c.Local.OllamaModel == "" {
		c.Local.OllamaModel = def.Local.OllamaModel
	}
	if c.Local.TimeoutSecs == 0 {
		c.Local.TimeoutSecs = def.Local.TimeoutSecs
	}
	if c.Uploads.MaxBytes == 0 {
		c.Uploads.MaxBytes = def.Uploads.MaxBytes
	}
	if c.Voice.TimeoutSecs == 0 {
		c.Voice.TimeoutSecs = def.Voice.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default TOML path
func (c *Config) Save() error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return c.SaveTOML(path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions
func (c *Config) SaveTOML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	// Re-assert permissions in case the file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	header := "# thatbot configuration file\n" +
		"# Edit by hand or use: thatbot config set <key> <value>\n\n"
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file with 0600 permissions
func (c *Config) SaveJSON(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors returns all validation problems at once
func (c *Config) ValidateErrors() []error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port),
		})
	}
	if c.Server.RatePerMinute < 1 {
		errs = append(errs, &ValidationError{
			Field:   "server.rate_per_minute",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Server.RatePerMinute),
		})
	}
	if c.Server.RateBurst < 1 {
		errs = append(errs, &ValidationError{
			Field:   "server.rate_burst",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Server.RateBurst),
		})
	}

	if err := validateURL("backend.base_url", c.Backend.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, &ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.HealthTimeoutSecs < 1 || c.Backend.HealthTimeoutSecs > 60 {
		errs = append(errs, &ValidationError{
			Field:   "backend.health_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 60, got %d", c.Backend.HealthTimeoutSecs),
		})
	}

	if err := validateURL("local.ollama_url", c.Local.OllamaURL); err != nil {
		errs = append(errs, err)
	}
	if c.Local.OllamaModel == "" {
		errs = append(errs, &ValidationError{
			Field:   "local.ollama_model",
			Message: "must not be empty",
		})
	}
	if c.Local.TimeoutSecs < 1 || c.Local.TimeoutSecs > 600 {
		errs = append(errs, &ValidationError{
			Field:   "local.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Local.TimeoutSecs),
		})
	}

	if c.Uploads.MaxBytes < 1 || c.Uploads.MaxBytes > 100*1024*1024 {
		errs = append(errs, &ValidationError{
			Field:   "uploads.max_bytes",
			Message: fmt.Sprintf("must be between 1 and 104857600, got %d", c.Uploads.MaxBytes),
		})
	}

	if c.Voice.TimeoutSecs < 1 || c.Voice.TimeoutSecs > 300 {
		errs = append(errs, &ValidationError{
			Field:   "voice.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Voice.TimeoutSecs),
		})
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, &ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be dark, light, or auto, got %q", c.UI.Theme),
		})
	}

	return errs
}

// Validate returns an error if any config field is invalid
func (c *Config) Validate() error {
	errs := c.ValidateErrors()
	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be a valid http(s) URL, got %q", raw),
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		}
	}
	return nil
}

// SetDefaults fills any remaining zero-valued fields.
// Safe to call on configs from any source.
func (c *Config) SetDefaults() {
	c.fillDefaults()
}

// Migrate normalizes values written by older releases
func (c *Config) Migrate() {
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	if c.UI.Theme == "default" {
		c.UI.Theme = "dark"
	}

	// Trailing slashes break naive URL joining
	c.Backend.BaseURL = strings.TrimSuffix(c.Backend.BaseURL, "/")
	c.Local.OllamaURL = strings.TrimSuffix(c.Local.OllamaURL, "/")
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies THATBOT_* environment variables on top of the
// loaded configuration
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("THATBOT_SERVER_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("THATBOT_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("THATBOT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("THATBOT_OLLAMA_URL"); v != "" {
		c.Local.OllamaURL = v
	}
	if v := os.Getenv("THATBOT_MODEL"); v != "" {
		c.Local.OllamaModel = v
	}
	if v := os.Getenv("THATBOT_UPLOADS_DIR"); v != "" {
		c.Uploads.Dir = v
	}
	if v := os.Getenv("THATBOT_VOICE_COMMAND"); v != "" {
		c.Voice.Command = v
	}
	if v := os.Getenv("THATBOT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// KEY ACCESS
// =============================================================================

// Get retrieves a config value by dot-notation key, e.g. "server.port"
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()

	for _, part := range parts {
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("invalid config key: %s", key)
		}

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, normalizeFieldName(part))
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
		v = field
	}

	return v.Interface(), nil
}

// Set updates a config value by dot-notation key. The string value is
// converted to the field's type.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()

	for i, part := range parts {
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("invalid config key: %s", key)
		}

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, normalizeFieldName(part))
		})
		if !field.IsValid() {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if i == len(parts)-1 {
			return setFieldValue(field, value)
		}
		v = field
	}

	return fmt.Errorf("invalid config key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to CamelCase for
// field matching
func normalizeFieldName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}

// setFieldValue converts a string to the field's type and assigns it
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field is not settable")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// GetAllKeys returns every settable dot-notation config key
func GetAllKeys() []string {
	return []string{
		"version",
		"server.host",
		"server.port",
		"server.rate_per_minute",
		"server.rate_burst",
		"backend.base_url",
		"backend.timeout_secs",
		"backend.health_timeout_secs",
		"local.ollama_url",
		"local.ollama_model",
		"local.timeout_secs",
		"local.auto_start",
		"uploads.dir",
		"uploads.max_bytes",
		"voice.command",
		"voice.timeout_secs",
		"ui.theme",
		"ui.compact_mode",
	}
}

// =============================================================================
// UTILITIES
// =============================================================================

// Clone returns a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a human-readable JSON dump of the configuration
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig *Config
	globalMu     sync.RWMutex
	globalOnce   sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
// A load failure falls back to defaults so callers always get a usable config.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalMu.Lock()
		globalConfig = cfg
		globalMu.Unlock()
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// ReloadGlobal re-reads configuration from disk and replaces the global
func ReloadGlobal() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
	return cfg, nil
}

// SetGlobal replaces the global configuration
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
}

// ResetGlobalForTesting clears global state so tests start fresh
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalConfig = nil
	globalMu.Unlock()
	globalOnce = sync.Once{}
}
