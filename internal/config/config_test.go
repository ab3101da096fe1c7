// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		// Writer goroutine
		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			c.Local.OllamaModel = "test-model"
			SetGlobal(c)
		}()

		// Reader goroutine
		go func() {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	// Initialize config first
	_ = Global()

	var wg sync.WaitGroup

	// 20 reloaders, 80 readers
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// ReloadGlobal may fail if config file doesn't exist, that's ok
			_, _ = ReloadGlobal()
		}()
	}

	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_GlobalInitialization tests that Global() properly initializes
// the config on first access.
func TestConfig_GlobalInitialization(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}

	// Verify defaults are applied
	if cfg.Version == "" {
		t.Error("Config version should not be empty")
	}
	if cfg.Local.OllamaModel == "" {
		t.Error("Ollama model should not be empty")
	}
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal properly overwrites
// the existing global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	// Initialize with defaults
	_ = Global()

	// Set custom config
	customCfg := Default()
	customCfg.Version = "custom-version"
	customCfg.Local.OllamaModel = "custom-model"
	SetGlobal(customCfg)

	// Verify the custom config is returned
	result := Global()
	if result.Version != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", result.Version)
	}
	if result.Local.OllamaModel != "custom-model" {
		t.Errorf("Expected model 'custom-model', got '%s'", result.Local.OllamaModel)
	}
}

// TestConfig_ConcurrentMixedOperations tests a mix of all global operations
// happening concurrently.
func TestConfig_ConcurrentMixedOperations(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// Mix of operations: Global, SetGlobal, ReloadGlobal
	for i := 0; i < 100; i++ {
		wg.Add(1)
		switch i % 3 {
		case 0:
			// Reader
			go func() {
				defer wg.Done()
				cfg := Global()
				if cfg == nil {
					t.Error("Global() returned nil")
				}
			}()
		case 1:
			// SetGlobal writer
			go func() {
				defer wg.Done()
				c := Default()
				c.Version = "concurrent-test"
				SetGlobal(c)
			}()
		case 2:
			// ReloadGlobal
			go func() {
				defer wg.Done()
				_, _ = ReloadGlobal()
			}()
		}
	}

	wg.Wait()
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.Server.Port)
	}

	if cfg.Backend.BaseURL != "http://127.0.0.1:5000" {
		t.Errorf("Expected default base URL http://127.0.0.1:5000, got '%s'", cfg.Backend.BaseURL)
	}

	if cfg.Local.OllamaURL == "" {
		t.Error("Default config should have an Ollama URL")
	}

	if cfg.Local.OllamaModel != "llama3.2" {
		t.Errorf("Expected default model llama3.2, got '%s'", cfg.Local.OllamaModel)
	}

	if cfg.Uploads.MaxBytes != 10*1024*1024 {
		t.Errorf("Expected default upload cap 10485760, got %d", cfg.Uploads.MaxBytes)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "port zero",
			config: func() *Config {
				c := Default()
				c.Server.Port = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "port above maximum",
			config: func() *Config {
				c := Default()
				c.Server.Port = 70000
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid theme",
			config: func() *Config {
				c := Default()
				c.UI.Theme = "invalid"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "base URL without scheme",
			config: func() *Config {
				c := Default()
				c.Backend.BaseURL = "nowhere"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "base URL with non-http scheme",
			config: func() *Config {
				c := Default()
				c.Backend.BaseURL = "ftp://host:21"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "backend timeout zero",
			config: func() *Config {
				c := Default()
				c.Backend.TimeoutSecs = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "backend timeout above maximum",
			config: func() *Config {
				c := Default()
				c.Backend.TimeoutSecs = 9999
				return c
			}(),
			wantErr: true,
		},
		{
			name: "empty model",
			config: func() *Config {
				c := Default()
				c.Local.OllamaModel = ""
				return c
			}(),
			wantErr: true,
		},
		{
			name: "upload cap zero",
			config: func() *Config {
				c := Default()
				c.Uploads.MaxBytes = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "rate limit zero",
			config: func() *Config {
				c := Default()
				c.Server.RatePerMinute = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "voice timeout zero",
			config: func() *Config {
				c := Default()
				c.Voice.TimeoutSecs = 0
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_ValidateErrors tests that every problem is reported, not just
// the first one.
func TestConfig_ValidateErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.UI.Theme = "neon"
	cfg.Local.OllamaModel = ""

	errs := cfg.ValidateErrors()
	if len(errs) != 3 {
		t.Fatalf("ValidateErrors() returned %d errors, want 3: %v", len(errs), errs)
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	if !strings.Contains(err.Error(), "server.port") ||
		!strings.Contains(err.Error(), "ui.theme") ||
		!strings.Contains(err.Error(), "local.ollama_model") {
		t.Errorf("Validate() should name every bad field, got: %v", err)
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	// Test Get
	val, err := cfg.Get("server.port")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != 5000 {
		t.Errorf("Get('server.port') = %v, want 5000", val)
	}

	// Test Set on a string field
	err = cfg.Set("local.ollama_model", "mistral")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("local.ollama_model")
	if val != "mistral" {
		t.Errorf("Get('local.ollama_model') after Set = %v, want 'mistral'", val)
	}

	// Test Set with integer conversion
	err = cfg.Set("server.port", "8080")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port after Set = %d, want 8080", cfg.Server.Port)
	}

	// Test Set with int64 conversion
	err = cfg.Set("uploads.max_bytes", "5242880")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Uploads.MaxBytes != 5242880 {
		t.Errorf("Uploads.MaxBytes after Set = %d, want 5242880", cfg.Uploads.MaxBytes)
	}

	// Test Set with boolean conversion
	err = cfg.Set("ui.compact_mode", "true")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !cfg.UI.CompactMode {
		t.Error("UI.CompactMode after Set should be true")
	}

	// Test Set with a bad integer value
	if err := cfg.Set("server.port", "not-a-number"); err == nil {
		t.Error("Set() with bad integer should return error")
	}

	// Test Get with invalid key
	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
}

// TestConfig_GetAllKeys tests that every advertised key resolves.
func TestConfig_GetAllKeys(t *testing.T) {
	cfg := Default()

	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	original.Version = "original"

	clone := original.Clone()

	// Modify clone
	clone.Version = "cloned"
	clone.Server.Port = 9999

	// Verify original unchanged
	if original.Version != "original" {
		t.Error("Clone should create an independent copy")
	}
	if original.Server.Port != 5000 {
		t.Error("Clone should not share nested structs")
	}
}

// TestConfig_FillDefaults tests that absent fields are filled after decoding.
func TestConfig_FillDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 8080

	cfg.fillDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("fillDefaults should keep explicit port, got %d", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:5000" {
		t.Errorf("fillDefaults should fill base URL, got '%s'", cfg.Backend.BaseURL)
	}
	if cfg.Local.OllamaModel != "llama3.2" {
		t.Errorf("fillDefaults should fill model, got '%s'", cfg.Local.OllamaModel)
	}
	if cfg.Uploads.MaxBytes != 10*1024*1024 {
		t.Errorf("fillDefaults should fill upload cap, got %d", cfg.Uploads.MaxBytes)
	}
}

// TestConfig_Migrate tests normalization of values from older releases.
func TestConfig_Migrate(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = " Default "
	cfg.Backend.BaseURL = "http://127.0.0.1:5000/"
	cfg.Local.OllamaURL = "http://127.0.0.1:11434/"

	cfg.Migrate()

	if cfg.UI.Theme != "dark" {
		t.Errorf("Migrate should map 'default' theme to 'dark', got '%s'", cfg.UI.Theme)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:5000" {
		t.Errorf("Migrate should trim trailing slash, got '%s'", cfg.Backend.BaseURL)
	}
	if cfg.Local.OllamaURL != "http://127.0.0.1:11434" {
		t.Errorf("Migrate should trim trailing slash, got '%s'", cfg.Local.OllamaURL)
	}
}

// TestConfig_ApplyEnvOverrides tests THATBOT_* environment overrides.
func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("THATBOT_MODEL", "mistral")
	t.Setenv("THATBOT_PORT", "8080")
	t.Setenv("THATBOT_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Local.OllamaModel != "mistral" {
		t.Errorf("THATBOT_MODEL override not applied, got '%s'", cfg.Local.OllamaModel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("THATBOT_PORT override not applied, got %d", cfg.Server.Port)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("THATBOT_THEME override not applied, got '%s'", cfg.UI.Theme)
	}
}

// TestConfig_ApplyEnvOverrides_BadPort tests that an unparseable port is ignored.
func TestConfig_ApplyEnvOverrides_BadPort(t *testing.T) {
	t.Setenv("THATBOT_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.Port != 5000 {
		t.Errorf("Bad THATBOT_PORT should be ignored, got %d", cfg.Server.Port)
	}
}

// TestConfig_SaveLoadTOML tests a TOML save and load roundtrip.
func TestConfig_SaveLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Local.OllamaModel = "roundtrip-model"
	cfg.Server.Port = 5050

	if err := cfg.SaveTOML(path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	// File must be owner-only
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Config file permissions = %o, want 0600", info.Mode().Perm())
	}

	// Header comment survives encoding
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# thatbot configuration file") {
		t.Error("Saved config should start with the header comment")
	}

	loaded, err := LoadTOML(path)
	if err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}
	if loaded.Local.OllamaModel != "roundtrip-model" {
		t.Errorf("Loaded model = '%s', want 'roundtrip-model'", loaded.Local.OllamaModel)
	}
	if loaded.Server.Port != 5050 {
		t.Errorf("Loaded port = %d, want 5050", loaded.Server.Port)
	}
}

// TestConfig_SaveLoadJSON tests a JSON save and load roundtrip.
func TestConfig_SaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.UI.Theme = "light"

	if err := cfg.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Loaded theme = '%s', want 'light'", loaded.UI.Theme)
	}
	// Absent fields come back as defaults
	if loaded.Server.Port != 5000 {
		t.Errorf("Loaded port = %d, want 5000", loaded.Server.Port)
	}
}

// TestConfig_LoadTOML_FillsAbsentFields tests that a sparse file still
// produces a complete config.
func TestConfig_LoadTOML_FillsAbsentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	sparse := "[server]\nport = 6000\n"
	if err := os.WriteFile(path, []byte(sparse), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadTOML(path)
	if err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Port = %d, want 6000", cfg.Server.Port)
	}
	if cfg.Local.OllamaModel != "llama3.2" {
		t.Errorf("Absent model should default to llama3.2, got '%s'", cfg.Local.OllamaModel)
	}
}

// TestConfig_LoadFromPath_Unsupported tests rejection of unknown extensions.
func TestConfig_LoadFromPath_Unsupported(t *testing.T) {
	if _, err := LoadFromPath("/tmp/config.yaml"); err == nil {
		t.Error("LoadFromPath() with .yaml should return error")
	}
}

// TestConfig_String tests the human-readable dump.
func TestConfig_String(t *testing.T) {
	s := Default().String()

	if !strings.Contains(s, "server") {
		t.Error("String() should contain the server section")
	}
	if !strings.Contains(s, "llama3.2") {
		t.Error("String() should contain the default model")
	}
}
