// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for thatbot.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation, and live reload when the file
// changes on disk.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Chat server bind address and rate limits
//   - LocalConfig: Ollama URL, model, and auto-start behavior
//   - Watcher: Reloads the global config when the file changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (THATBOT_*)
//   - ~/.thatbot/config.toml
//   - ~/.thatbot/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Local.OllamaModel
//	port := cfg.Server.Port
package config
