// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for thatbot.
//
// Command: config [subcommand]
// Short:   View and modify configuration
// Aliases: (none)
//
// Subcommands:
//   show (default)      Display current configuration
//   set <key> <value>   Set a configuration value
//   path                Show configuration file path
//
// Examples:
//   thatbot config                            Show current config (default)
//   thatbot config show --json                Config in JSON format
//   thatbot config set backend.base_url http://127.0.0.1:5000
//   thatbot config set local.ollama_model llava
//   thatbot config set ui.theme light
//   thatbot config set ui.compact_mode on
//   thatbot config path                       Show config file location
//
// Configuration Keys (dot notation):
//   server.host             Address the serve command binds to
//   server.port             Port the serve command listens on
//   server.rate_per_minute  Chat rate limit per session
//   backend.base_url        Chat server URL the client talks to
//   backend.timeout_secs    Chat request timeout
//   local.ollama_url        Ollama server URL
//   local.ollama_model      Model used for replies
//   local.auto_start        Launch Ollama if not running (true/false)
//   uploads.dir             Where uploaded images are stored
//   uploads.max_bytes       Largest accepted upload
//   voice.command           External speech-to-text command
//   ui.theme                dark, light, or auto
//   ui.compact_mode         Reduce chat view padding (true/false)
//
// Flags:
//   --json              Output in JSON format
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/thatbot/internal/config"
)

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	if err := runConfigCommand(args); err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("config", err)
			resp.Print()
		}
		return err
	}
	return nil
}

// runConfigCommand dispatches on the config subcommand.
func runConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return handleConfigShowJSON()
		}
		return handleConfigShow()

	case "set":
		return handleConfigSet(args)

	case "path":
		if args.JSON {
			return handleConfigPathJSON()
		}
		return handleConfigPath()

	default:
		return NewValidationError("config subcommand", args.Subcommand, "must be one of: show, set, path")
	}
}

// =============================================================================
// SHOW
// =============================================================================

// handleConfigShow displays the current configuration, section by
// section, in the same layout as the TOML file.
func handleConfigShow() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s (using defaults)\n", err)
		cfg = config.Default()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("thatbot Configuration"))
	fmt.Println(RenderSeparator(41))

	fmt.Println(SectionStyle.Render("[server]"))
	printConfigRow("host:", cfg.Server.Host)
	printConfigRow("port:", strconv.Itoa(cfg.Server.Port))
	printConfigRow("rate_per_minute:", strconv.Itoa(cfg.Server.RatePerMinute))
	printConfigRow("rate_burst:", strconv.Itoa(cfg.Server.RateBurst))

	fmt.Println(SectionStyle.Render("[backend]"))
	printConfigRow("base_url:", cfg.Backend.BaseURL)
	printConfigRow("timeout_secs:", strconv.Itoa(cfg.Backend.TimeoutSecs))
	printConfigRow("health_timeout_secs:", strconv.Itoa(cfg.Backend.HealthTimeoutSecs))

	fmt.Println(SectionStyle.Render("[local]"))
	printConfigRow("ollama_url:", cfg.Local.OllamaURL)
	printConfigRow("ollama_model:", cfg.Local.OllamaModel)
	printConfigRow("timeout_secs:", strconv.Itoa(cfg.Local.TimeoutSecs))
	printConfigRow("auto_start:", strconv.FormatBool(cfg.Local.AutoStart))

	fmt.Println(SectionStyle.Render("[uploads]"))
	dir, note := effectiveUploadsDir(cfg)
	if note != "" {
		fmt.Printf("  %s%s %s\n", RenderLabel("dir:"), HighlightStyle.Render(dir), DimStyle.Render(note))
	} else {
		printConfigRow("dir:", dir)
	}
	fmt.Printf("  %s%s %s\n",
		RenderLabel("max_bytes:"),
		HighlightStyle.Render(strconv.FormatInt(cfg.Uploads.MaxBytes, 10)),
		DimStyle.Render("("+formatBytes(cfg.Uploads.MaxBytes)+")"))

	fmt.Println(SectionStyle.Render("[voice]"))
	if cfg.Voice.Command == "" {
		fmt.Printf("  %s%s\n", RenderLabel("command:"), DimStyle.Render("(not set)"))
	} else {
		printConfigRow("command:", cfg.Voice.Command)
	}
	printConfigRow("timeout_secs:", strconv.Itoa(cfg.Voice.TimeoutSecs))

	fmt.Println(SectionStyle.Render("[ui]"))
	printConfigRow("theme:", cfg.UI.Theme)
	printConfigRow("compact_mode:", strconv.FormatBool(cfg.UI.CompactMode))

	fmt.Println()
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))
	fmt.Printf("Config file: %s\n", DimStyle.Render(configFilePath()))
	fmt.Println()

	return nil
}

// handleConfigShowJSON outputs the configuration in JSON format.
func handleConfigShowJSON() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	dir, _ := effectiveUploadsDir(cfg)
	data := ConfigData{
		Server: ConfigServerInfo{
			Host:          cfg.Server.Host,
			Port:          cfg.Server.Port,
			RatePerMinute: cfg.Server.RatePerMinute,
			RateBurst:     cfg.Server.RateBurst,
		},
		Backend: ConfigBackendInfo{
			BaseURL:           cfg.Backend.BaseURL,
			TimeoutSecs:       cfg.Backend.TimeoutSecs,
			HealthTimeoutSecs: cfg.Backend.HealthTimeoutSecs,
		},
		Local: ConfigLocalInfo{
			OllamaURL:   cfg.Local.OllamaURL,
			OllamaModel: cfg.Local.OllamaModel,
			TimeoutSecs: cfg.Local.TimeoutSecs,
			AutoStart:   cfg.Local.AutoStart,
		},
		Uploads: ConfigUploadsInfo{
			Dir:      dir,
			MaxBytes: cfg.Uploads.MaxBytes,
		},
		Voice: ConfigVoiceInfo{
			Command:     cfg.Voice.Command,
			TimeoutSecs: cfg.Voice.TimeoutSecs,
		},
		UI: ConfigUIInfo{
			Theme:       cfg.UI.Theme,
			CompactMode: cfg.UI.CompactMode,
		},
		Path: configFilePath(),
	}

	resp := NewJSONResponse("config show", data)
	return resp.Print()
}

// =============================================================================
// SET
// =============================================================================

// handleConfigSet sets one configuration value and saves the file.
func handleConfigSet(args Args) error {
	key := strings.ToLower(args.ConfigKey)
	value := args.ConfigVal

	if key == "" {
		return NewValidationErrorWithExample("config key", "",
			"a key is required", "thatbot config set ui.theme light")
	}
	if value == "" {
		return NewValidationErrorWithExample("config value", "",
			fmt.Sprintf("a value for %s is required", key),
			fmt.Sprintf("thatbot config set %s <value>", key))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s (using defaults)\n", err)
		cfg = config.Default()
	}

	// Relaxed boolean forms (yes/no, on/off) are canonicalized before
	// they reach the strict field conversion
	switch key {
	case "local.auto_start", "ui.compact_mode":
		b, boolErr := ParseBoolString(value)
		if boolErr != nil {
			return NewValidationError(key, value, "must be a boolean (true/false, yes/no, on/off)")
		}
		value = strconv.FormatBool(b)
	}

	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("%w\n\nValid keys:\n  %s", err, strings.Join(config.GetAllKeys(), "\n  "))
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration value: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	// Later commands in this process should see the new value
	config.SetGlobal(cfg)

	if args.JSON {
		resp := NewJSONResponse("config set", map[string]interface{}{
			"key":   key,
			"value": value,
		})
		return resp.Print()
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, HighlightStyle.Render(value))
	return nil
}

// =============================================================================
// PATH
// =============================================================================

// handleConfigPath shows the config file path.
func handleConfigPath() error {
	path := configFilePath()
	fmt.Println(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "%s (file does not exist - will be created on first use)\n",
			DimStyle.Render("Note"))
	}

	return nil
}

// handleConfigPathJSON outputs the config path in JSON format.
func handleConfigPathJSON() error {
	path := configFilePath()
	_, err := os.Stat(path)
	exists := !os.IsNotExist(err)

	data := map[string]interface{}{
		"path":   path,
		"exists": exists,
	}

	resp := NewJSONResponse("config path", data)
	return resp.Print()
}

// =============================================================================
// HELPERS
// =============================================================================

// printConfigRow prints one key/value row in the show output.
func printConfigRow(key, value string) {
	fmt.Printf("  %s%s\n", RenderLabel(key), HighlightStyle.Render(value))
}

// configFilePath returns the TOML config path, or an empty string when
// the home directory cannot be resolved.
func configFilePath() string {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	return path
}

// effectiveUploadsDir resolves the uploads directory, noting when the
// built-in default location is in effect.
func effectiveUploadsDir(cfg *config.Config) (string, string) {
	if cfg.Uploads.Dir != "" {
		return cfg.Uploads.Dir, ""
	}
	dir, err := config.UploadsDir()
	if err != nil {
		return "", ""
	}
	return dir, "(default)"
}
