// thatbot - terminal chat client for ThatBot.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thatbot/internal/backend"
	"github.com/jeranaias/thatbot/internal/cli"
	"github.com/jeranaias/thatbot/internal/config"
	"github.com/jeranaias/thatbot/internal/controller"
	"github.com/jeranaias/thatbot/internal/session"
	"github.com/jeranaias/thatbot/internal/ui/chat"
	"github.com/jeranaias/thatbot/internal/ui/styles"
	"github.com/jeranaias/thatbot/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// Parse CLI arguments
	cmd, args := cli.Parse()

	// Route to appropriate handler
	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdServe:
		cli.HandleServe(args)
	case cli.CmdHistory:
		cli.HandleHistory(args)
	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(cli.GetExitCode(err))
		}
	case cli.CmdStatus:
		if err := cli.HandleStatus(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(cli.GetExitCode(err))
		}
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	case cli.CmdUnknown:
		if err := cli.HandleUnknown(args); err != nil {
			os.Exit(cli.ExitUsageError)
		}
	default:
		runTUI(args) // Default to TUI
	}
}

// runTUI starts the TUI interface.
func runTUI(args cli.Args) {
	// Load configuration at startup
	cfg := config.Global()

	// Initialize the theme (dark, light, or auto from config)
	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	// Resolve the chat server URL (CLI flag overrides config)
	baseURL := cfg.Backend.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:       baseURL,
		Timeout:       time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		HealthTimeout: time.Duration(cfg.Backend.HealthTimeoutSecs) * time.Second,
	})

	// Durable session store, with a temp-dir fallback when the home
	// directory is unavailable
	sessions, err := session.NewStore()
	if err != nil {
		sessions = session.NewStoreAt(filepath.Join(os.TempDir(), "thatbot_session.json"))
	}

	// Voice input through the configured transcriber command, if any
	recognizer := voice.New(cfg.Voice.Command, time.Duration(cfg.Voice.TimeoutSecs)*time.Second)

	// The controller owns the conversation; the chat model renders it
	ctrl := controller.New(controller.Options{
		Sessions:   sessions,
		Backend:    client,
		Recognizer: recognizer,
	})

	m := chat.NewWithHost(ctrl, theme, displayHost(baseURL))

	// Create the Bubble Tea program
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	// Run the program
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running thatbot: %v\n", err)
		os.Exit(1)
	}
}

// displayHost reduces a base URL to the host form shown in the status bar.
func displayHost(baseURL string) string {
	host := strings.TrimPrefix(baseURL, "http://")
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimSuffix(host, "/")
}
