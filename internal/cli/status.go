// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for thatbot.
//
// Command: status
// Short:   Show session, server, and configuration status
// Aliases: s
//
// Examples:
//   thatbot status                Show current status
//   thatbot s                     Short alias
//   thatbot status --json         Status as JSON
//   thatbot status --server URL   Probe a specific chat server
//
// Status Sections:
//   Session:   Session id, session file, stored message count
//   Server:    Reachability plus the server's own health report
//   Config:    Config file path, theme, Ollama model, voice input
//
// Flags:
//   --server URL        Probe this chat server instead of the configured one
//   --json              Output in JSON format
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/thatbot/internal/backend"
	"github.com/jeranaias/thatbot/internal/config"
)

// statusProbeTimeout bounds the health and history probes so a dead
// server cannot hang the command.
const statusProbeTimeout = 5 * time.Second

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus handles the "status" command.
// It answers the three questions a user has when something is off: which
// session am I in, is the chat server up, and which configuration is in
// effect. An unreachable server is reported as a finding, not treated as
// a command failure.
func HandleStatus(args Args) error {
	data, err := collectStatus(args)
	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("status", err)
			resp.Print()
		}
		return err
	}

	if args.JSON {
		resp := NewJSONResponse("status", data)
		return resp.Print()
	}

	printStatusSections(data)
	return nil
}

// collectStatus probes the session store, the chat server, and the
// loaded configuration. Probe failures are folded into the report; only
// a broken session store aborts the command.
func collectStatus(args Args) (StatusData, error) {
	cfg := config.Global()

	baseURL := cfg.Backend.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}
	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:       baseURL,
		Timeout:       time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		HealthTimeout: time.Duration(cfg.Backend.HealthTimeoutSecs) * time.Second,
	})

	sessions := openSessionStore()
	sessionID, err := sessions.Bootstrap()
	if err != nil {
		return StatusData{}, fmt.Errorf("session bootstrap failed: %w", err)
	}

	data := StatusData{
		Session: StatusSessionInfo{
			ID:   sessionID,
			File: sessions.Path(),
		},
		Backend: StatusBackendInfo{URL: baseURL},
	}

	ctx, cancel := context.WithTimeout(context.Background(), statusProbeTimeout)
	defer cancel()

	health, healthErr := client.Health(ctx)
	if healthErr != nil {
		data.Backend.Error = healthErr.Error()
	} else {
		data.Backend.Reachable = true
		data.Backend.Status = health.Status
		data.Backend.Version = health.Version
		data.Backend.Model = health.Model
		data.Backend.Store = health.Store
		data.Backend.Ollama = health.Ollama
		data.Backend.UptimeSeconds = health.UptimeSeconds

		// Message count rides the same connection, so only ask a
		// server that just answered the health probe.
		if entries, histErr := client.History(ctx, sessionID); histErr == nil {
			data.Session.Messages = len(entries)
		}
	}

	configPath, pathErr := config.ConfigPathTOML()
	if pathErr != nil {
		configPath = "(unavailable)"
	}
	data.Config = StatusConfigInfo{
		Path:        configPath,
		Theme:       cfg.UI.Theme,
		OllamaModel: cfg.Local.OllamaModel,
		VoiceInput:  cfg.Voice.Command != "",
	}

	return data, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// printStatusSections renders the human-readable status report.
func printStatusSections(data StatusData) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("thatbot Status"))
	fmt.Println(RenderSeparator(41))

	fmt.Println(SectionStyle.Render("Session"))
	fmt.Printf("  %s%s\n", RenderLabel("ID:"), ValueStyle.Render(data.Session.ID))
	fmt.Printf("  %s%s\n", RenderLabel("File:"), DimStyle.Render(data.Session.File))
	if data.Backend.Reachable {
		fmt.Printf("  %s%s\n", RenderLabel("Messages:"), ValueStyle.Render(fmt.Sprintf("%d", data.Session.Messages)))
	}

	fmt.Println(SectionStyle.Render("Server"))
	fmt.Printf("  %s%s\n", RenderLabel("URL:"), ValueStyle.Render(data.Backend.URL))
	if !data.Backend.Reachable {
		fmt.Printf("  %s%s %s\n", RenderLabel("Reachable:"), RenderStatus("fail"), DimStyle.Render(data.Backend.Error))
		fmt.Printf("  %s\n", DimStyle.Render("Start it with: thatbot serve"))
	} else {
		fmt.Printf("  %s%s\n", RenderLabel("Reachable:"), RenderStatus("ok"))
		fmt.Printf("  %s%s\n", RenderLabel("Health:"), RenderStatus(data.Backend.Status))
		if data.Backend.Version != "" {
			fmt.Printf("  %s%s\n", RenderLabel("Version:"), ValueStyle.Render(data.Backend.Version))
		}
		if data.Backend.Model != "" {
			fmt.Printf("  %s%s\n", RenderLabel("Model:"), ValueStyle.Render(data.Backend.Model))
		}
		if data.Backend.Store != "" {
			fmt.Printf("  %s%s\n", RenderLabel("Store:"), RenderStatus(data.Backend.Store))
		}
		if data.Backend.Ollama != "" {
			fmt.Printf("  %s%s\n", RenderLabel("Ollama:"), RenderStatus(data.Backend.Ollama))
		}
		if data.Backend.UptimeSeconds > 0 {
			uptime := time.Duration(data.Backend.UptimeSeconds) * time.Second
			fmt.Printf("  %s%s\n", RenderLabel("Uptime:"), ValueStyle.Render(formatDuration(uptime)))
		}
	}

	fmt.Println(SectionStyle.Render("Config"))
	fmt.Printf("  %s%s\n", RenderLabel("File:"), DimStyle.Render(data.Config.Path))
	fmt.Printf("  %s%s\n", RenderLabel("Theme:"), ValueStyle.Render(data.Config.Theme))
	fmt.Printf("  %s%s\n", RenderLabel("Ollama model:"), ValueStyle.Render(data.Config.OllamaModel))
	if data.Config.VoiceInput {
		fmt.Printf("  %s%s\n", RenderLabel("Voice input:"), SuccessStyle.Render("enabled"))
	} else {
		fmt.Printf("  %s%s\n", RenderLabel("Voice input:"), DimStyle.Render("disabled"))
	}
	fmt.Println()
}
