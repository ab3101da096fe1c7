// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Conversation history command handler for the thatbot CLI.
//
// Handles the "thatbot history" command which prints or exports the
// stored conversation for the durable session.
//
// Command: history
// Short:   Print the stored conversation
// Aliases: hist
//
// Examples:
//   thatbot history                       Print as plain text
//   thatbot history --format md           Print as Markdown
//   thatbot history --format json         Print as a JSON transcript
//   thatbot history --format md --output .   Save to a file instead
//   thatbot history --json                Envelope output for scripting
//
// Flags:
//   --format FMT        Output format: md, json, text (default: text)
//   --output DIR        Write to a timestamped file under DIR
//   --no-metadata       Omit the session/server header from exports
//   --json              Wrap the transcript in the standard JSON envelope
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/thatbot/internal/backend"
	"github.com/jeranaias/thatbot/internal/config"
	"github.com/jeranaias/thatbot/internal/export"
)

// HandleHistoryCommand handles the "history" command.
func HandleHistoryCommand(args Args) error {
	parser := NewArgParser(args.Raw)
	cfg := config.Global()

	format := parser.FlagOrDefault("format", "text")
	outputDir := parser.Flag("output")

	opts := export.DefaultOptions()
	opts.IncludeMetadata = !parser.BoolFlag("no-metadata")

	// Resolve the exporter up front so a bad --format fails before any
	// network traffic
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("history", err)
			resp.Print()
		}
		return err
	}

	if outputDir != "" {
		abs, err := ValidateOutputPath(outputDir)
		if err != nil {
			if args.JSON {
				resp := NewJSONErrorResponse("history", err)
				resp.Print()
			}
			return fmt.Errorf("invalid output directory: %w", err)
		}
		opts.OutputDir = abs
	}

	// Build the chat server client, honoring a --server override
	baseURL := cfg.Backend.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}
	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:       baseURL,
		Timeout:       time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		HealthTimeout: time.Duration(cfg.Backend.HealthTimeoutSecs) * time.Second,
	})

	sessionID, err := openSessionStore().Bootstrap()
	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("history", err)
			resp.Print()
		}
		return fmt.Errorf("session bootstrap failed: %w", err)
	}

	ctx := context.Background()

	if err := client.CheckHealth(ctx); err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("history", err)
			resp.Print()
		}
		return fmt.Errorf("chat server is not reachable at %s (start it with: thatbot serve): %w", baseURL, err)
	}

	entries, err := client.History(ctx, sessionID)
	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("history", err)
			resp.Print()
		}
		return fmt.Errorf("history fetch failed: %w", err)
	}

	transcript := export.NewTranscript(sessionID, baseURL, entries)

	// Write to a file when an output directory was given
	var savedPath string
	if outputDir != "" {
		savedPath, err = export.WriteFile(transcript, exporter, opts)
		if err != nil {
			if args.JSON {
				resp := NewJSONErrorResponse("history", err)
				resp.Print()
			}
			return fmt.Errorf("export failed: %w", err)
		}
	}

	// JSON envelope mode for scripting
	if args.JSON {
		data := HistoryData{
			SessionID: sessionID,
			Server:    baseURL,
			Messages:  len(entries),
			Format:    format,
			Output:    savedPath,
			Entries:   entries,
		}
		resp := NewJSONResponse("history", data)
		return resp.Print()
	}

	if savedPath != "" {
		fmt.Printf("Saved %d messages to %s\n", len(entries), HighlightStyle.Render(savedPath))
		return nil
	}

	// Plain export to stdout
	data, err := exporter.Export(transcript)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	_, err = os.Stdout.Write(data)
	return err
}
