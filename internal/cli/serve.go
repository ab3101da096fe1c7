// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Chat server command handler for the thatbot CLI.
//
// Handles the "thatbot serve" command which runs the companion chat
// server the TUI, ask, chat, and history commands talk to.
//
// Command: serve
// Short:   Run the chat server
// Aliases: server
//
// Examples:
//   thatbot serve                     Listen on the configured port
//   thatbot serve --port 8080         Override the listen port
//   thatbot serve --db ./thatbot.db   Use a specific database file
//   thatbot serve --model llava       Serve replies from a specific model
//
// Flags:
//   --port N            Listen port (default from config)
//   --host ADDR         Bind address (default from config)
//   --db PATH           SQLite database path
//   --model NAME        Model used for replies (global flag)
//   -q, --quiet         Suppress the startup banner
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/thatbot/internal/config"
	"github.com/jeranaias/thatbot/internal/ollama"
	"github.com/jeranaias/thatbot/internal/server"
	"github.com/jeranaias/thatbot/internal/store"
)

// serveShutdownTimeout bounds graceful shutdown after Ctrl+C.
const serveShutdownTimeout = 10 * time.Second

// HandleServeCommand handles the "serve" command.
func HandleServeCommand(args Args) error {
	parser := NewArgParser(args.Raw)
	cfg := config.Global()

	// Listen port: flag > config
	port := cfg.Server.Port
	if v := parser.Flag("port"); v != "" {
		p, err := ParseIntWithValidation(v, "port")
		if err != nil {
			return err
		}
		port = p
	}
	if port > 65535 {
		return NewValidationError("port", fmt.Sprintf("%d", port), "must be between 1 and 65535")
	}

	host := parser.FlagOrDefault("host", cfg.Server.Host)

	// Database path: flag > default location
	dbPath := parser.Flag("db")
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultPath()
		if err != nil {
			return fmt.Errorf("cannot resolve database path: %w", err)
		}
	}

	// Uploads directory: config > default location
	uploadsDir := cfg.Uploads.Dir
	if uploadsDir == "" {
		var err error
		uploadsDir, err = config.UploadsDir()
		if err != nil {
			return fmt.Errorf("cannot resolve uploads directory: %w", err)
		}
	}

	// Reply model: global flag > config
	model := args.Model
	if model == "" {
		model = cfg.Local.OllamaModel
	}

	// Open the conversation database
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer st.Close()

	// Bring up the Ollama client. An unreachable Ollama is not fatal:
	// history and uploads still serve, chat replies fail until it is up.
	oc := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Local.OllamaURL,
		DefaultModel: model,
	})

	ctx := context.Background()
	ollamaStatus := "ok"
	if cfg.Local.AutoStart {
		if err := oc.EnsureRunning(ctx); err != nil {
			ollamaStatus = "unavailable"
		}
	} else if err := oc.CheckRunning(ctx); err != nil {
		ollamaStatus = "unavailable"
	}

	srv := server.NewServer(port).
		WithHost(host).
		WithStore(st).
		WithOllamaClient(oc).
		WithUploadsDir(uploadsDir).
		WithModel(model).
		WithChatRate(cfg.Server.RatePerMinute, cfg.Server.RateBurst).
		WithMaxUpload(cfg.Uploads.MaxBytes)

	if !args.Quiet {
		fmt.Println(TitleStyle.Render("ThatBot chat server"))
		fmt.Printf("%s %s\n", RenderLabel("Listen:"), ValueStyle.Render(fmt.Sprintf("http://%s:%d", host, port)))
		fmt.Printf("%s %s\n", RenderLabel("Database:"), ValueStyle.Render(dbPath))
		fmt.Printf("%s %s\n", RenderLabel("Uploads:"), ValueStyle.Render(uploadsDir))
		fmt.Printf("%s %s\n", RenderLabel("Model:"), ValueStyle.Render(model))
		fmt.Printf("%s %s %s\n", RenderLabel("Ollama:"), RenderStatus(ollamaStatus), ValueStyle.Render(cfg.Local.OllamaURL))
		if ollamaStatus != "ok" {
			fmt.Printf("%s\n", WarningStyle.Render("Ollama is not reachable; replies will fail until it is running"))
		}
		fmt.Println(DimStyle.Render("Press Ctrl+C to stop."))
		fmt.Println()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err

	case <-sigChan:
		StderrPrintln("")
		StderrPrintln("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}

		// Wait for Start to unwind before closing the store
		<-errCh
		return nil
	}
}
