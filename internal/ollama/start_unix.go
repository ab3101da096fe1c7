// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// findOllamaExecutable searches for ollama in common installation paths on Unix.
func findOllamaExecutable() (string, error) {
	// First, check if ollama is in PATH
	if path, err := exec.LookPath("ollama"); err == nil {
		return path, nil
	}

	// Common Ollama installation paths on Unix/macOS
	possiblePaths := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/ollama/ollama",
	}

	// User home directory locations
	if home := os.Getenv("HOME"); home != "" {
		possiblePaths = append(possiblePaths,
			filepath.Join(home, ".local", "bin", "ollama"),
			filepath.Join(home, "bin", "ollama"),
		)
	}

	// macOS application bundle location
	possiblePaths = append(possiblePaths,
		"/Applications/Ollama.app/Contents/Resources/ollama",
	)

	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("ollama not found in PATH or common installation directories. " +
		"Please ensure Ollama is installed. Checked: PATH, /usr/local/bin, /usr/bin, ~/.local/bin")
}

// startOllamaProcess starts the Ollama server on Unix/macOS.
// The child runs in its own process group and keeps running after we exit.
func (c *Client) startOllamaProcess(ctx context.Context) error {
	ollamaPath, err := findOllamaExecutable()
	if err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "failed to find Ollama executable",
			Cause:   err,
		}
	}

	cmd := exec.Command(ollamaPath, "serve")

	// Pass environment variables through so OLLAMA_* settings reach the child
	cmd.Env = os.Environ()

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	// Don't capture output - let it run independently
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: fmt.Sprintf("failed to start Ollama (path: %s)", ollamaPath),
			Cause:   err,
		}
	}

	// Release the process so it continues running after we exit
	if cmd.Process != nil {
		if err := cmd.Process.Release(); err != nil {
			// Non-fatal: process started but release failed
		}
	}

	log.Printf("OLLAMA_STARTING | path=%s", ollamaPath)

	// Wait for Ollama to become ready (poll for up to 10 seconds)
	deadline := time.Now().Add(10 * time.Second)
	startTime := time.Now()
	var lastErr error

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return &ClientError{
				Type:    ErrTypeConnection,
				Message: "Ollama startup cancelled",
				Cause:   ctx.Err(),
			}
		default:
		}

		checkCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		lastErr = c.CheckRunning(checkCtx)
		cancel()

		if lastErr == nil {
			log.Printf("OLLAMA_READY | elapsed=%.1fs", time.Since(startTime).Seconds())
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}

	return &ClientError{
		Type:    ErrTypeConnection,
		Message: fmt.Sprintf("Ollama started but not responding after 10 seconds (path: %s)", ollamaPath),
		Cause:   lastErr,
	}
}
