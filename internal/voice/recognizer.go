// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice provides speech-to-text capture for the chat composer.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnavailable indicates no transcriber command is configured
	ErrUnavailable = errors.New("voice input is not configured")

	// ErrAlreadyListening indicates a capture session is already running
	ErrAlreadyListening = errors.New("voice capture already running")

	// ErrNotListening indicates Stop was called without a running capture
	ErrNotListening = errors.New("no voice capture running")
)

// =============================================================================
// RECOGNIZER INTERFACE
// =============================================================================

// Recognizer captures speech and turns it into text for the composer.
type Recognizer interface {
	// Available reports whether voice capture can actually run
	Available() bool

	// Start begins a capture session
	Start() error

	// Stop ends the capture session and returns the transcript
	Stop() (string, error)

	// Listening reports whether a capture session is active
	Listening() bool
}

// New returns a Recognizer for the configured transcriber command.
// An empty command yields a NullRecognizer, so callers can toggle voice
// unconditionally and get a quiet no-op when nothing is configured.
func New(command string, timeout time.Duration) Recognizer {
	if strings.TrimSpace(command) == "" {
		return NullRecognizer{}
	}
	return NewExecRecognizer(command, timeout)
}

// =============================================================================
// NULL RECOGNIZER
// =============================================================================

// NullRecognizer is the no-op Recognizer used when voice input is not
// configured. Every operation fails with ErrUnavailable and no state changes.
type NullRecognizer struct{}

func (NullRecognizer) Available() bool { return false }

func (NullRecognizer) Start() error { return ErrUnavailable }

func (NullRecognizer) Stop() (string, error) { return "", ErrUnavailable }

func (NullRecognizer) Listening() bool { return false }

// =============================================================================
// EXEC RECOGNIZER
// =============================================================================

// ExecRecognizer runs an external speech-to-text command and reads the
// transcript from its stdout. Works with one-shot transcribers that exit on
// silence as well as streaming ones that run until interrupted.
type ExecRecognizer struct {
	command string
	timeout time.Duration

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout *bytes.Buffer
	cancel context.CancelFunc
	done   chan error
}

// NewExecRecognizer creates a Recognizer that shells out to command.
// The command string is split on whitespace; the first field is the
// executable and the rest are arguments.
func NewExecRecognizer(command string, timeout time.Duration) *ExecRecognizer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExecRecognizer{
		command: command,
		timeout: timeout,
	}
}

// Available reports whether a transcriber command is configured
func (r *ExecRecognizer) Available() bool {
	return strings.TrimSpace(r.command) != ""
}

// Listening reports whether a capture session is active
func (r *ExecRecognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Start launches the transcriber process and begins collecting stdout
func (r *ExecRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return ErrAlreadyListening
	}

	parts := strings.Fields(r.command)
	if len(parts) == 0 {
		return ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	// Only stdout is the transcript. Transcribers tend to chatter progress
	// on stderr, which must not end up in the composer.
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start transcriber %q: %w", parts[0], err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	r.cmd = cmd
	r.stdout = &stdout
	r.cancel = cancel
	r.done = done
	return nil
}

// Stop ends the capture session and returns whatever transcript the
// transcriber produced. A transcriber that failed mid-run yields an empty
// transcript rather than an error; the capture slot is freed either way.
func (r *ExecRecognizer) Stop() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return "", ErrNotListening
	}

	select {
	case <-r.done:
		// Transcriber already exited on its own (one-shot mode or silence
		// detection). The transcript is complete.
	default:
		// Ask it to finish. Interrupt is not implemented on Windows, so
		// fall back to Kill there.
		if err := r.cmd.Process.Signal(os.Interrupt); err != nil {
			_ = r.cmd.Process.Kill()
		}
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			_ = r.cmd.Process.Kill()
			<-r.done
		}
	}

	r.cancel()

	transcript := strings.TrimSpace(r.stdout.String())

	r.cmd = nil
	r.stdout = nil
	r.cancel = nil
	r.done = nil
	return transcript, nil
}
