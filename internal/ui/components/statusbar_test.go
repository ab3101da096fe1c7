// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/thatbot/internal/ui/styles"
)

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestNewStatusBar(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)

	if bar.Width != 80 {
		t.Errorf("NewStatusBar() Width = %d, want 80", bar.Width)
	}
	if !bar.ShowShortcuts {
		t.Error("NewStatusBar() should show shortcuts by default")
	}
	if bar.BackendUp {
		t.Error("NewStatusBar() should report the backend down until a check passes")
	}
}

func TestStatusBarSetters(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)

	bar.SetWidth(120)
	if bar.Width != 120 {
		t.Errorf("SetWidth(120) Width = %d", bar.Width)
	}

	bar.SetSession("session_1714670671042_h5cix2l9q")
	if bar.SessionID != "session_1714670671042_h5cix2l9q" {
		t.Errorf("SetSession() SessionID = %q", bar.SessionID)
	}

	bar.SetBackend("127.0.0.1:5000", true)
	if bar.BackendHost != "127.0.0.1:5000" || !bar.BackendUp {
		t.Error("SetBackend() did not record host and health")
	}

	bar.SetBusy(true)
	if !bar.Busy {
		t.Error("SetBusy(true) did not set Busy")
	}

	bar.SetListening(true)
	if !bar.Listening {
		t.Error("SetListening(true) did not set Listening")
	}

	bar.SetAttachment("cat.png")
	if bar.AttachmentName != "cat.png" {
		t.Errorf("SetAttachment() AttachmentName = %q", bar.AttachmentName)
	}

	bar.SetVoiceEnabled(true)
	if !bar.VoiceEnabled {
		t.Error("SetVoiceEnabled(true) did not set VoiceEnabled")
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestStatusBarViewNarrow(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)
	bar.SetWidth(40)
	bar.SetSession("session_1714670671042_h5cix2l9q")

	view := bar.View()
	if view == "" {
		t.Error("narrow view should not be empty")
	}
	if !strings.Contains(view, "#h5cix2l9q") {
		t.Errorf("narrow view should show the session tail, got %q", view)
	}
}

func TestStatusBarViewMedium(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)
	bar.SetWidth(80)
	bar.SetBackend("127.0.0.1:5000", true)

	view := bar.View()
	if !strings.Contains(view, "127.0.0.1:5000") {
		t.Errorf("medium view should show the backend host, got %q", view)
	}
	if !strings.Contains(view, "ready") {
		t.Errorf("medium view should show the ready state, got %q", view)
	}
}

func TestStatusBarViewWide(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)
	bar.SetWidth(120)
	bar.SetSession("session_1714670671042_h5cix2l9q")
	bar.SetBackend("127.0.0.1:5000", true)

	view := bar.View()
	if !strings.Contains(view, "127.0.0.1:5000") {
		t.Errorf("wide view should show the backend host, got %q", view)
	}
	if !strings.Contains(view, "#h5cix2l9q") {
		t.Errorf("wide view should show the session tail, got %q", view)
	}
	if !strings.Contains(view, "attach") {
		t.Errorf("wide view should show shortcut hints, got %q", view)
	}
}

func TestStatusBarBusy(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)
	bar.SetWidth(80)
	bar.SetBusy(true)

	view := bar.View()
	if !strings.Contains(view, "sending") {
		t.Errorf("busy status bar should show sending state, got %q", view)
	}
}

func TestStatusBarListening(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)
	bar.SetWidth(120)
	bar.SetListening(true)

	view := bar.View()
	if !strings.Contains(view, "LISTENING") {
		t.Errorf("listening status bar should show the badge, got %q", view)
	}
}

func TestStatusBarAttachment(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)
	bar.SetWidth(120)
	bar.SetAttachment("vacation-photo.png")

	view := bar.View()
	if !strings.Contains(view, "[img]") {
		t.Errorf("status bar should show the attachment marker, got %q", view)
	}
	if !strings.Contains(view, "vacation-photo.png") {
		t.Errorf("status bar should show the attachment name, got %q", view)
	}
}

func TestStatusBarDownBackend(t *testing.T) {
	theme := styles.NewTheme()
	bar := NewStatusBar(theme)
	bar.SetWidth(80)
	bar.SetBackend("127.0.0.1:5000", false)

	view := bar.View()
	if !strings.Contains(view, "[X]") {
		t.Errorf("down backend should show the error indicator, got %q", view)
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestSessionTail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"full session id", "session_1714670671042_h5cix2l9q", "#h5cix2l9q"},
		{"empty id", "", "#-"},
		{"no underscore", "abcd1234", "#abcd1234"},
		{"trailing underscore", "session_", "#session_"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sessionTail(tc.input); got != tc.want {
				t.Errorf("sessionTail(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
