// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
package components

import (
	"testing"
	"time"
)

// =============================================================================
// TRUNCATION TESTS
// =============================================================================

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world out there", 10, "hello w..."},
		{"max of three", "hello", 3, "hel"},
		{"max of one", "hello", 1, "h"},
		{"zero max", "hello", 0, ""},
		{"negative max", "hello", -1, ""},
		{"empty string", "", 5, ""},
		{"unicode aware", "héllo wörld extra", 8, "héllo..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateWithEllipsis(tc.input, tc.max)
			if got != tc.want {
				t.Errorf("truncateWithEllipsis(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
			}
		})
	}
}

// =============================================================================
// DURATION FORMATTING TESTS
// =============================================================================

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"0 seconds", 0, "0s"},
		{"5 seconds", 5 * time.Second, "5s"},
		{"30 seconds", 30 * time.Second, "30s"},
		{"59 seconds", 59 * time.Second, "59s"},
		{"1 minute", 60 * time.Second, "1m 0s"},
		{"1 minute 30 seconds", 90 * time.Second, "1m 30s"},
		{"2 minutes 45 seconds", 165 * time.Second, "2m 45s"},
		{"10 minutes", 600 * time.Second, "10m 0s"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := formatElapsed(tc.duration)
			if got != tc.want {
				t.Errorf("formatElapsed(%v) = %q, want %q", tc.duration, got, tc.want)
			}
		})
	}
}
