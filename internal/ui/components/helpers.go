// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
package components

import (
	"time"

	"github.com/jeranaias/thatbot/internal/util"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// truncateWithEllipsis shortens s to at most max runes, appending "..."
// when text was cut. Handles Unicode text where len() would count bytes.
func truncateWithEllipsis(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// formatElapsed formats a duration for timer display.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return util.IntToString(seconds) + "s"
	}
	minutes := seconds / 60
	secs := seconds % 60
	return util.IntToString(minutes) + "m " + util.IntToString(secs) + "s"
}
