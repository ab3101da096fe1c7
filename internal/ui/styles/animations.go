// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ThatBot TUI.
package styles

import "time"

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// LineSpinner - Simple line rotation, used for loading screens
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner - Classic three-dot animation
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// TypingSpinner - Trailing dots shown while the bot composes a reply
var TypingSpinner = SpinnerConfig{
	Frames: []string{".", "..", "...", ".."},
	FPS:    4,
}

// ListeningSpinner - Pulse shown in the status bar during voice capture
var ListeningSpinner = SpinnerConfig{
	Frames: []string{"( )", "(o)", "(O)", "(o)"},
	FPS:    8,
}

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second / 10
	}
	return time.Second / time.Duration(s.FPS)
}

// GetFrame returns the frame for the given wall-clock time. Frames advance
// at the configured FPS, so repeated calls animate without stored state.
func (s SpinnerConfig) GetFrame(t time.Time) string {
	if len(s.Frames) == 0 {
		return ""
	}
	fps := s.FPS
	if fps <= 0 {
		fps = 10
	}
	idx := int(t.UnixMilli()/int64(1000/fps)) % len(s.Frames)
	return s.Frames[idx]
}
