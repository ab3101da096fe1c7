// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ThatBot TUI.
package styles

import (
	"testing"
	"time"
)

// =============================================================================
// SPINNER CONFIG TESTS
// =============================================================================

func TestSpinnerConfigDuration(t *testing.T) {
	tests := []struct {
		name string
		fps  int
		want time.Duration
	}{
		{"10fps", 10, 100 * time.Millisecond},
		{"4fps", 4, 250 * time.Millisecond},
		{"zero falls back", 0, 100 * time.Millisecond},
		{"negative falls back", -5, 100 * time.Millisecond},
	}

	for _, tc := range tests {
		s := SpinnerConfig{Frames: []string{"|"}, FPS: tc.fps}
		if got := s.Duration(); got != tc.want {
			t.Errorf("%s: Duration() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSpinnerConfigGetFrame(t *testing.T) {
	s := LineSpinner

	frame := s.GetFrame(time.Now())
	found := false
	for _, f := range s.Frames {
		if f == frame {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("GetFrame() = %q, not one of the configured frames", frame)
	}
}

func TestSpinnerConfigGetFrameAdvances(t *testing.T) {
	s := SpinnerConfig{Frames: []string{"a", "b"}, FPS: 10}

	base := time.UnixMilli(0)
	first := s.GetFrame(base)
	second := s.GetFrame(base.Add(100 * time.Millisecond))

	if first == second {
		t.Errorf("GetFrame() did not advance: %q then %q", first, second)
	}
}

func TestSpinnerConfigGetFrameEmpty(t *testing.T) {
	s := SpinnerConfig{}
	if got := s.GetFrame(time.Now()); got != "" {
		t.Errorf("GetFrame() with no frames = %q, want empty", got)
	}
}

func TestPredefinedSpinnersHaveFrames(t *testing.T) {
	spinners := []struct {
		name    string
		spinner SpinnerConfig
	}{
		{"LineSpinner", LineSpinner},
		{"DotsSpinner", DotsSpinner},
		{"TypingSpinner", TypingSpinner},
		{"ListeningSpinner", ListeningSpinner},
	}

	for _, s := range spinners {
		if len(s.spinner.Frames) == 0 {
			t.Errorf("%s has no frames", s.name)
		}
		if s.spinner.FPS <= 0 {
			t.Errorf("%s has FPS %d, want > 0", s.name, s.spinner.FPS)
		}
		for _, f := range s.spinner.Frames {
			for _, r := range f {
				if r > 127 {
					t.Errorf("%s frame %q contains non-ASCII rune", s.name, f)
				}
			}
		}
	}
}
