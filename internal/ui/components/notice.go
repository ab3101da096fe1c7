// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
//
// This file implements non-blocking notice banners. Notices carry advisory
// text from the conversation controller, such as attachment validation
// results, and auto-dismiss after a few seconds without stealing focus.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thatbot/internal/ui/styles"
	"github.com/jeranaias/thatbot/internal/util"
)

// =============================================================================
// NOTICE TYPES
// =============================================================================

// DefaultNoticeDuration is how long a notice stays visible.
const DefaultNoticeDuration = 4 * time.Second

// Notice is a short-lived advisory line shown above the input area.
type Notice struct {
	ID        int
	Text      string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the notice should be dropped.
func (n *Notice) IsExpired() bool {
	return time.Since(n.CreatedAt) >= n.Duration
}

// =============================================================================
// NOTICE STACK
// =============================================================================

// NoticeStack holds the notices awaiting display, newest first.
type NoticeStack struct {
	notices []Notice
	nextID  int
	max     int
	mu      sync.Mutex
}

// NewNoticeStack creates an empty notice stack.
func NewNoticeStack() *NoticeStack {
	return &NoticeStack{
		nextID: 1,
		max:    3,
	}
}

// Add pushes a notice onto the stack and returns its id.
func (s *NoticeStack) Add(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Notice{
		ID:        s.nextID,
		Text:      text,
		CreatedAt: time.Now(),
		Duration:  DefaultNoticeDuration,
	}
	s.nextID++

	// Newest first
	s.notices = append([]Notice{n}, s.notices...)

	if len(s.notices) > s.max {
		s.notices = s.notices[:s.max]
	}

	return n.ID
}

// Tick drops expired notices and returns the remainder.
func (s *NoticeStack) Tick() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notice, 0, len(s.notices))
	for _, n := range s.notices {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notices = active

	return s.notices
}

// Active returns a copy of the current notices.
func (s *NoticeStack) Active() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Notice, len(s.notices))
	copy(result, s.notices)
	return result
}

// HasNotices returns true if any notices are pending.
func (s *NoticeStack) HasNotices() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notices) > 0
}

// Clear removes all notices.
func (s *NoticeStack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
}

// =============================================================================
// NOTICE MESSAGES
// =============================================================================

// NoticeTickMsg is sent periodically while notices are visible.
type NoticeTickMsg struct {
	Time time.Time
}

// NoticeTickCmd schedules the next notice expiry check.
func NoticeTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return NoticeTickMsg{Time: t}
	})
}

// =============================================================================
// NOTICE RENDERING
// =============================================================================

// RenderNoticeBar renders the newest notice as a full-width banner.
// Returns an empty string when there is nothing to show.
func RenderNoticeBar(notices []Notice, width int, theme *styles.Theme) string {
	if len(notices) == 0 {
		return ""
	}

	text := notices[0].Text
	if len(notices) > 1 {
		text += "  (+" + util.IntToString(len(notices)-1) + " more)"
	}

	line := styles.StatusIndicators.Warning + " " + text

	maxLine := width - 4
	if maxLine > 0 {
		line = truncateWithEllipsis(line, maxLine)
	}

	content := theme.NoticeText.Render(line)

	return theme.NoticeBar.Width(width).Render(content)
}
