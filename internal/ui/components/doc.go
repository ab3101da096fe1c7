// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the ThatBot TUI.

This package contains a collection of styled components built on top of the
Bubble Tea and Lip Gloss libraries. Each component is designed to be
consistent with the ThatBot design language and to render cleanly on plain
ASCII terminals.

# Core Components

## Display Components

MessageBubble (message.go) - Styled chat bubbles for user, bot and system entries.
MessageList (message.go) - Stacks bubbles into a conversation transcript.
StatusBar (statusbar.go) - Bottom bar with session, backend health and shortcuts.

## Progress and Feedback

Spinner (spinner.go) - Animated spinner with elapsed-time display.
TypingIndicator (spinner.go) - Trailing dots shown while the bot composes a reply.
ListeningIndicator (spinner.go) - Pulse shown while voice capture is active.
NoticeStack (notice.go) - Auto-dismissing advisory banners.
ErrorDisplay (error.go) - Error box with recovery suggestions.

# Theme Integration

Components that carry per-instance styling accept a *styles.Theme:

	theme := styles.NewTheme()
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	bar.SetSession("session_1714670671042_h5cix2l9q")
	view := bar.View()

# Bubble Tea Integration

Animated components implement the usual trio:

	type Component interface {
		Init() tea.Cmd
		Update(tea.Msg) (Component, tea.Cmd)
		View() string
	}

# Helper Functions

Shared helpers live in helpers.go:
  - truncateWithEllipsis() - Safe string truncation with Unicode support
  - formatElapsed() - Human-readable duration formatting
*/
package components
