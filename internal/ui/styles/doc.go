// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ThatBot TUI.

This package defines the complete color palette, theme, and animation
system used throughout the application. All colors use Lip Gloss
AdaptiveColor for automatic light/dark terminal detection, and the
configured theme mode can force either palette.

# Color System (colors.go)

## Primary Accent Colors

  - Indigo - Brand color for the header, bot accents, and selections
  - Cyan - Info, shortcuts, and the input prompt
  - Emerald - Success states and the reachable-backend indicator
  - Amber - Validation notices and attachment chips
  - Rose - Errors and the voice listening badge

## Semantic Colors

Message bubbles and UI elements use semantic color tokens:

	UserBubbleBg   - Background for the user's messages
	UserBubbleFg   - Text color for the user's messages
	BotBubbleBg    - Background for bot replies
	BotBubbleFg    - Text color for bot replies

## Surface Colors

Layered surface system for depth:

	Surface    - Elevated elements
	SurfaceDim - Subtle backgrounds (header, status bar)
	Overlay    - Borders and separators

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewThemeWithMode(cfg.UI.Theme)
	if theme.IsDark {
		// Dark palette in effect
	}

# Animation System (animations.go)

Pre-defined spinner configurations:

	LineSpinner      - Simple line rotation for loading screens
	TypingSpinner    - Trailing dots while the bot composes a reply
	ListeningSpinner - Pulse shown during voice capture

# Status Indicators

ASCII indicators for various states:

	StatusIndicators.Success   - [OK]
	StatusIndicators.Error     - [X]
	StatusIndicators.Warning   - [!]
	StatusIndicators.Info      - [i]

# Usage Example

	import "github.com/jeranaias/thatbot/internal/ui/styles"

	// Use adaptive colors
	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)

	// Use theme for runtime detection
	theme := styles.NewTheme()
	bubble := theme.BotBubble.Render("Hello!")

	// Use spinner configuration
	frame := styles.TypingSpinner.GetFrame(time.Now())
*/
package styles
