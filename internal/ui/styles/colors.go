// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ThatBot TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Indigo - Brand color for the header, bot accents, and selections
var Indigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

// IndigoDeep - Subdued indigo for backgrounds
var IndigoDeep = lipgloss.AdaptiveColor{Light: "#EEF2FF", Dark: "#312E81"}

// Cyan - Info, shortcuts, and input prompt
var Cyan = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}

// CyanDeep - Subdued cyan for backgrounds
var CyanDeep = lipgloss.AdaptiveColor{Light: "#ECFEFF", Dark: "#164E63"}

// Emerald - Success states and the reachable-backend indicator
var Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

// EmeraldDeep - Subdued emerald for backgrounds
var EmeraldDeep = lipgloss.AdaptiveColor{Light: "#ECFDF5", Dark: "#064E3B"}

// Rose - Errors, the listening badge, and critical warnings
var Rose = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FB7185"}

// RoseDeep - Subdued rose for error backgrounds
var RoseDeep = lipgloss.AdaptiveColor{Light: "#FFF1F2", Dark: "#881337"}

// Amber - Validation notices and attachment chips
var Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// AmberDeep - Subdued amber for notice backgrounds
var AmberDeep = lipgloss.AdaptiveColor{Light: "#FFFBEB", Dark: "#78350F"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Elevated elements like boxes and popups
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Subtle backgrounds for the header and status bar
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#181825"}

// SurfaceBright - Slightly raised surfaces
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#313244"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D4D4D8", Dark: "#45475A"}

// OverlayDim - Fainter separators
var OverlayDim = lipgloss.AdaptiveColor{Light: "#E4E4E7", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main content text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#E4E4E7"}

// TextSecondary - Supporting text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#3F3F46", Dark: "#A1A1AA"}

// TextMuted - De-emphasized text like hints and counts
var TextMuted = lipgloss.AdaptiveColor{Light: "#71717A", Dark: "#6C7086"}

// TextInverse - Text on saturated backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#11111B"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User bubbles keep the blue of the original web client.
var (
	UserBubbleBg     = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#1E40AF"}
	UserBubbleFg     = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#DBEAFE"}
	UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"}
)

// Bot bubbles sit on a neutral surface with an indigo edge.
var (
	BotBubbleBg     = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#27273A"}
	BotBubbleFg     = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#E4E4E7"}
	BotBubbleBorder = lipgloss.AdaptiveColor{Light: "#818CF8", Dark: "#6366F1"}
)

// System bubbles carry status lines inside the transcript.
var (
	SystemBubbleBg     = lipgloss.AdaptiveColor{Light: "#FFFBEB", Dark: "#3B3224"}
	SystemBubbleFg     = lipgloss.AdaptiveColor{Light: "#92400E", Dark: "#FDE68A"}
	SystemBubbleBorder = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#B45309"}
)

// =============================================================================
// FOCUS AND SELECTION
// =============================================================================

// FocusRing - Border color for the focused input
var FocusRing = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}

// FocusRingDim - Border color for blurred panes
var FocusRingDim = lipgloss.AdaptiveColor{Light: "#D4D4D8", Dark: "#45475A"}

// SelectionBg - Background for selected rows
var SelectionBg = lipgloss.AdaptiveColor{Light: "#E0E7FF", Dark: "#3730A3"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet holds shape-based indicators used alongside colors.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
	Active  string
}

// StatusIndicators provides accessible shape/text indicators alongside colors.
// ACCESSIBILITY: ASCII-only indicators for maximum compatibility and colorblind users.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
	Active:  "[*]",
}

// =============================================================================
// ACCESSIBILITY: High-contrast color pairs for colorblind users
// =============================================================================

// High contrast success - Bright green with bold, works for most color blindness types
var SuccessHighContrast = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#22C55E"}

// High contrast error - Bright red with bold, distinct from green even for colorblind
var ErrorHighContrast = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}

// High contrast warning - Bright amber/orange, deuteranopia-friendly
var WarningHighContrast = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}

// High contrast info - Bright blue, distinct from red/green spectrum
var InfoHighContrast = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#3B82F6"}

// LinkColor - Accessible link color with sufficient contrast
var LinkColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// =============================================================================
// ACCESSIBILITY: Helper functions for rendering accessible status messages
// =============================================================================

// RenderSuccess renders a success message with high contrast green.
// ACCESSIBILITY: Includes shape indicator for colorblind users.
func RenderSuccess(message string) string {
	style := lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with high contrast red.
// ACCESSIBILITY: Includes shape indicator for colorblind users.
func RenderError(message string) string {
	style := lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with high contrast amber.
// ACCESSIBILITY: Includes shape indicator for colorblind users.
func RenderWarning(message string) string {
	style := lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an info message with high contrast blue.
// ACCESSIBILITY: Includes shape indicator for colorblind users.
func RenderInfo(message string) string {
	style := lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Info + " " + message)
}

// RenderStatus renders a status message based on success/failure.
// ACCESSIBILITY: Uses shapes and high contrast colors for colorblind users.
func RenderStatus(success bool, message string) string {
	if success {
		return RenderSuccess(message)
	}
	return RenderError(message)
}

// RenderLink renders text as an accessible link with underline.
// ACCESSIBILITY: Underline provides visual cue beyond color for links.
func RenderLink(text string) string {
	style := lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
	return style.Render(text)
}
