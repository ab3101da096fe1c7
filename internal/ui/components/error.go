// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thatbot/internal/ui/styles"
)

// =============================================================================
// ERROR DISPLAY MODEL
// =============================================================================

// ErrorDisplay is a styled error box with recovery suggestions.
type ErrorDisplay struct {
	title       string
	message     string
	suggestions []string
	tip         string

	visible bool

	width  int
	height int
}

// NewError creates an error display with title and message.
func NewError(title, message string) ErrorDisplay {
	return ErrorDisplay{
		title:   title,
		message: message,
		visible: true,
	}
}

// NewErrorWithSuggestions creates an error with helpful suggestions.
func NewErrorWithSuggestions(title, message string, suggestions []string) ErrorDisplay {
	e := NewError(title, message)
	e.suggestions = suggestions
	return e
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetTitle sets the error title.
func (e *ErrorDisplay) SetTitle(title string) {
	e.title = title
}

// SetMessage sets the error message.
func (e *ErrorDisplay) SetMessage(message string) {
	e.message = message
}

// SetSuggestions sets the list of suggestions.
func (e *ErrorDisplay) SetSuggestions(suggestions []string) {
	e.suggestions = suggestions
}

// SetTip sets the closing hint line.
func (e *ErrorDisplay) SetTip(tip string) {
	e.tip = tip
}

// SetSize sets the display dimensions.
func (e *ErrorDisplay) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Show displays the error.
func (e *ErrorDisplay) Show() {
	e.visible = true
}

// Hide hides the error.
func (e *ErrorDisplay) Hide() {
	e.visible = false
}

// IsVisible returns whether the error is visible.
func (e *ErrorDisplay) IsVisible() bool {
	return e.visible
}

// GetTitle returns the error title.
func (e *ErrorDisplay) GetTitle() string {
	return e.title
}

// GetMessage returns the error message.
func (e *ErrorDisplay) GetMessage() string {
	return e.message
}

// GetSuggestions returns the error suggestions.
func (e *ErrorDisplay) GetSuggestions() []string {
	return e.suggestions
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the error display.
func (e ErrorDisplay) View() string {
	if !e.visible {
		return ""
	}

	width := e.width
	if width == 0 {
		width = 60
	}

	maxWidth := width - 8
	if maxWidth < 30 {
		maxWidth = 30
	}
	if maxWidth > 80 {
		maxWidth = 80
	}

	var parts []string

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast).
		Bold(true)
	parts = append(parts, titleStyle.Render(styles.StatusIndicators.Error+" "+e.title))
	parts = append(parts, "")

	if e.message != "" {
		messageStyle := lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Width(maxWidth - 4)
		parts = append(parts, messageStyle.Render(e.message))
		parts = append(parts, "")
	}

	if len(e.suggestions) > 0 {
		suggestionTitle := lipgloss.NewStyle().
			Foreground(styles.InfoHighContrast).
			Bold(true).
			Render("Suggestions:")
		parts = append(parts, suggestionTitle)

		bulletStyle := lipgloss.NewStyle().
			Foreground(styles.Cyan)
		textStyle := lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

		for _, suggestion := range e.suggestions {
			line := bulletStyle.Render("  * ") + textStyle.Render(suggestion)
			parts = append(parts, line)
		}
	}

	if e.tip != "" {
		parts = append(parts, "")
		tipStyle := lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Italic(true)
		parts = append(parts, tipStyle.Render(e.tip))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Rose).
		Padding(1, 2).
		Width(maxWidth).
		Render(content)

	if e.height > 0 {
		return lipgloss.Place(
			e.width, e.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}

	return box
}

// =============================================================================
// PREDEFINED ERROR TYPES
// =============================================================================

// StartupError is shown when the first history load fails. The conversation
// cannot recover from this state without a restart.
func StartupError(message string) ErrorDisplay {
	e := NewErrorWithSuggestions(
		"Could not reach ThatBot",
		message,
		[]string{
			"Check that the server is running: thatbot serve",
			"Verify the server URL: thatbot config get server.url",
			"Run a health check: thatbot status",
		},
	)
	e.SetTip("Press q or Ctrl+C to exit, then restart once the server is back.")
	return e
}

// =============================================================================
// INLINE MESSAGES
// =============================================================================

// InlineError renders a minimal inline error message.
func InlineError(message string) string {
	iconStyle := lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast)

	return iconStyle.Render(styles.StatusIndicators.Error+" ") +
		messageStyle.Render(message)
}

// InlineWarning renders a minimal inline warning message.
func InlineWarning(message string) string {
	iconStyle := lipgloss.NewStyle().
		Foreground(styles.WarningHighContrast).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.WarningHighContrast)

	return iconStyle.Render(styles.StatusIndicators.Warning+" ") +
		messageStyle.Render(message)
}

// InlineInfo renders a minimal inline info message.
func InlineInfo(message string) string {
	iconStyle := lipgloss.NewStyle().
		Foreground(styles.InfoHighContrast).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	return iconStyle.Render(styles.StatusIndicators.Info+" ") +
		messageStyle.Render(message)
}

// InlineSuccess renders a minimal inline success message.
func InlineSuccess(message string) string {
	iconStyle := lipgloss.NewStyle().
		Foreground(styles.SuccessHighContrast).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.SuccessHighContrast)

	return iconStyle.Render(styles.StatusIndicators.Success+" ") +
		messageStyle.Render(message)
}
