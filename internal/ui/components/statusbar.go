// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thatbot/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom status bar showing session, backend and input state.
type StatusBar struct {
	SessionID      string // Active session identifier
	BackendHost    string // Host:port of the chat server
	BackendUp      bool   // Whether the last health check passed
	Busy           bool   // Whether a send is in flight
	Listening      bool   // Whether voice capture is active
	AttachmentName string // Staged attachment, empty when none
	VoiceEnabled   bool   // Whether a speech recognizer is wired up
	Width          int    // Available width
	ShowShortcuts  bool   // Show keyboard shortcuts
	theme          *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetSession updates the displayed session identifier.
func (s *StatusBar) SetSession(id string) {
	s.SessionID = id
}

// SetBackend updates the backend host and health state.
func (s *StatusBar) SetBackend(host string, up bool) {
	s.BackendHost = host
	s.BackendUp = up
}

// SetBusy updates the in-flight send state.
func (s *StatusBar) SetBusy(busy bool) {
	s.Busy = busy
}

// SetListening updates the voice capture state.
func (s *StatusBar) SetListening(listening bool) {
	s.Listening = listening
}

// SetAttachment updates the staged attachment name. Empty clears the chip.
func (s *StatusBar) SetAttachment(name string) {
	s.AttachmentName = name
}

// SetVoiceEnabled updates whether voice shortcuts are advertised.
func (s *StatusBar) SetVoiceEnabled(enabled bool) {
	s.VoiceEnabled = enabled
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: [OK] #suffix [img] LISTENING
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	parts = append(parts, s.renderBackendIcon())
	parts = append(parts, s.theme.SessionTag.Render(sessionTail(s.SessionID)))

	if s.AttachmentName != "" {
		chip := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
		parts = append(parts, chip.Render("[img]"))
	}

	if s.Listening {
		parts = append(parts, s.renderListeningBadge())
	} else if s.Busy {
		busyStyle := lipgloss.NewStyle().Foreground(styles.Amber)
		parts = append(parts, busyStyle.Render(styles.StatusIndicators.Active))
	}

	result := strings.Join(parts, " ")

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewMedium renders a medium-width status bar.
// Format: [OK] host | #suffix | status | [img] name | LISTENING
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	parts = append(parts, s.renderBackendSegment(16))
	parts = append(parts, s.theme.SessionTag.Render(sessionTail(s.SessionID)))
	parts = append(parts, s.renderStatusSegment())

	if s.AttachmentName != "" {
		parts = append(parts, s.renderAttachmentChip(12))
	}

	if s.Listening {
		parts = append(parts, s.renderListeningBadge())
	}

	result := strings.Join(parts, separator)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// viewWide renders a full-featured status bar for wide terminals.
// Format: [OK] host | #suffix | [img] name ... LISTENING | status | shortcuts
func (s *StatusBar) viewWide() string {
	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	// Left section: backend, session, attachment
	leftParts := []string{}
	leftParts = append(leftParts, s.renderBackendSegment(24))
	leftParts = append(leftParts, s.theme.SessionTag.Render(sessionTail(s.SessionID)))

	if s.AttachmentName != "" {
		leftParts = append(leftParts, s.renderAttachmentChip(20))
	}

	leftSection := strings.Join(leftParts, leftSep)

	// Right section: listening, status, shortcuts
	rightParts := []string{}

	if s.Listening {
		rightParts = append(rightParts, s.renderListeningBadge())
	}

	rightParts = append(rightParts, s.renderStatusSegment())

	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}

	rightSection := strings.Join(rightParts, "  ")

	// Spacing between sections
	leftWidth := lipgloss.Width(leftSection)
	rightWidth := lipgloss.Width(rightSection)

	spacing := s.Width - leftWidth - rightWidth - 4
	if spacing < 1 {
		spacing = 1
	}

	result := leftSection + strings.Repeat(" ", spacing) + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// Segment Renderers
// ==========================================================================

// renderBackendIcon renders just the health indicator.
func (s *StatusBar) renderBackendIcon() string {
	if s.BackendUp {
		return s.theme.BackendUp.Render(styles.StatusIndicators.Success)
	}
	return s.theme.BackendDown.Render(styles.StatusIndicators.Error)
}

// renderBackendSegment renders the health indicator with the host name.
func (s *StatusBar) renderBackendSegment(maxHost int) string {
	host := s.BackendHost
	if host == "" {
		host = "no server"
	}
	host = truncateWithEllipsis(host, maxHost)

	if s.BackendUp {
		return s.theme.BackendUp.Render(styles.StatusIndicators.Success + " " + host)
	}
	return s.theme.BackendDown.Render(styles.StatusIndicators.Error + " " + host)
}

// renderStatusSegment renders the ready/sending state.
func (s *StatusBar) renderStatusSegment() string {
	if s.Busy {
		return lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true).
			Render("sending...")
	}
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("ready")
}

// renderAttachmentChip renders the staged attachment chip.
func (s *StatusBar) renderAttachmentChip(maxName int) string {
	name := truncateWithEllipsis(s.AttachmentName, maxName)
	return s.theme.AttachmentChip.Render("[img] " + name)
}

// renderListeningBadge renders the voice capture badge with a pulse frame.
func (s *StatusBar) renderListeningBadge() string {
	frame := styles.ListeningSpinner.GetFrame(time.Now())
	return s.theme.ListeningBadge.Render(frame + " LISTENING")
}

// renderShortcuts renders the keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	key := s.theme.ShortcutKey
	desc := s.theme.ShortcutDesc

	parts := []string{
		key.Render("^A") + desc.Render(" attach"),
	}
	if s.VoiceEnabled {
		parts = append(parts, key.Render("^V")+desc.Render(" voice"))
	}
	parts = append(parts, key.Render("^C")+desc.Render(" quit"))

	return strings.Join(parts, "  ")
}

// ==========================================================================
// Helpers
// ==========================================================================

// sessionTail returns the display form of a session identifier.
// Session ids look like "session_1714670671042_h5cix2l9q"; the random
// suffix is enough to tell sessions apart.
func sessionTail(id string) string {
	if id == "" {
		return "#-"
	}
	if idx := strings.LastIndex(id, "_"); idx >= 0 && idx+1 < len(id) {
		return "#" + id[idx+1:]
	}
	return "#" + truncateWithEllipsis(id, 9)
}
