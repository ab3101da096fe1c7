// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thatbot/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is an animated loading indicator.
type Spinner struct {
	// Core spinner from bubbles
	spinner spinner.Model

	// Configuration
	message   string
	detail    string
	startTime time.Time

	// State
	isActive  bool
	showTimer bool
}

// NewSpinner creates a spinner using the shared line animation.
func NewSpinner() Spinner {
	return NewSpinnerWithConfig(styles.LineSpinner)
}

// NewSpinnerWithConfig creates a spinner from one of the shared animation configs.
func NewSpinnerWithConfig(cfg styles.SpinnerConfig) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: cfg.Frames,
		FPS:    cfg.Duration(),
	}

	return Spinner{
		spinner:   s,
		message:   "Loading",
		showTimer: true,
	}
}

// NewConnectingSpinner creates the spinner shown while the first history
// load is in flight.
func NewConnectingSpinner() Spinner {
	s := NewSpinner()
	s.message = "Connecting to ThatBot"
	s.showTimer = false
	return s
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetDetail sets additional detail text below the spinner.
func (s *Spinner) SetDetail(detail string) {
	s.detail = detail
}

// SetShowTimer enables or disables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and records the start time.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// GetElapsed returns the duration since the spinner started.
func (s *Spinner) GetElapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the spinner.
func (s Spinner) Init() tea.Cmd {
	return nil
}

// Update handles messages for the spinner.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	spinnerView := lipgloss.NewStyle().
		Foreground(styles.Indigo).
		Render(s.spinner.View())

	messageView := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(s.message)

	dotsView := lipgloss.NewStyle().
		Foreground(styles.Indigo).
		Render("...")

	result := spinnerView + " " + messageView + dotsView

	if s.showTimer && !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime)
		timerView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(elapsed) + ")")
		result += timerView
	}

	if s.detail != "" {
		detailView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			PaddingLeft(2).
			Render(s.detail)
		result += "\n" + detailView
	}

	return result
}

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingIndicator shows trailing dots while the bot composes a reply.
type TypingIndicator struct {
	spinner   spinner.Model
	startTime time.Time
	active    bool
}

// NewTypingIndicator creates a new typing indicator.
func NewTypingIndicator() TypingIndicator {
	s := spinner.New()
	cfg := styles.TypingSpinner
	s.Spinner = spinner.Spinner{
		Frames: cfg.Frames,
		FPS:    cfg.Duration(),
	}
	return TypingIndicator{spinner: s}
}

// Start begins the typing animation.
func (t *TypingIndicator) Start() tea.Cmd {
	t.active = true
	t.startTime = time.Now()
	return t.spinner.Tick
}

// Stop ends the typing animation.
func (t *TypingIndicator) Stop() {
	t.active = false
}

// IsActive returns whether the indicator is running.
func (t *TypingIndicator) IsActive() bool {
	return t.active
}

// GetElapsed returns how long the bot has been composing.
func (t *TypingIndicator) GetElapsed() time.Duration {
	if t.startTime.IsZero() {
		return 0
	}
	return time.Since(t.startTime)
}

// Update handles messages.
func (t TypingIndicator) Update(msg tea.Msg) (TypingIndicator, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the typing indicator.
func (t TypingIndicator) View() string {
	if !t.active {
		return ""
	}

	label := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true).
		Render("ThatBot is typing")

	dots := lipgloss.NewStyle().
		Foreground(styles.Indigo).
		Render(t.spinner.View())

	result := label + dots

	if !t.startTime.IsZero() {
		elapsed := time.Since(t.startTime)
		if elapsed >= 5*time.Second {
			timerView := lipgloss.NewStyle().
				Foreground(styles.TextMuted).
				Render(" (" + formatElapsed(elapsed) + ")")
			result += timerView
		}
	}

	return result
}

// =============================================================================
// LISTENING INDICATOR
// =============================================================================

// ListeningIndicator shows a pulse while the microphone is capturing.
type ListeningIndicator struct {
	spinner spinner.Model
	active  bool
}

// NewListeningIndicator creates a new listening indicator.
func NewListeningIndicator() ListeningIndicator {
	s := spinner.New()
	cfg := styles.ListeningSpinner
	s.Spinner = spinner.Spinner{
		Frames: cfg.Frames,
		FPS:    cfg.Duration(),
	}
	return ListeningIndicator{spinner: s}
}

// Start begins the pulse animation.
func (l *ListeningIndicator) Start() tea.Cmd {
	l.active = true
	return l.spinner.Tick
}

// Stop ends the pulse animation.
func (l *ListeningIndicator) Stop() {
	l.active = false
}

// IsActive returns whether the indicator is running.
func (l *ListeningIndicator) IsActive() bool {
	return l.active
}

// Update handles messages.
func (l ListeningIndicator) Update(msg tea.Msg) (ListeningIndicator, tea.Cmd) {
	if !l.active {
		return l, nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the pulse and label.
func (l ListeningIndicator) View() string {
	if !l.active {
		return ""
	}

	pulse := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true).
		Render(l.spinner.View())

	label := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true).
		Render(" LISTENING")

	return pulse + label
}
