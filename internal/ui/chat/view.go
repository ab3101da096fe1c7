// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// This file contains all rendering logic for the chat view:
//   - Main render and vertical layout (renderChat)
//   - Loading screen and terminal startup error
//   - Message log rendering into the viewport
//   - Header, input area, and input footer
//   - Context-aware help overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thatbot/internal/ui/components"
	"github.com/jeranaias/thatbot/internal/ui/styles"
	"github.com/jeranaias/thatbot/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat view.
// Layout: header (1 line) + messages (viewport) + [notice bar (1 line)] +
// input (3 lines) + status bar (1 line).
// Total height must equal m.height exactly to prevent overflow/underflow.
//
// COUPLING WARNING: The viewport height is pre-calculated in
// recalcViewport() (model.go) using conservative constant estimates.
// This function measures actual heights with lipgloss.Height() and has
// a fallback if there's a mismatch. If you change the height of any
// component here, also update the constants in recalcViewport().
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// If help overlay is active, render it instead of normal UI
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	switch m.state {
	case StateLoading:
		return m.renderLoading()
	case StateError:
		return m.renderStartupError()
	}

	// Build fixed-height components first to calculate available space
	header := m.renderHeader()
	input := m.renderInput()
	status := m.statusBar.View()

	var noticeBar string
	if m.notices.HasNotices() {
		noticeBar = components.RenderNoticeBar(m.notices.Active(), m.width, m.theme)
	}

	// Calculate exact heights
	headerHeight := lipgloss.Height(header)
	inputHeight := lipgloss.Height(input)
	statusHeight := lipgloss.Height(status)
	noticeHeight := 0
	if noticeBar != "" {
		noticeHeight = lipgloss.Height(noticeBar)
	}

	// Calculate available height for the messages viewport
	availableHeight := m.height - headerHeight - inputHeight - statusHeight - noticeHeight
	if availableHeight < 1 {
		availableHeight = 1
	}

	// The viewport should already be sized via recalcViewport(). Verify
	// the rendered height matches available space to catch sizing bugs.
	messages := m.viewport.View()
	if lipgloss.Height(messages) != availableHeight {
		messages = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.width).
			Render(messages)
	}

	// Stack vertically - order is critical:
	// 1. Header at top
	// 2. Messages area (scrollable viewport)
	// 3. Notice bar (if any notices are live)
	// 4. Input area (separator + input + footer)
	// 5. Status bar at bottom
	if noticeBar != "" {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			messages,
			noticeBar,
			input,
			status,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		messages,
		input,
		status,
	)
}

// =============================================================================
// LOADING AND ERROR SCREENS
// =============================================================================

// renderLoading fills the screen with the connecting spinner while the
// first history fetch is in flight.
func (m Model) renderLoading() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	box := m.theme.LoadingBox.Render(m.loading.View())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderStartupError renders the terminal failure screen. There is no
// recovery path from here besides restarting the program.
func (m Model) renderStartupError() string {
	display := components.StartupError(m.ctrl.FatalError())
	display.SetSize(m.width, m.height)
	return display.View()
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	// Brand
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Indigo).
		Render("thatbot")

	// Server host
	var hostInfo string
	if m.serverHost != "" {
		hostInfo = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" | " + m.serverHost)
	}

	// Status indicator
	var statusIcon string
	switch m.state {
	case StateWaiting:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(" " + styles.StatusIndicators.Active)
	case StateError:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Render(" " + styles.StatusIndicators.Error)
	default:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(" " + styles.StatusIndicators.Success)
	}

	// Microphone badge
	var listenBadge string
	if m.listening.IsActive() {
		listenBadge = m.listening.View()
	}

	headerContent := title + hostInfo + statusIcon
	if listenBadge != "" {
		headerContent = headerContent + " " + listenBadge
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Width(width).
		Padding(0, 1).
		Render(headerContent)
}

// =============================================================================
// MESSAGES
// =============================================================================

// renderMessages renders the conversation log for the viewport.
// Returns a welcome screen when the log is empty.
func (m *Model) renderMessages() string {
	if len(m.messages) == 0 {
		return m.renderEmptyState()
	}

	bubbleWidth := m.viewport.Width
	if bubbleWidth <= 0 {
		bubbleWidth = 80
	}

	list := components.NewMessageList(m.theme)
	list.SetMessages(m.messages)
	list.SetWidth(bubbleWidth)
	out := list.View()

	// The typing indicator rides below the last bubble while a send is
	// in flight
	if m.state == StateWaiting {
		if tv := m.typing.View(); tv != "" {
			out += "\n" + lipgloss.NewStyle().PaddingLeft(1).Render(tv)
		}
	}

	return out
}

// renderEmptyState renders the welcome screen shown before the first
// message lands. The controller normally seeds a greeting, so this only
// appears when history is still syncing.
func (m *Model) renderEmptyState() string {
	width := m.viewport.Width
	height := m.viewport.Height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 20
	}

	lines := []string{
		m.theme.WelcomeLogo.Render("ThatBot"),
		"",
		m.theme.WelcomeInfo.Render("Press Enter to send your first message."),
		m.theme.WelcomeKey.Render("?") + m.theme.WelcomeInfo.Render(" shows every shortcut."),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	box := m.theme.WelcomeBox.Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the separator, the composer (or attach prompt),
// and the footer line. Fixed height of 3 prevents layout shift.
func (m Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	// Separator color follows focus
	var borderColor lipgloss.AdaptiveColor
	switch {
	case m.attachMode:
		borderColor = styles.Amber
	case m.state == StateWaiting:
		borderColor = styles.FocusRingDim
	case m.input.Focused():
		borderColor = styles.FocusRing
	default:
		borderColor = styles.FocusRingDim
	}

	separator := lipgloss.NewStyle().
		Foreground(borderColor).
		Render(strings.Repeat("─", width))

	// The attach prompt replaces the composer in attach mode; while a
	// send is in flight the composer is parked
	var inputContent string
	switch {
	case m.attachMode:
		inputContent = m.attachInput.View()
	case m.state == StateWaiting:
		inputContent = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("Waiting for ThatBot...")
	default:
		inputContent = m.input.View()
	}

	inputLineWidth := width - 4
	if inputLineWidth < 10 {
		inputLineWidth = 10
	}
	inputLine := lipgloss.NewStyle().
		Width(inputLineWidth).
		Padding(0, 1).
		Render(inputContent)

	footer := m.renderInputFooter()

	result := lipgloss.JoinVertical(
		lipgloss.Left,
		separator,
		inputLine,
		footer,
	)

	return lipgloss.NewStyle().
		Height(3).
		MaxHeight(3).
		Width(width).
		Render(result)
}

// renderInputFooter renders the line under the composer: attach-mode
// hint, or the staged attachment chip plus the character count.
func (m Model) renderInputFooter() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	footerWidth := width - 4
	if footerWidth < 10 {
		footerWidth = 10
	}

	if m.attachMode {
		hint := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("Enter loads the file. Esc cancels.")
		return lipgloss.NewStyle().
			Width(footerWidth).
			Padding(0, 2).
			Render(hint)
	}

	// Character count, colored by how full the composer is
	count := len([]rune(m.input.Value()))
	limit := m.input.CharLimit
	if limit <= 0 {
		limit = 1
	}

	var countStyle lipgloss.Style
	percent := float64(count) / float64(limit) * 100
	switch {
	case percent >= 90:
		countStyle = m.theme.CharCountDanger
	case percent >= 75:
		countStyle = m.theme.CharCountWarning
	default:
		countStyle = m.theme.CharCount
	}
	countStr := countStyle.Render(util.IntToString(count) + " / " + util.IntToString(limit))

	// Staged attachment chip on the left
	var chip string
	if name := stagedAttachmentName(m.ctrl); name != "" {
		chip = m.theme.AttachmentChip.Render("[img] " + name)
	}

	if chip == "" {
		return lipgloss.NewStyle().
			Width(footerWidth).
			Align(lipgloss.Right).
			Padding(0, 2).
			Render(countStr)
	}

	spacing := footerWidth - lipgloss.Width(chip) - lipgloss.Width(countStr) - 4
	if spacing < 1 {
		spacing = 1
	}

	return lipgloss.NewStyle().
		Width(footerWidth).
		Padding(0, 2).
		Render(chip + strings.Repeat(" ", spacing) + countStr)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelpOverlay() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	// Determine the context that was active BEFORE help was shown
	var activeContext HelpContext
	switch {
	case m.state == StateError:
		activeContext = ContextError
	case m.attachMode:
		activeContext = ContextAttach
	case m.state == StateWaiting:
		activeContext = ContextWaiting
	default:
		activeContext = ContextNormal
	}

	grouped := GetHelpItemsByCategory(activeContext)
	categoryOrder := GetCategoryOrder()

	var sb strings.Builder

	contextName := GetContextDisplayName(activeContext)
	sb.WriteString(fmt.Sprintf("Keys available now (%s)\n", contextName))
	sb.WriteString(strings.Repeat("─", 35) + "\n\n")

	hasContent := false
	for _, category := range categoryOrder {
		items, exists := grouped[category]
		if !exists || len(items) == 0 {
			continue
		}

		hasContent = true
		categoryStyle := lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)
		sb.WriteString(categoryStyle.Render(string(category)) + "\n")

		for _, item := range items {
			keyStyle := lipgloss.NewStyle().Foreground(styles.Amber)
			descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
			sb.WriteString(fmt.Sprintf("  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-14s", item.Key)),
				descStyle.Render(item.Desc)))
		}
		sb.WriteString("\n")
	}

	if !hasContent {
		sb.WriteString("  No specific keybindings for this mode.\n\n")
	}

	sb.WriteString(strings.Repeat("─", 35) + "\n")
	closeStyle := lipgloss.NewStyle().Foreground(styles.Overlay)
	sb.WriteString(closeStyle.Render("Press ? or Esc to close"))

	content := sb.String()

	contentWidth := 55
	if contentWidth > width-4 {
		contentWidth = width - 4
	}

	helpStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Indigo).
		Foreground(styles.TextPrimary).
		Background(styles.Surface).
		Padding(1, 2).
		Width(contentWidth)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpStyle.Render(content))
}
