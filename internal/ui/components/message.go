// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ThatBot TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thatbot/internal/controller"
	"github.com/jeranaias/thatbot/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single conversation entry as a styled bubble.
type MessageBubble struct {
	Message controller.Message
	Width   int
	theme   *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg controller.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message: msg,
		Width:   80,
		theme:   theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch b.Message.Sender {
	case controller.SenderUser:
		return b.renderUserBubble()
	case controller.SenderBot:
		return b.renderBotBubble()
	default:
		return b.renderSystemBubble()
	}
}

// ==========================================================================
// User Bubble - Blue tones, right-aligned
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.bubbleContent()

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	roleIndicator := roleStyle.Render("you")

	// Right-align the bubble with a computed left margin
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}

	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	headerLine := marginStyle.Render(roleIndicator)
	bubbleLine := marginStyle.Render(bubble)

	return lipgloss.JoinVertical(lipgloss.Right, headerLine, bubbleLine)
}

// ==========================================================================
// Bot Bubble - Indigo tones, left-aligned
// ==========================================================================

func (b *MessageBubble) renderBotBubble() string {
	content := b.bubbleContent()

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.BotBubbleFg).
		Background(styles.BotBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.BotBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	roleIndicator := roleStyle.Render("thatbot")

	return lipgloss.JoinVertical(lipgloss.Left, roleIndicator, bubble)
}

// ==========================================================================
// System Bubble - Amber tones, centered
// ==========================================================================

func (b *MessageBubble) renderSystemBubble() string {
	content := b.bubbleContent()
	if content == "..." {
		content = "System message"
	}

	maxContentWidth := b.Width - 20
	if maxContentWidth < 30 {
		maxContentWidth = 30
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-16)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.SystemBubbleFg).
		Background(styles.SystemBubbleBg).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.SystemBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		Align(lipgloss.Center)

	bubble := bubbleStyle.Render(wrappedContent)

	centerStyle := lipgloss.NewStyle().
		Width(b.Width).
		Align(lipgloss.Center)

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	label := labelStyle.Render("notice")

	return lipgloss.JoinVertical(
		lipgloss.Center,
		centerStyle.Render(label),
		centerStyle.Render(bubble),
	)
}

// ==========================================================================
// Helper Methods
// ==========================================================================

// bubbleContent builds the text shown inside the bubble, including the
// attachment reference when the message carries an image. Optimistic user
// entries show the local filename until the server URL exists.
func (b *MessageBubble) bubbleContent() string {
	content := b.Message.Text

	ref := b.Message.Image
	if ref == "" {
		ref = b.Message.AttachmentName
	}
	if ref != "" {
		imageLine := "[image] " + ref
		if content == "" {
			content = imageLine
		} else {
			content += "\n" + imageLine
		}
	}

	if content == "" {
		content = "..."
	}

	return content
}

// ==========================================================================
// Utility Functions
// ==========================================================================

// wordWrap wraps text to fit within the specified width.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for lineIdx, line := range lines {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]

		for _, word := range words[1:] {
			if runeLen(currentLine)+1+runeLen(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}

		result.WriteString(currentLine)
	}

	return result.String()
}

// maxLineWidth returns the width of the longest line in runes.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		lineWidth := runeLen(line)
		if lineWidth > maxWidth {
			maxWidth = lineWidth
		}
	}
	return maxWidth
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// runeLen returns the number of runes in a string.
// Handles Unicode text where len() would return byte count.
func runeLen(s string) int {
	return len([]rune(s))
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders a conversation transcript as stacked bubbles.
type MessageList struct {
	Messages []controller.Message
	Width    int
	theme    *styles.Theme
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Messages: []controller.Message{},
		Width:    80,
		theme:    theme,
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []controller.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0)

		return emptyStyle.Render("No messages yet. Say hello!")
	}

	var bubbles []string

	for _, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)

		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n")
}
