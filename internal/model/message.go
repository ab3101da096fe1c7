// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "ThatBot"
	default:
		return string(s)
	}
}

// ParseSender maps a wire-format sender string onto a Sender.
// Anything that is not "user" is treated as the bot, matching how
// the history endpoint labels rows.
func ParseSender(s string) Sender {
	if s == string(SenderUser) {
		return SenderUser
	}
	return SenderBot
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in the conversation log.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Text string `json:"text"`

	// Image is the absolute URL of a server-stored image, when the
	// message carried one.
	Image string `json:"image,omitempty"`

	// AttachmentName is the local filename shown on an optimistic user
	// message before the server has stored the upload. Not persisted.
	AttachmentName string `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(sender Sender, text string) *Message {
	return &Message{
		ID:        generateID(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) *Message {
	return NewMessage(SenderUser, text)
}

// NewBotMessage creates a new bot message.
func NewBotMessage(text string) *Message {
	return NewMessage(SenderBot, text)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasImage returns true if the message references a stored image.
func (m *Message) HasImage() bool {
	return m.Image != ""
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no text and no image.
func (m *Message) IsEmpty() bool {
	return m.Text == "" && m.Image == "" && m.AttachmentName == ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
