// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// ConversationLog is the ordered, append-only list of messages for one
// session. The UI renders it verbatim; entries are never reordered,
// deduplicated or removed.
type ConversationLog struct {
	messages []*Message
}

// NewConversationLog creates an empty conversation log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{
		messages: make([]*Message, 0),
	}
}

// Append adds a message to the end of the log. Nil messages are ignored.
func (l *ConversationLog) Append(msg *Message) {
	if msg == nil {
		return
	}
	l.messages = append(l.messages, msg)
}

// AppendUser creates and appends a user message, returning it.
func (l *ConversationLog) AppendUser(text string) *Message {
	msg := NewUserMessage(text)
	l.Append(msg)
	return msg
}

// AppendBot creates and appends a bot message, returning it.
func (l *ConversationLog) AppendBot(text string) *Message {
	msg := NewBotMessage(text)
	l.Append(msg)
	return msg
}

// Messages returns the log entries in order for rendering.
func (l *ConversationLog) Messages() []*Message {
	return l.messages
}

// Last returns the most recent message, or nil if the log is empty.
func (l *ConversationLog) Last() *Message {
	if len(l.messages) == 0 {
		return nil
	}
	return l.messages[len(l.messages)-1]
}

// Len returns the number of messages.
func (l *ConversationLog) Len() int {
	return len(l.messages)
}

// IsEmpty returns true if there are no messages.
func (l *ConversationLog) IsEmpty() bool {
	return len(l.messages) == 0
}
