// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

import (
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// SENDER TESTS
// =============================================================================

func TestSender_DisplayName(t *testing.T) {
	tests := []struct {
		sender Sender
		want   string
	}{
		{SenderUser, "You"},
		{SenderBot, "ThatBot"},
		{Sender("other"), "other"},
	}

	for _, tc := range tests {
		t.Run(string(tc.sender), func(t *testing.T) {
			if got := tc.sender.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseSender(t *testing.T) {
	if got := ParseSender("user"); got != SenderUser {
		t.Errorf("ParseSender(user) = %q, want %q", got, SenderUser)
	}
	if got := ParseSender("bot"); got != SenderBot {
		t.Errorf("ParseSender(bot) = %q, want %q", got, SenderBot)
	}
	// Unknown senders fall back to bot, matching the history format.
	if got := ParseSender("assistant"); got != SenderBot {
		t.Errorf("ParseSender(assistant) = %q, want %q", got, SenderBot)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	if msg.Sender != SenderUser {
		t.Errorf("Sender = %q, want %q", msg.Sender, SenderUser)
	}
	if msg.Text != "hello" {
		t.Errorf("Text = %q, want %q", msg.Text, "hello")
	}
	if msg.ID == "" {
		t.Error("ID should not be empty")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestMessage_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewBotMessage("x")
		if seen[msg.ID] {
			t.Fatalf("Duplicate message ID generated: %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short", "hi", 10, "hi"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny budget", "hello", 2, "he"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewUserMessage(tc.text)
			if got := msg.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestMessage_HasImage(t *testing.T) {
	msg := NewBotMessage("see attached")
	if msg.HasImage() {
		t.Error("HasImage() should be false without an image URL")
	}
	msg.Image = "http://localhost:5000/uploads/a.png"
	if !msg.HasImage() {
		t.Error("HasImage() should be true with an image URL")
	}
}

// =============================================================================
// CONVERSATION LOG TESTS
// =============================================================================

func TestConversationLog_AppendOrder(t *testing.T) {
	log := NewConversationLog()

	log.AppendUser("first")
	log.AppendBot("second")
	log.AppendUser("third")

	msgs := log.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}

	wantTexts := []string{"first", "second", "third"}
	wantSenders := []Sender{SenderUser, SenderBot, SenderUser}
	for i, msg := range msgs {
		if msg.Text != wantTexts[i] {
			t.Errorf("messages[%d].Text = %q, want %q", i, msg.Text, wantTexts[i])
		}
		if msg.Sender != wantSenders[i] {
			t.Errorf("messages[%d].Sender = %q, want %q", i, msg.Sender, wantSenders[i])
		}
	}
}

func TestConversationLog_Empty(t *testing.T) {
	log := NewConversationLog()

	if !log.IsEmpty() {
		t.Error("new log should be empty")
	}
	if log.Len() != 0 {
		t.Errorf("Len = %d, want 0", log.Len())
	}
	if log.Last() != nil {
		t.Error("Last() on empty log should be nil")
	}
}

func TestConversationLog_Last(t *testing.T) {
	log := NewConversationLog()
	log.AppendUser("question")
	bot := log.AppendBot("answer")

	last := log.Last()
	if last == nil {
		t.Fatal("Last() returned nil")
	}
	if last.ID != bot.ID {
		t.Errorf("Last().ID = %q, want %q", last.ID, bot.ID)
	}
}

func TestConversationLog_AppendNil(t *testing.T) {
	log := NewConversationLog()
	log.Append(nil)

	if log.Len() != 0 {
		t.Errorf("Len after nil append = %d, want 0", log.Len())
	}
}

// =============================================================================
// ATTACHMENT SLOT TESTS
// =============================================================================

// pngBytes is a minimal valid PNG header, enough for content sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// jpegBytes is a minimal JPEG SOI marker sequence.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestAttachmentSlot_SelectImage(t *testing.T) {
	var slot AttachmentSlot

	if err := slot.Select("photo.png", pngBytes); err != nil {
		t.Fatalf("Select(png) failed: %v", err)
	}
	if !slot.HasPending() {
		t.Fatal("slot should hold an attachment after Select")
	}

	att := slot.Get()
	if att.Name != "photo.png" {
		t.Errorf("Name = %q, want %q", att.Name, "photo.png")
	}
	if att.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", att.MIME)
	}
	if len(att.Data) != len(pngBytes) {
		t.Errorf("Data length = %d, want %d", len(att.Data), len(pngBytes))
	}
}

func TestAttachmentSlot_RejectsNonImage(t *testing.T) {
	var slot AttachmentSlot

	err := slot.Select("notes.txt", []byte("just some text content"))
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("Select(text) error = %v, want ErrNotAnImage", err)
	}
	if slot.HasPending() {
		t.Error("slot should stay empty after a rejected payload")
	}
}

func TestAttachmentSlot_RejectedKeepsPrevious(t *testing.T) {
	var slot AttachmentSlot

	if err := slot.Select("a.png", pngBytes); err != nil {
		t.Fatalf("Select(png) failed: %v", err)
	}
	if err := slot.Select("b.txt", []byte("plain text")); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("Select(text) error = %v, want ErrNotAnImage", err)
	}

	att := slot.Get()
	if att == nil || att.Name != "a.png" {
		t.Errorf("slot = %+v, want previous attachment a.png preserved", att)
	}
}

func TestAttachmentSlot_LastWriteWins(t *testing.T) {
	var slot AttachmentSlot

	if err := slot.Select("first.png", pngBytes); err != nil {
		t.Fatalf("Select(first) failed: %v", err)
	}
	if err := slot.Select("second.jpg", jpegBytes); err != nil {
		t.Fatalf("Select(second) failed: %v", err)
	}

	att := slot.Get()
	if att.Name != "second.jpg" {
		t.Errorf("Name = %q, want second.jpg (last write wins)", att.Name)
	}
}

func TestAttachmentSlot_ClearIdempotent(t *testing.T) {
	var slot AttachmentSlot

	// Clearing an empty slot must not panic or error.
	slot.Clear()
	slot.Clear()

	if err := slot.Select("x.png", pngBytes); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	slot.Clear()
	if slot.HasPending() {
		t.Error("slot should be empty after Clear")
	}
	slot.Clear()
	if slot.HasPending() {
		t.Error("repeated Clear should keep the slot empty")
	}
}

func TestAttachmentSlot_TakeConsumes(t *testing.T) {
	var slot AttachmentSlot

	if err := slot.Select("x.png", pngBytes); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	att := slot.Take()
	if att == nil || att.Name != "x.png" {
		t.Fatalf("Take() = %+v, want staged attachment", att)
	}
	if slot.HasPending() {
		t.Error("slot should be empty after Take")
	}
	if slot.Take() != nil {
		t.Error("Take() on empty slot should return nil")
	}
}

func TestAttachmentSlot_EmptyPayload(t *testing.T) {
	var slot AttachmentSlot

	if err := slot.Select("empty.png", nil); !errors.Is(err, ErrNotAnImage) {
		t.Errorf("Select(empty) error = %v, want ErrNotAnImage", err)
	}
}

// =============================================================================
// APP STATUS TESTS
// =============================================================================

func TestAppStatus_String(t *testing.T) {
	tests := []struct {
		status AppStatus
		want   string
	}{
		{StatusLoading, "loading"},
		{StatusReady, "ready"},
		{StatusError, "error"},
		{AppStatus(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.status.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAppStatus_CanSend(t *testing.T) {
	if StatusLoading.CanSend() {
		t.Error("loading status must not allow sends")
	}
	if StatusError.CanSend() {
		t.Error("error status must not allow sends")
	}
	if !StatusReady.CanSend() {
		t.Error("ready status must allow sends")
	}
}
