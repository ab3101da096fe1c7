// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// This file defines all Bubble Tea messages used by the chat view.
// Messages are organized by category:
//   - Lifecycle messages (activation outcome)
//   - Conversation messages (send round trips)
//   - Attachment messages (file staging)
//   - Voice messages (microphone toggle)
//   - Animation messages (sync ticks while waiting)

import (
	"time"
)

// =============================================================================
// LIFECYCLE MESSAGES
// =============================================================================

// ActivatedMsg reports the outcome of controller activation. A nil Err
// means the session id is bootstrapped and history is loaded; a non-nil
// Err means the run is in its terminal error state.
type ActivatedMsg struct {
	Err error
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ReplyMsg is sent when a chat round trip finishes. Sent is false when
// the controller refused the send (busy, not ready, or nothing to send);
// the reply or failure bubble is already in the controller's log.
type ReplyMsg struct {
	Sent bool
}

// =============================================================================
// ATTACHMENT MESSAGES
// =============================================================================

// AttachLoadedMsg is sent after an attachment path has been read and
// offered to the controller. Err is non-nil when the file could not be
// read at all; validation rejections surface as controller notices
// instead, with Accepted false.
type AttachLoadedMsg struct {
	Name     string
	Accepted bool
	Err      error
}

// =============================================================================
// VOICE MESSAGES
// =============================================================================

// VoiceToggledMsg is sent after a microphone toggle. Listening reflects
// the capture state after the toggle; Transcript carries recognized
// speech when a capture session just ended with usable text.
type VoiceToggledMsg struct {
	Transcript string
	Listening  bool
}

// =============================================================================
// ANIMATION MESSAGES
// =============================================================================

// SyncTickMsg drives the controller re-read loop while a send is in
// flight, so the optimistic user entry and the eventual reply appear
// without waiting for a keypress.
type SyncTickMsg struct {
	Time time.Time
}

// =============================================================================
// MESSAGE CONSTRUCTORS
// =============================================================================

// NewActivatedMsg creates an activation outcome message.
func NewActivatedMsg(err error) ActivatedMsg {
	return ActivatedMsg{Err: err}
}

// NewReplyMsg creates a reply outcome message.
func NewReplyMsg(sent bool) ReplyMsg {
	return ReplyMsg{Sent: sent}
}

// NewVoiceToggledMsg creates a voice toggle outcome message.
func NewVoiceToggledMsg(transcript string, listening bool) VoiceToggledMsg {
	return VoiceToggledMsg{Transcript: transcript, Listening: listening}
}
