// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
//
// The package defines the four entities the session controller owns:
//
//   - Message / Sender: a single log entry and who produced it
//   - ConversationLog: the ordered, append-only message list
//   - PendingAttachment / AttachmentSlot: the single staged image
//   - AppStatus: the loading/ready/error activation state
//
// These types carry no I/O. Network access lives in the backend client,
// orchestration in the controller package.
package model
