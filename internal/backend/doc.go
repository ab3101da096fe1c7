// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the chat backend.
//
// The backend exposes two operations the client cares about: fetching
// the stored conversation for a session (GET /history) and sending one
// message with an optional image attachment (POST /chat, multipart).
// A lightweight health probe (GET /health) supports status reporting.
//
// # Key Types
//
//   - Client: thread-safe HTTP client with long chat timeouts
//   - ClientConfig: base URL and timeout configuration
//   - HistoryEntry: one stored message on the wire
//   - ChatRequest: one outgoing send (text plus optional file)
//   - ClientError: typed error with ErrorType classification
//
// # Error Handling
//
// Transport failures map to the ErrUnreachable and ErrTimeout
// sentinels. Non-2xx responses surface the backend's own {error: ...}
// message when present. Classify with IsUnreachable, IsTimeout, and
// IsServerError.
//
// # Usage
//
//	client := backend.NewClient()
//	entries, err := client.History(ctx, sessionID)
//	if err != nil {
//	    // fatal for this activation
//	}
//	reply, err := client.Chat(ctx, backend.ChatRequest{
//	    SessionID: sessionID,
//	    Message:   "hello",
//	})
package backend
