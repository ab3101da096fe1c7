// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

// =============================================================================
// WIRE TYPES
// =============================================================================

// HistoryEntry is one message as returned by GET /history.
type HistoryEntry struct {
	// Sender is "user" or "bot".
	Sender string `json:"sender"`

	// Text is the message body.
	Text string `json:"text"`

	// Image is an absolute URL to an uploaded image, when one was attached.
	Image string `json:"image,omitempty"`
}

// ChatRequest carries one outgoing message for POST /chat.
// The request is encoded as a multipart form: sessionId, message, and an
// optional file part holding the attachment bytes.
type ChatRequest struct {
	SessionID string
	Message   string

	// FileName and FileData describe the optional image attachment.
	// An empty FileData means no file part is sent.
	FileName string
	FileData []byte
}

// chatReply is the success payload from POST /chat.
type chatReply struct {
	Reply string `json:"reply"`
}

// errorReply is the failure payload carried by non-2xx responses.
type errorReply struct {
	Error string `json:"error"`
}

// HealthInfo is the payload from GET /health. Fields the server does not
// report decode to their zero values.
type HealthInfo struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	// Version is the server build version.
	Version string `json:"version"`

	// Model is the language model the server replies with.
	Model string `json:"model"`

	// Store and Ollama report the server's dependency checks:
	// "ok", "unavailable", or "unconfigured".
	Store  string `json:"store"`
	Ollama string `json:"ollama"`

	// UptimeSeconds is how long the server has been running.
	UptimeSeconds int64 `json:"uptime_seconds"`
}
