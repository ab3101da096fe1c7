// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

// =============================================================================
// APP STATUS
// =============================================================================

// AppStatus describes where the application is in its activation
// lifecycle. It starts at StatusLoading, moves to StatusReady when the
// history fetch succeeds, or to StatusError when it fails. StatusError
// is terminal for the activation.
type AppStatus int

const (
	StatusLoading AppStatus = iota
	StatusReady
	StatusError
)

// String returns the string representation of the status.
func (s AppStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// CanSend returns true if the send pipeline is reachable from this
// status. Only a ready application accepts sends.
func (s AppStatus) CanSend() bool {
	return s == StatusReady
}
