// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the durable chat session identifier.
//
// The identifier ties every history fetch and chat request to one
// server-side conversation. It is generated once, stored under the
// key "chatSessionId" in a small JSON file, and reused for every
// later activation.
//
// # Key Types
//
//   - Store: file-backed durable store for the identifier
//
// # Usage
//
// Bootstrap the identifier at startup:
//
//	store, err := session.NewStore()
//	if err != nil {
//	    return err
//	}
//	id, err := store.Bootstrap()
//
// The returned id has the form session_<unix-millis>_<random-hex> and
// is persisted before Bootstrap returns.
package session
