// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller holds the UI-free chat session state machine.
//
// A Controller owns everything the conversation surface renders: the durable
// session id, the ordered message log, the single pending attachment slot,
// the composer text, and the busy flag that serializes sends. The terminal
// UI and the plain REPL both drive the same Controller; neither carries
// conversation state of its own.
//
// # Key Types
//
//   - Controller: Activate once, then Send/SelectAttachment/ToggleListening
//   - Message: One log entry (sender, text, optional image)
//   - Status: loading -> ready | error; error is terminal for the run
//   - Backend, SessionSource: Injected dependencies, faked in tests
//
// # Lifecycle
//
// Activate bootstraps the session id and fetches history exactly once. An
// empty history seeds one greeting; a failure parks the controller in the
// error state where sends are no-ops. A dispatched send appends the user
// entry optimistically, consumes the attachment slot, performs one request,
// and always appends exactly one bot entry, synthesized from the failure
// reason when the request failed.
//
// # Usage
//
//	ctrl := controller.New(controller.Options{
//	    Sessions: sessionStore,
//	    Backend:  apiClient,
//	})
//	if err := ctrl.Activate(ctx); err != nil {
//	    // render the fatal error screen
//	}
//	ctrl.Send(ctx, "hello")
package controller
