// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the conversation screen for the thatbot TUI.

The package is built around a single Bubble Tea model that drives the
whole session lifecycle: it activates the conversation controller on
startup, renders the history fetch as a loading screen, and settles
into the message log once the controller reports ready. A failed
activation is terminal for the run and renders a full-screen error
with recovery suggestions.

Layout (top to bottom):

	header          brand, server host, connection state
	viewport        scrollable message log (bubbles/viewport)
	notice bar      transient validation notices, shown only when queued
	input area      separator, text input (bubbles/textinput), char count
	status bar      session tag, backend state, attachment chip, shortcuts

The model never talks to the HTTP backend directly. All conversation
state lives in controller.Controller; the chat model reads snapshots of
it (Messages, Status, Busy, Notices) and issues mutations through
tea.Cmd closures so the update loop never blocks. While a send is in
flight a sync tick re-reads the controller at 10fps, which is how the
optimistic user entry and the eventual reply surface in the viewport.

Key bindings live in keys.go, Bubble Tea messages in messages.go, the
async command constructors in commands.go, and all rendering in
view.go.
*/
package chat
