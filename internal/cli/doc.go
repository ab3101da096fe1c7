// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for thatbot.
//
// The binary defaults to the TUI; subcommands cover the non-interactive
// surfaces.
//
// # Key Types
//
//   - Command: enumeration of the available CLI commands
//   - Args: parsed command-line arguments, global plus command-specific
//   - ArgParser: flag/positional parsing for subcommand argument lists
//
// # Usage
//
// Parse and dispatch:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    cli.HandleAsk(args)
//	case cli.CmdServe:
//	    cli.HandleServe(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - (none): terminal UI
//   - ask: one-shot question, optional image attachment
//   - chat: interactive REPL with input history
//   - serve: companion chat server
//   - history: print or export the stored conversation
//   - config: view and modify configuration
//   - status: session, backend, and server health
//
// Commands that report data support --json for machine-readable output.
package cli
