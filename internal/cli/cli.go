// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for thatbot.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdServe
	CmdHistory
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // Output in JSON format where the command supports it
	Server  string // Chat server base URL override
	Model   string // Language model override (serve)

	// Command-specific
	Query      string
	File       string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after the command name), for handlers that
	// parse their own flags with ArgParser
	Raw []string

	// Options holds command-specific named options (e.g., --format)
	Options map[string]string
}

const usageText = `thatbot - terminal chat client for ThatBot

ThatBot is a single-conversation chat assistant. One durable session,
one history, stored on a companion server you can also run yourself.

It provides:
  - A full terminal UI for the conversation (default)
  - One-shot and REPL modes for scripting and quick questions
  - A companion chat server backed by SQLite and a local Ollama model
  - Image attachments that reach vision-capable models
  - Optional voice input through an external speech-to-text command

Usage:
  thatbot                    Start the TUI (default)
  thatbot ask "question"     Ask a one-shot question
  thatbot chat               Interactive chat REPL
  thatbot serve              Run the companion chat server
  thatbot history            Print the stored conversation
  thatbot config [show|set|path]  Configuration
  thatbot status, s          Session and backend status
  thatbot version            Version information
  thatbot help               This help

Ask Command:
  thatbot ask "What is Go?"         Send one message, print the reply
    -f, --file FILE                 Attach an image to the message
  Replies render as Markdown on a terminal and plain text when piped.
  A question can also arrive on stdin: echo "question" | thatbot ask

Chat Command (interactive):
  /help, /h           Show available commands
  /history            Show the conversation so far
  /attach <path>      Stage an image for the next message
  /detach             Clear the staged image
  /session, /s        Show session and backend info
  /quit, /q           Exit (also Ctrl+D)

History Command:
  thatbot history                   Print as plain text
    --format md|json|text           Output format (default: text)
    --output DIR                    Save to a file under DIR instead of stdout

Config Command:
  thatbot config show               Show current configuration
  thatbot config set <key> <value>  Set a configuration value
  thatbot config path               Show the config file location

  Keys use dot notation, e.g.:
    backend.base_url    Chat server URL the client talks to
    server.port         Port the serve command listens on
    local.ollama_model  Model used for replies
    voice.command       External speech-to-text command
    ui.theme            dark, light, or auto

Serve Command:
  thatbot serve                     Start the chat server
    --port N                        Listen port (default from config)
    --host ADDR                     Bind address (default from config)
    --db PATH                       SQLite database path

Global Flags:
  --server URL    Chat server base URL (overrides config)
  --model NAME    Model override for serve
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          JSON output (ask, history, config, status, version)

Examples:
  thatbot                                    Start the TUI
  thatbot ask "What is the capital of France?"
  thatbot ask "Describe this image" --file photo.png
  cat error.log | thatbot ask                Question from stdin
  thatbot chat                               REPL with input history
  thatbot serve --port 5000                  Run the backend
  thatbot history --format md                Conversation as Markdown
  thatbot history --format json --output .   Save a JSON export
  thatbot config set local.ollama_model llava
  thatbot status                             Check backend health

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("thatbot version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

// parse is the testable core of Parse.
func parse(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	// No command: default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "serve", "server":
		parsedArgs.Raw = remaining[1:]
		return CmdServe, parsedArgs

	case "history", "hist":
		parsedArgs.Raw = remaining[1:]
		return CmdHistory, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: keep it for the error message and suggestion
		parsedArgs.Raw = append([]string{remaining[0]}, remaining[1:]...)
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsedArgs := Args{
		Options: make(map[string]string),
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--server":
			if i+1 < len(args) {
				i++
				parsedArgs.Server = args[i]
			}
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--server="):
				parsedArgs.Server = strings.TrimPrefix(arg, "--server=")
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments. Positional args
// after the command name join into the question.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 1
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--file="):
				args.File = strings.TrimPrefix(arg, "--file=")
			case strings.HasPrefix(arg, "-"):
				// Unknown flag: ignore rather than swallow into the question
			default:
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseConfigArgs parses config command specific arguments:
// config [show|path|set <key> <value>]
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) < 2 {
		args.Subcommand = "show"
		return
	}

	args.Subcommand = strings.ToLower(remaining[1])
	if args.Subcommand == "set" {
		if len(remaining) > 2 {
			args.ConfigKey = remaining[2]
		}
		if len(remaining) > 3 {
			args.ConfigVal = remaining[3]
		}
	}
}

// =============================================================================
// SMALL COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}

// HandleUnknown reports an unrecognized command, with a suggestion when
// the input is close to a real one.
func HandleUnknown(args Args) error {
	name := ""
	if len(args.Raw) > 0 {
		name = args.Raw[0]
	}

	msg := fmt.Sprintf("unknown command: %s", name)
	if suggestion := SuggestCommand(name); suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	fmt.Fprintln(os.Stderr, "Run 'thatbot help' for usage.")
	return fmt.Errorf("%s", msg)
}

// =============================================================================
// HANDLER WRAPPERS
// =============================================================================
// Wrappers that adapt error-returning handlers to process exit codes, so
// main stays a plain dispatch switch.

// HandleAsk handles the ask command with error handling.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the chat command with error handling.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleServe handles the serve command with error handling.
func HandleServe(args Args) {
	if err := HandleServeCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleHistory handles the history command with error handling.
func HandleHistory(args Args) {
	if err := HandleHistoryCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}
