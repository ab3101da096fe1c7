// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the thatbot CLI.
//
// Handles the "thatbot chat" command which provides an interactive REPL
// for the conversation, backed by the same controller the TUI uses.
//
// Command: chat
// Short:   Start an interactive chat session
// Aliases: (none)
//
// Examples:
//   thatbot chat                       Chat against the configured server
//   thatbot chat --server http://127.0.0.1:5000
//
// Flags:
//   --server URL        Chat server base URL (overrides config)
//   -v, --verbose       Verbose output
//   -q, --quiet         Minimal output
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /history            Show the conversation so far
//   /attach <path>      Stage an image for the next message
//   /detach             Clear the staged image
//   /voice              Start or stop voice capture
//   /session, /s        Show session and server info
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel the reply in flight
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/thatbot/internal/backend"
	"github.com/jeranaias/thatbot/internal/config"
	"github.com/jeranaias/thatbot/internal/controller"
	"github.com/jeranaias/thatbot/internal/ui/styles"
	"github.com/jeranaias/thatbot/internal/voice"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	// Info style
	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// Command style
	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// Warning style
	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	// Session summary header
	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	// Get history file path in config directory
	configDir, err := config.ConfigDir()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	// Load existing history
	cli.LoadHistory()

	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	// Add non-empty input to history
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists input history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	// Ensure config directory exists
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	// Create file with secure permissions (0600 - owner read/write only)
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	// Controller owns the conversation state, shared with the TUI
	Controller *controller.Controller

	// Client is the chat server client behind the controller
	Client *backend.Client

	// Configuration
	Config    *config.Config
	ServerURL string
	Quiet     bool
	Verbose   bool

	// Tracking
	StartTime time.Time
	Sent      int

	// Cancel function for the send in flight
	CancelFunc context.CancelFunc

	// Input history handler
	InputCLI *ChatCLI
}

// NewChatSession creates a new chat session wired to the configured server.
func NewChatSession(args Args) *ChatSession {
	cfg := config.Global()

	baseURL := cfg.Backend.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:       baseURL,
		Timeout:       time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		HealthTimeout: time.Duration(cfg.Backend.HealthTimeoutSecs) * time.Second,
	})

	recognizer := voice.New(cfg.Voice.Command, time.Duration(cfg.Voice.TimeoutSecs)*time.Second)

	ctrl := controller.New(controller.Options{
		Sessions:   openSessionStore(),
		Backend:    client,
		Recognizer: recognizer,
	})

	return &ChatSession{
		Controller: ctrl,
		Client:     client,
		Config:     cfg,
		ServerURL:  baseURL,
		Quiet:      args.Quiet,
		Verbose:    args.Verbose,
		StartTime:  time.Now(),
		InputCLI:   NewChatCLI(),
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
func HandleChatCommand(args Args) error {
	// The REPL needs a terminal on stdin; piped input belongs to "ask"
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	sess := NewChatSession(args)

	ctx := context.Background()

	// Fail fast when the server is down instead of waiting out the
	// full chat timeout
	if err := sess.Client.CheckHealth(ctx); err != nil {
		return fmt.Errorf("chat server is not reachable at %s (start it with: thatbot serve): %w", sess.ServerURL, err)
	}

	// Bootstrap the session and pull the stored conversation
	if err := sess.Controller.Activate(ctx); err != nil {
		return fmt.Errorf("session activation failed: %w", err)
	}

	// Show welcome message
	if !sess.Quiet {
		printWelcome(sess)
	}

	// Ensure input history is saved on exit
	defer sess.InputCLI.Close()

	// Set up signal handling for graceful Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle signals in a goroutine
	go func() {
		for sig := range sigChan {
			if sig == os.Interrupt || sig == syscall.SIGTERM {
				// First Ctrl+C cancels the reply in flight
				if sess.CancelFunc != nil {
					sess.CancelFunc()
					sess.CancelFunc = nil
					fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
				}
			}
		}
	}()

	// Main REPL loop using liner for input history
	for {
		// Read input with history support
		input, err := sess.InputCLI.ReadInput(promptStyle.Render("thatbot> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C pressed - exit gracefully
				fmt.Println()
				printExitSummary(sess)
				return nil
			}
			// EOF (Ctrl+D) or other error - exit gracefully
			fmt.Println()
			printExitSummary(sess)
			return nil
		}

		input = strings.TrimSpace(input)

		// Skip empty input
		if input == "" {
			continue
		}

		// Handle slash commands
		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, sess)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n",
					errorStyle.Render("[Error]"),
					err)
			}
			if !shouldContinue {
				printExitSummary(sess)
				return nil
			}
			continue
		}

		// Handle exit/quit without slash
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(sess)
			return nil
		}

		// Process the message
		if err := sendMessage(sess, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n",
				errorStyle.Render("[Error]"),
				err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// sendMessage dispatches one message through the controller and prints the
// reply. Transport failures come back as a synthesized bot message, so a
// returned error here means the send never left.
func sendMessage(sess *ChatSession, input string) error {
	if sess.Controller.Status() == controller.StatusError {
		return fmt.Errorf("session is unusable: %s", sess.Controller.FatalError())
	}

	// Mention the staged attachment before it is consumed by the send
	if att := sess.Controller.Attachment(); att != nil && !sess.Quiet {
		fmt.Printf("%s Sending with %s (%s)\n",
			infoStyle.Render("[+]"),
			att.Name,
			formatBytes(int64(len(att.Data))))
	}

	// Create cancellable context so Ctrl+C can abort the round trip
	ctx, cancel := context.WithCancel(context.Background())
	sess.CancelFunc = cancel
	defer func() {
		sess.CancelFunc = nil
		cancel()
	}()

	before := len(sess.Controller.Messages())
	startTime := time.Now()

	fmt.Println() // Space before response

	if !sess.Controller.Send(ctx, input) {
		return fmt.Errorf("message not sent (session not ready)")
	}
	sess.Sent++

	// The send appended the user entry and exactly one bot entry
	messages := sess.Controller.Messages()
	for _, msg := range messages[before:] {
		if msg.Sender != controller.SenderBot {
			continue
		}
		displayReply(msg.Text)
	}

	fmt.Println() // Extra space after response

	// Show brief stats (unless quiet)
	if !sess.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			infoStyle.Render("[Time]"),
			formatDurationShort(time.Since(startTime)))
	}

	return nil
}

// displayReply prints a bot reply, rendered as Markdown and wrapped to the
// terminal when stdout is a TTY.
func displayReply(content string) {
	if !IsStdoutTTY() {
		fmt.Println(content)
		return
	}

	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		fmt.Println(content)
		return
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		fmt.Println(content)
		return
	}
	fmt.Print(rendered)
}

// flushNotices prints validation notices queued by the controller.
func flushNotices(sess *ChatSession) {
	for _, notice := range sess.Controller.Notices() {
		fmt.Printf("%s %s\n", warningStyle.Render("[!]"), notice)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, sess *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printHelp()
		return true, nil

	case "/history":
		printHistory(sess)
		return true, nil

	case "/attach", "/a":
		return handleAttachCommand(sess, args)

	case "/detach":
		sess.Controller.ClearAttachment()
		fmt.Println(commandStyle.Render("[Attachment cleared]"))
		return true, nil

	case "/voice":
		return handleVoiceCommand(sess)

	case "/session", "/s":
		printSessionInfo(sess)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		// Just "/" shows help
		printHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleAttachCommand handles the /attach command.
func handleAttachCommand(sess *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		if att := sess.Controller.Attachment(); att != nil {
			fmt.Printf("%s %s (%s)\n",
				infoStyle.Render("[Attached]"),
				commandStyle.Render(att.Name),
				formatBytes(int64(len(att.Data))))
		} else {
			fmt.Println(infoStyle.Render("[Nothing attached]"))
		}
		return true, nil
	}

	// Paths may contain spaces; everything after the command is the path
	path := strings.Join(args, " ")

	name, data, err := readAttachment(path, sess.Config.Uploads.MaxBytes)
	if err != nil {
		return true, err
	}

	sess.Controller.SelectAttachment(name, data)
	flushNotices(sess)
	return true, nil
}

// handleVoiceCommand handles the /voice command. The first call starts
// capture, the second stops it and sends the transcript.
func handleVoiceCommand(sess *ChatSession) (bool, error) {
	transcript, wasListening := sess.Controller.ToggleListening()
	flushNotices(sess)

	if !wasListening {
		if sess.Controller.Listening() {
			fmt.Println(infoStyle.Render("[Listening] Speak now, then /voice again to finish"))
		}
		return true, nil
	}

	if transcript != "" {
		fmt.Printf("%s %s\n", promptStyle.Render("You (voice):"), transcript)
		return true, sendMessage(sess, transcript)
	}

	return true, nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(sess *ChatSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("ThatBot interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Server:"),
		commandStyle.Render(sess.ServerURL))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Session:"),
		commandStyle.Render(sess.Controller.SessionID()))
	fmt.Printf("%s %d messages\n",
		infoStyle.Render("History:"),
		len(sess.Controller.Messages()))

	if sess.Controller.VoiceAvailable() {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Voice:"),
			commandStyle.Render("available (/voice)"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printHelp prints available commands.
func printHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Show the conversation so far"},
		{"/attach <path>", "Stage an image for the next message"},
		{"/detach", "Clear the staged image"},
		{"/voice", "Start or stop voice capture"},
		{"/session, /s", "Show session and server info"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels a reply in flight, Ctrl+D exits"))
	fmt.Println()
}

// printSessionInfo prints session and server details.
func printSessionInfo(sess *ChatSession) {
	elapsed := time.Since(sess.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Info"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Session:"),
		commandStyle.Render(sess.Controller.SessionID()))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Server:"),
		commandStyle.Render(sess.ServerURL))
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("History:"),
		len(sess.Controller.Messages()))

	if att := sess.Controller.Attachment(); att != nil {
		fmt.Printf("  %s %s (%s)\n",
			infoStyle.Render("Attachment:"),
			commandStyle.Render(att.Name),
			formatBytes(int64(len(att.Data))))
	} else {
		fmt.Printf("  %s none\n",
			infoStyle.Render("Attachment:"))
	}

	if sess.Controller.VoiceAvailable() {
		fmt.Printf("  %s available\n",
			infoStyle.Render("Voice:"))
	} else {
		fmt.Printf("  %s not configured\n",
			infoStyle.Render("Voice:"))
	}

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())

	fmt.Println()
}

// printHistory prints the conversation so far.
func printHistory(sess *ChatSession) {
	messages := sess.Controller.Messages()
	if len(messages) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Conversation History"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, msg := range messages {
		label := msg.Sender.DisplayName()
		switch msg.Sender {
		case controller.SenderUser:
			label = lipgloss.NewStyle().Foreground(styles.Cyan).Render(label)
		case controller.SenderBot:
			label = lipgloss.NewStyle().Foreground(styles.Indigo).Render(label)
		}

		content := strings.ReplaceAll(msg.Preview(100), "\n", " ")

		image := msg.Image
		if image == "" {
			image = msg.AttachmentName
		}
		if image != "" {
			content += " " + infoStyle.Render("[image: "+image+"]")
		}

		fmt.Printf("  %d. %s: %s\n", i+1, label, content)
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(sess *ChatSession) {
	// Skip if nothing was sent
	if sess.Sent == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(sess.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n",
		infoStyle.Render("Sent:"),
		sess.Sent)
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("Conversation:"),
		len(sess.Controller.Messages()))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
