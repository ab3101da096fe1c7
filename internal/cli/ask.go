// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the thatbot CLI.
//
// Handles the "thatbot ask" command which sends one message to the chat
// server and prints the reply to stdout.
//
// Command: ask [question]
// Short:   Ask a one-shot question
// Aliases: (none)
//
// Examples:
//   thatbot ask "What is the capital of France?"
//   thatbot ask "Describe this image" --file photo.png
//   thatbot ask --json "List three uses for a brick"
//   cat error.log | thatbot ask
//
// Flags:
//   -f, --file FILE     Attach an image to the message
//   --json              Output response as JSON
//   -v, --verbose       Verbose output
//   -q, --quiet         Minimal output
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thatbot/internal/backend"
	"github.com/jeranaias/thatbot/internal/config"
	"github.com/jeranaias/thatbot/internal/session"
	"github.com/jeranaias/thatbot/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse displays a response with markdown rendering when appropriate.
// Only renders markdown when stdout is a TTY to avoid corrupting piped output.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// =============================================================================
// STYLES
// =============================================================================

var (
	// Notice style for [+] progress lines on stderr
	noticeStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	// Waiting indicator style
	thinkingStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// Summary label style
	summaryLabelStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary)

	// Summary value style
	summaryValueStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald)
)

// =============================================================================
// ATTACHMENT READING
// =============================================================================

// readAttachment reads an image file for sending with the message.
// The same rules the server applies are enforced here first: the payload
// must sniff as an image and fit the configured upload limit.
func readAttachment(path string, maxBytes int64) (string, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("cannot read attachment: %w", err)
	}

	if maxBytes > 0 && info.Size() > maxBytes {
		return "", nil, fmt.Errorf("attachment too large: %s (max %s)",
			formatBytes(info.Size()), formatBytes(maxBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("cannot read attachment: %w", err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", nil, NewValidationError("attachment", path,
			fmt.Sprintf("only images can be attached (%s looks like %s)", filepath.Base(path), mime))
	}

	return filepath.Base(path), data, nil
}

// =============================================================================
// SESSION STORE
// =============================================================================

// openSessionStore returns the durable session store, falling back to a
// temp-dir store when the home directory is unavailable.
func openSessionStore() *session.Store {
	sessions, err := session.NewStore()
	if err != nil {
		return session.NewStoreAt(filepath.Join(os.TempDir(), "thatbot_session.json"))
	}
	return sessions
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: one message in, one reply out.
// The exchange still lands in the durable conversation, so a later
// "thatbot history" or the TUI will show it.
func HandleAskCommand(args Args) error {
	cfg := config.Global()

	// Get the question from args.Query (built by parseAskArgs from positional args)
	question := args.Query

	// If no question from args, try reading from stdin (for piped input)
	if question == "" {
		// Check if stdin has data (is a pipe, not a terminal)
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			// Stdin is a pipe, read from it
			reader := bufio.NewReader(os.Stdin)
			stdinData, err := io.ReadAll(reader)
			if err == nil && len(stdinData) > 0 {
				question = strings.TrimSpace(string(stdinData))
				if !args.Quiet {
					fmt.Fprintf(os.Stderr, "%s Read question from stdin (%d bytes)\n",
						noticeStyle.Render("[+]"),
						len(stdinData))
				}
			}
		}
	}

	if question == "" {
		err := ErrMissingArgument("question", `thatbot ask "What is the capital of France?"`)
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		return err
	}

	// Read the optional image attachment
	var fileName string
	var fileData []byte
	if args.File != "" {
		var err error
		fileName, fileData, err = readAttachment(args.File, cfg.Uploads.MaxBytes)
		if err != nil {
			if args.JSON {
				resp := NewJSONErrorResponse("ask", err)
				resp.Print()
			}
			return err
		}

		if !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Attaching %s (%s)\n",
				noticeStyle.Render("[+]"),
				fileName,
				formatBytes(int64(len(fileData))))
		}
	}

	// Build the chat server client, honoring a --server override
	baseURL := cfg.Backend.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}
	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:       baseURL,
		Timeout:       time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		HealthTimeout: time.Duration(cfg.Backend.HealthTimeoutSecs) * time.Second,
	})

	// Reuse the durable session so the exchange joins the conversation
	sessionID, err := openSessionStore().Bootstrap()
	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		return fmt.Errorf("session bootstrap failed: %w", err)
	}

	ctx := context.Background()

	// Fail fast when the server is down instead of waiting out the
	// full chat timeout
	if err := client.CheckHealth(ctx); err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		return fmt.Errorf("chat server is not reachable at %s (start it with: thatbot serve): %w", baseURL, err)
	}

	if args.Verbose && !args.JSON {
		fmt.Fprintf(os.Stderr, "%s %s -> %s\n",
			noticeStyle.Render("Server:"),
			baseURL,
			sessionID)
	}

	// Waiting indicator on stderr so piped stdout stays clean
	showThinking := !args.Quiet && !args.JSON && IsStderrTTY()
	if showThinking {
		StderrPrint("%s", thinkingStyle.Render("Thinking..."))
	}

	startTime := time.Now()
	reply, err := client.Chat(ctx, backend.ChatRequest{
		SessionID: sessionID,
		Message:   question,
		FileName:  fileName,
		FileData:  fileData,
	})
	duration := time.Since(startTime)

	if showThinking {
		StderrPrint("\r%s\r", strings.Repeat(" ", len("Thinking...")))
	}

	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		return fmt.Errorf("chat request failed: %w", err)
	}

	// JSON output mode
	if args.JSON {
		data := AskData{
			Question:   question,
			Response:   reply,
			SessionID:  sessionID,
			Attachment: fileName,
			DurationMs: duration.Milliseconds(),
		}

		resp := NewJSONResponse("ask", data)
		return resp.Print()
	}

	// Render markdown on TTY, stream plain text for pipes
	displayResponse(reply)

	// Ensure newline after response
	if !strings.HasSuffix(reply, "\n") && !IsStdoutTTY() {
		fmt.Println()
	}

	// Show timing summary (unless --quiet)
	if !args.Quiet {
		fmt.Printf("%s %s\n",
			summaryLabelStyle.Render("Time:"),
			summaryValueStyle.Render(formatDurationShort(duration)))
	}

	return nil
}
