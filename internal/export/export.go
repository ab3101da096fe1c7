// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/thatbot/internal/backend"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is one session's history as fetched from the chat server,
// plus enough context to label the export.
type Transcript struct {
	// SessionID is the durable session identifier.
	SessionID string

	// Server is the backend base URL the history came from.
	Server string

	// Fetched is when the history was retrieved.
	Fetched time.Time

	// Entries are the messages, oldest first, in server order.
	Entries []backend.HistoryEntry
}

// NewTranscript builds a Transcript stamped with the current time.
func NewTranscript(sessionID, server string, entries []backend.HistoryEntry) *Transcript {
	return &Transcript{
		SessionID: sessionID,
		Server:    server,
		Fetched:   time.Now(),
		Entries:   entries,
	}
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a transcript into one target format.
type Exporter interface {
	// Export converts a transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the extension for saved files (e.g. ".md").
	FileExtension() string

	// MimeType returns the MIME type of the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds a header with session id, server, and counts.
	IncludeMetadata bool

	// OutputDir is where WriteFile saves exports. Default: current directory.
	OutputDir string
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		OutputDir:       ".",
	}
}

// ForFormat returns the exporter for a format name. Accepted names:
// md/markdown, json, text/txt.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "text", "txt", "":
		return NewTextExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (valid: md, json, text)", format)
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteFile exports a transcript and saves it under opts.OutputDir.
// Returns the written file path.
func WriteFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("thatbot_%s_%s%s",
		sanitizeFilename(sessionTail(t.SessionID)),
		stamp,
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return outputPath, nil
}

// sanitizeFilename strips characters that are unsafe in file names.
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return "session"
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}

// sessionTail returns the trailing random component of a session id,
// or the whole id when it does not follow the session_<ts>_<rand> shape.
func sessionTail(id string) string {
	if i := strings.LastIndex(id, "_"); i >= 0 && i+1 < len(id) {
		return id[i+1:]
	}
	return id
}

// =============================================================================
// SHARED FORMATTING
// =============================================================================

// senderLabel maps a wire sender to a display name.
func senderLabel(sender string) string {
	switch sender {
	case "user":
		return "You"
	case "bot":
		return "ThatBot"
	default:
		return sender
	}
}

// formatTimestamp renders a human-readable timestamp.
func formatTimestamp(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}
