// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter renders transcripts as plain text. This is the default
// format for "thatbot history" and is pipe-friendly: one labeled block
// per message, no styling.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a transcript to plain text.
func (e *TextExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("Session:  %s\n", t.SessionID))
		if t.Server != "" {
			sb.WriteString(fmt.Sprintf("Server:   %s\n", t.Server))
		}
		sb.WriteString(fmt.Sprintf("Messages: %d\n", len(t.Entries)))
		sb.WriteString(fmt.Sprintf("Exported: %s\n", formatTimestamp(t.Fetched)))
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n\n")
	}

	if len(t.Entries) == 0 {
		sb.WriteString("(no messages)\n")
		return []byte(sb.String()), nil
	}

	for _, entry := range t.Entries {
		sb.WriteString(senderLabel(entry.Sender))
		sb.WriteString(": ")
		sb.WriteString(entry.Text)
		sb.WriteString("\n")
		if entry.Image != "" {
			sb.WriteString(fmt.Sprintf("  [image: %s]\n", entry.Image))
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
