// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders transcripts as Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("session: %s\n", t.SessionID))
		if t.Server != "" {
			sb.WriteString(fmt.Sprintf("server: %s\n", t.Server))
		}
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.Entries)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", t.Fetched.Format(time.RFC3339)))
		sb.WriteString("generator: thatbot\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# ThatBot Conversation\n\n")

	if len(t.Entries) == 0 {
		sb.WriteString("_No messages yet._\n")
		return []byte(sb.String()), nil
	}

	for i, entry := range t.Entries {
		sb.WriteString(fmt.Sprintf("### %s\n\n", senderLabel(entry.Sender)))
		sb.WriteString(escapeMarkdown(entry.Text))
		sb.WriteString("\n")
		if entry.Image != "" {
			sb.WriteString(fmt.Sprintf("\n![attachment](%s)\n", entry.Image))
		}
		if i < len(t.Entries)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown neutralizes heading markers at line starts so message
// text cannot restructure the document. Inline formatting is left alone;
// a chat message rendering bold or code is harmless.
func escapeMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = "\\" + line
		}
	}
	return strings.Join(lines, "\n")
}
