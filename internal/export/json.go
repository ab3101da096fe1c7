// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/thatbot/internal/backend"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders transcripts as indented JSON.
// JSON exports always carry the complete transcript so the output is a
// faithful, machine-readable copy of what the server returned.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a JSON exporter. Options are accepted for
// consistency with the other exporters; JSON output is not filtered.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// jsonTranscript is the serialized shape. It pins the field names so the
// output stays stable if the internal Transcript type grows.
type jsonTranscript struct {
	SessionID string                 `json:"session_id"`
	Server    string                 `json:"server,omitempty"`
	Exported  time.Time              `json:"exported"`
	Messages  int                    `json:"messages"`
	Entries   []backend.HistoryEntry `json:"entries"`
}

// Export converts a transcript to JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	entries := t.Entries
	if entries == nil {
		entries = []backend.HistoryEntry{}
	}

	return json.MarshalIndent(jsonTranscript{
		SessionID: t.SessionID,
		Server:    t.Server,
		Exported:  t.Fetched,
		Messages:  len(entries),
		Entries:   entries,
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
