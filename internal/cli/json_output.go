// json_output.go - JSON output support for scripting and automation.
//
// Provides a standardized JSON output format for CLI commands so the
// output of ask, history, config, status, and version can be piped
// into jq or other tooling without scraping styled text.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/thatbot/internal/backend"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponseStr creates a new error JSON response from a string.
func NewJSONErrorResponseStr(command string, errMsg string) *JSONResponse {
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// StderrPrint prints a message to stderr (for human-readable output in JSON mode).
func StderrPrint(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// StderrPrintln prints a line to stderr (for human-readable output in JSON mode).
func StderrPrintln(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// StatusData represents the data returned by the status command.
type StatusData struct {
	Session StatusSessionInfo `json:"session"`
	Backend StatusBackendInfo `json:"backend"`
	Config  StatusConfigInfo  `json:"config"`
}

// StatusSessionInfo contains session information for the status command.
type StatusSessionInfo struct {
	ID       string `json:"id"`
	File     string `json:"file"`
	Messages int    `json:"messages,omitempty"`
}

// StatusBackendInfo contains chat server health for the status command.
// The nested fields come from the server's own health report and are
// empty when the server is unreachable.
type StatusBackendInfo struct {
	URL           string `json:"url"`
	Reachable     bool   `json:"reachable"`
	Status        string `json:"status,omitempty"`
	Version       string `json:"version,omitempty"`
	Model         string `json:"model,omitempty"`
	Store         string `json:"store,omitempty"`
	Ollama        string `json:"ollama,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
	Error         string `json:"error,omitempty"`
}

// StatusConfigInfo contains the configuration summary for the status command.
type StatusConfigInfo struct {
	Path        string `json:"path"`
	Theme       string `json:"theme"`
	OllamaModel string `json:"ollama_model"`
	VoiceInput  bool   `json:"voice_input"`
}

// AskData represents the data returned by the ask command.
type AskData struct {
	Question   string `json:"question"`
	Response   string `json:"response"`
	SessionID  string `json:"session_id"`
	Attachment string `json:"attachment,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// HistoryData represents the data returned by the history command.
type HistoryData struct {
	SessionID string                 `json:"session_id"`
	Server    string                 `json:"server"`
	Messages  int                    `json:"messages"`
	Format    string                 `json:"format"`
	Output    string                 `json:"output,omitempty"`
	Entries   []backend.HistoryEntry `json:"entries"`
}

// ConfigData represents the data returned by the config show command.
type ConfigData struct {
	Server  ConfigServerInfo  `json:"server"`
	Backend ConfigBackendInfo `json:"backend"`
	Local   ConfigLocalInfo   `json:"local"`
	Uploads ConfigUploadsInfo `json:"uploads"`
	Voice   ConfigVoiceInfo   `json:"voice"`
	UI      ConfigUIInfo      `json:"ui"`
	Path    string            `json:"config_path"`
}

// ConfigServerInfo contains serve command configuration.
type ConfigServerInfo struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	RatePerMinute int    `json:"rate_per_minute"`
	RateBurst     int    `json:"rate_burst"`
}

// ConfigBackendInfo contains chat server client configuration.
type ConfigBackendInfo struct {
	BaseURL           string `json:"base_url"`
	TimeoutSecs       int    `json:"timeout_secs"`
	HealthTimeoutSecs int    `json:"health_timeout_secs"`
}

// ConfigLocalInfo contains local inference configuration.
type ConfigLocalInfo struct {
	OllamaURL   string `json:"ollama_url"`
	OllamaModel string `json:"ollama_model"`
	TimeoutSecs int    `json:"timeout_secs"`
	AutoStart   bool   `json:"auto_start"`
}

// ConfigUploadsInfo contains upload storage configuration.
type ConfigUploadsInfo struct {
	Dir      string `json:"dir"`
	MaxBytes int64  `json:"max_bytes"`
}

// ConfigVoiceInfo contains voice input configuration (command only,
// never the captured audio).
type ConfigVoiceInfo struct {
	Command     string `json:"command"`
	TimeoutSecs int    `json:"timeout_secs"`
}

// ConfigUIInfo contains terminal UI configuration.
type ConfigUIInfo struct {
	Theme       string `json:"theme"`
	CompactMode bool   `json:"compact_mode"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
