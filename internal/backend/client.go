// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the chat backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeServer
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "backend is unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:5000)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// Timeout for history and chat requests (default: 120s).
	// Chat responses wait on LLM generation, so this is deliberately long.
	Timeout time.Duration

	// HealthTimeout for health probes (default: 5s)
	HealthTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:5000",
		Timeout:       120 * time.Second,
		HealthTimeout: 5 * time.Second,
	}
}

// maxResponseBytes caps how much of a backend response body is read.
const maxResponseBytes = 10 << 20

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the chat backend.
// It provides methods for fetching history, sending messages, and health checks.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient()
//	entries, err := client.History(ctx, sessionID)
//	if err != nil {
//	    log.Fatal("backend not available:", err)
//	}
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	healthClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.HealthTimeout == 0 {
		config.HealthTimeout = 5 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		healthClient: &http.Client{
			Timeout: config.HealthTimeout,
		},
	}
}

// =============================================================================
// HISTORY
// =============================================================================

// History fetches the stored conversation for a session, oldest first.
func (c *Client) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	endpoint := c.config.BaseURL + "/history?sessionId=" + url.QueryEscape(sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp, "history request failed")
	}

	var entries []HistoryEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&entries); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode history", Cause: err}
	}

	return entries, nil
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends one message (text plus optional attachment) and returns the
// bot's reply. Exactly one request is issued per call; there is no retry.
func (c *Client) Chat(ctx context.Context, chat ChatRequest) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("sessionId", chat.SessionID); err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}
	if err := writer.WriteField("message", chat.Message); err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}
	if len(chat.FileData) > 0 {
		part, err := writer.CreateFormFile("file", chat.FileName)
		if err != nil {
			return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode attachment", Cause: err}
		}
		if _, err := part.Write(chat.FileData); err != nil {
			return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode attachment", Cause: err}
		}
	}
	if err := writer.Close(); err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat", &buf)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", serverError(resp, "chat request failed")
	}

	var result chatReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode reply", Cause: err}
	}

	return result.Reply, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckHealth verifies that the backend is reachable and healthy.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.healthClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeServer,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}

	return nil
}

// Health fetches the backend's health payload. Unlike CheckHealth it
// returns the decoded body, so callers can report the server's own view
// of its store and model wiring.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.healthClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeServer,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read health response", Cause: err}
	}

	var info HealthInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to parse health response", Cause: err}
	}
	return &info, nil
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// serverError turns a non-2xx response into a ClientError, preferring the
// backend's own {error: ...} message when one is present.
func serverError(resp *http.Response, fallback string) *ClientError {
	var payload errorReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err == nil && payload.Error != "" {
		return &ClientError{Type: ErrTypeServer, Message: payload.Error}
	}
	return &ClientError{Type: ErrTypeServer, Message: fallback + ": " + resp.Status}
}

// IsUnreachable checks if an error indicates the backend could not be reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsServerError checks if an error carries a backend-reported failure.
func IsServerError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeServer
	}
	return false
}
