// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller holds the UI-free chat session state machine.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/jeranaias/thatbot/internal/backend"
	"github.com/jeranaias/thatbot/internal/model"
	"github.com/jeranaias/thatbot/internal/voice"
)

// =============================================================================
// TYPES
// =============================================================================

// The conversation data structures live in the model package; the
// controller re-exports the names its callers consume.
type (
	Message    = model.Message
	Sender     = model.Sender
	Attachment = model.PendingAttachment
	Status     = model.AppStatus
)

// Message senders
const (
	SenderUser = model.SenderUser
	SenderBot  = model.SenderBot
)

// Lifecycle states
const (
	StatusLoading = model.StatusLoading
	StatusReady   = model.StatusReady
	StatusError   = model.StatusError
)

// DefaultGreeting seeds an empty conversation with the bot's introduction
const DefaultGreeting = "Hello! I'm ThatBot. How can I help you today?"

// SessionSource produces the durable session identifier
type SessionSource interface {
	Bootstrap() (string, error)
}

// Backend is the slice of the chat API the controller needs
type Backend interface {
	History(ctx context.Context, sessionID string) ([]backend.HistoryEntry, error)
	Chat(ctx context.Context, req backend.ChatRequest) (string, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Options configures a Controller
type Options struct {
	// Sessions provides the durable session id (required)
	Sessions SessionSource

	// Backend is the chat API client (required)
	Backend Backend

	// Recognizer captures voice input. Nil gets the null recognizer.
	Recognizer voice.Recognizer

	// Greeting overrides the message seeded into an empty conversation
	Greeting string
}

// Controller owns the conversation state: session id, message log, pending
// attachment, composer text, and the busy flag that serializes sends.
// All methods are safe for concurrent use.
type Controller struct {
	sessions   SessionSource
	backend    Backend
	recognizer voice.Recognizer
	greeting   string

	mu        sync.Mutex
	status    Status
	busy      bool
	activated bool
	sessionID string
	messages  *model.ConversationLog
	slot      model.AttachmentSlot
	input     string
	fatal     string
	notices   []string
}

// New creates a Controller. Zero-value options get defaults where one
// exists; Sessions and Backend are required.
func New(opts Options) *Controller {
	if opts.Recognizer == nil {
		opts.Recognizer = voice.NullRecognizer{}
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}

	return &Controller{
		sessions:   opts.Sessions,
		backend:    opts.Backend,
		recognizer: opts.Recognizer,
		greeting:   opts.Greeting,
		status:     StatusLoading,
		messages:   model.NewConversationLog(),
	}
}

// =============================================================================
// ACTIVATION
// =============================================================================

// Activate bootstraps the session id and fetches history exactly once.
// An empty history seeds the greeting. Any failure is terminal: the
// controller enters the error state and sends stay unreachable.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.activated {
		c.mu.Unlock()
		return nil
	}
	c.activated = true
	c.mu.Unlock()

	id, err := c.sessions.Bootstrap()
	if err != nil {
		c.enterError(fmt.Sprintf("Could not prepare a chat session: %v", err))
		return err
	}

	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()

	entries, err := c.backend.History(ctx, id)
	if err != nil {
		c.enterError(fmt.Sprintf("Could not load conversation history: %s", failureReason(err)))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(entries) == 0 {
		c.messages.AppendBot(c.greeting)
	} else {
		for _, e := range entries {
			msg := model.NewMessage(model.ParseSender(e.Sender), e.Text)
			msg.Image = e.Image
			c.messages.Append(msg)
		}
	}
	c.status = StatusReady

	log.Printf("SESSION_READY | session=%s history=%d", id, len(entries))
	return nil
}

func (c *Controller) enterError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusError
	c.fatal = msg
	log.Printf("SESSION_FAILED | reason=%q", msg)
}

// =============================================================================
// SEND PIPELINE
// =============================================================================

// Send dispatches one chat message. It reports whether a request was
// dispatched: sends while busy, while not ready, or with nothing to say are
// no-ops. A dispatched send always produces exactly one bot entry, either
// the reply or a synthesized message carrying the failure reason; transport
// errors never reach the caller any other way.
func (c *Controller) Send(ctx context.Context, text string) bool {
	c.mu.Lock()

	if !c.status.CanSend() || c.busy {
		c.mu.Unlock()
		return false
	}
	if strings.TrimSpace(text) == "" && !c.slot.HasPending() {
		c.mu.Unlock()
		return false
	}

	// Busy goes up before anything blocks, and the slot and composer are
	// consumed before the round trip starts.
	c.busy = true
	att := c.slot.Take()
	c.input = ""

	userMsg := c.messages.AppendUser(text)
	if att != nil {
		userMsg.AttachmentName = att.Name
	}

	id := c.sessionID
	c.mu.Unlock()

	req := backend.ChatRequest{SessionID: id, Message: text}
	if att != nil {
		req.FileName = att.Name
		req.FileData = att.Data
	}

	reply, err := c.backend.Chat(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		reason := failureReason(err)
		c.messages.AppendBot(fmt.Sprintf("Sorry, something went wrong: %s", reason))
		log.Printf("SEND_FAILED | session=%s reason=%q", id, reason)
	} else {
		c.messages.AppendBot(reply)
	}
	c.busy = false
	return true
}

// failureReason flattens a chat API error into text fit for the log entry
func failureReason(err error) string {
	var ce *backend.ClientError
	if errors.As(err, &ce) {
		switch ce.Type {
		case backend.ErrTypeTimeout:
			return "the request timed out"
		case backend.ErrTypeUnreachable:
			return "the chat server is unreachable"
		}
		if ce.Message != "" {
			return ce.Message
		}
	}
	return err.Error()
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// SelectAttachment stages an image for the next send. Non-image payloads
// are rejected with a validation notice and leave the slot unchanged.
// A second image replaces the first.
func (c *Controller) SelectAttachment(name string, data []byte) bool {
	if len(data) == 0 {
		c.pushNotice(fmt.Sprintf("%s is empty, not attaching", name))
		return false
	}

	c.mu.Lock()
	err := c.slot.Select(name, data)
	c.mu.Unlock()

	if err != nil {
		c.pushNotice(fmt.Sprintf("Only images can be attached (%s looks like %s)", name, http.DetectContentType(data)))
		return false
	}

	c.pushNotice(fmt.Sprintf("Attached %s", name))
	return true
}

// ClearAttachment empties the slot. Clearing an empty slot is fine.
func (c *Controller) ClearAttachment() {
	c.mu.Lock()
	c.slot.Clear()
	c.mu.Unlock()
}

// Attachment returns a copy of the staged image, or nil
func (c *Controller) Attachment() *Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	att := c.slot.Get()
	if att == nil {
		return nil
	}
	cp := *att
	return &cp
}

// =============================================================================
// VOICE
// =============================================================================

// ToggleListening starts voice capture, or stops it and returns the final
// transcript. A non-empty transcript replaces the composer text. Without a
// configured recognizer this is a no-op beyond a notice.
func (c *Controller) ToggleListening() (string, bool) {
	if !c.recognizer.Available() {
		c.pushNotice("Voice input is not available")
		return "", false
	}

	if c.recognizer.Listening() {
		transcript, err := c.recognizer.Stop()
		if err != nil {
			c.pushNotice(fmt.Sprintf("Voice capture failed: %v", err))
			return "", true
		}
		if transcript == "" {
			c.pushNotice("No speech detected")
			return "", true
		}
		c.mu.Lock()
		c.input = transcript
		c.mu.Unlock()
		return transcript, true
	}

	if err := c.recognizer.Start(); err != nil {
		c.pushNotice(fmt.Sprintf("Could not start voice capture: %v", err))
	}
	return "", false
}

// Listening reports whether a voice capture session is active
func (c *Controller) Listening() bool {
	return c.recognizer.Listening()
}

// VoiceAvailable reports whether voice input is configured
func (c *Controller) VoiceAvailable() bool {
	return c.recognizer.Available()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Status returns the lifecycle state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Busy reports whether a send is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// SessionID returns the bootstrapped session id, empty before Activate
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Messages returns a snapshot copy of the conversation log
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, 0, c.messages.Len())
	for _, m := range c.messages.Messages() {
		out = append(out, *m)
	}
	return out
}

// FatalError returns the terminal error description, empty unless
// status is error
func (c *Controller) FatalError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal
}

// SetInput replaces the composer text
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// Input returns the composer text
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// =============================================================================
// NOTICES
// =============================================================================

// pushNotice queues a transient user-facing message
func (c *Controller) pushNotice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, msg)
}

// Notices drains and returns queued validation notices
func (c *Controller) Notices() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}
