// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/thatbot/internal/backend"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSessions struct {
	id    string
	err   error
	calls int
}

func (f *fakeSessions) Bootstrap() (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type fakeBackend struct {
	mu           sync.Mutex
	history      []backend.HistoryEntry
	historyErr   error
	historyCalls int
	reply        string
	chatErr      error
	chatCalls    int
	lastReq      backend.ChatRequest
	block        chan struct{}
}

func (f *fakeBackend) History(ctx context.Context, sessionID string) ([]backend.HistoryEntry, error) {
	f.mu.Lock()
	f.historyCalls++
	f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeBackend) Chat(ctx context.Context, req backend.ChatRequest) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.lastReq = req
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.reply, nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls
}

func (f *fakeBackend) last() backend.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

type fakeRecognizer struct {
	available  bool
	listening  bool
	transcript string
	stopErr    error
}

func (f *fakeRecognizer) Available() bool { return f.available }

func (f *fakeRecognizer) Start() error {
	f.listening = true
	return nil
}

func (f *fakeRecognizer) Stop() (string, error) {
	f.listening = false
	return f.transcript, f.stopErr
}

func (f *fakeRecognizer) Listening() bool { return f.listening }

// =============================================================================
// HELPERS
// =============================================================================

const testSessionID = "session_1700000000000_aabbccddeeff0011"

func newReadyController(t *testing.T, fb *fakeBackend) *Controller {
	t.Helper()
	c := New(Options{
		Sessions: &fakeSessions{id: testSessionID},
		Backend:  fb,
	})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	return c
}

func pngData() []byte {
	sig := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(sig, make([]byte, 32)...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// =============================================================================
// ACTIVATION
// =============================================================================

func TestActivate_EmptyHistorySeedsGreeting(t *testing.T) {
	c := newReadyController(t, &fakeBackend{})

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Messages() length = %d, want 1", len(msgs))
	}
	if msgs[0].Sender != SenderBot {
		t.Errorf("Greeting sender = %q, want %q", msgs[0].Sender, SenderBot)
	}
	if msgs[0].Text != DefaultGreeting {
		t.Errorf("Greeting text = %q, want %q", msgs[0].Text, DefaultGreeting)
	}
	if c.Status() != StatusReady {
		t.Errorf("Status() = %v, want ready", c.Status())
	}
}

func TestActivate_PopulatesHistoryInOrder(t *testing.T) {
	fb := &fakeBackend{history: []backend.HistoryEntry{
		{Sender: "user", Text: "hi"},
		{Sender: "bot", Text: "hello", Image: "http://127.0.0.1:5000/uploads/x.png"},
	}}
	c := newReadyController(t, fb)

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Messages() length = %d, want 2", len(msgs))
	}
	if msgs[0].Sender != "user" || msgs[0].Text != "hi" {
		t.Errorf("First message = %+v, want user/hi", msgs[0])
	}
	if msgs[1].Image != "http://127.0.0.1:5000/uploads/x.png" {
		t.Errorf("Image URL not carried over, got %q", msgs[1].Image)
	}
}

func TestActivate_HistoryFailureIsTerminal(t *testing.T) {
	fb := &fakeBackend{historyErr: &backend.ClientError{
		Type:    backend.ErrTypeUnreachable,
		Message: "backend is unreachable",
	}}
	c := New(Options{
		Sessions: &fakeSessions{id: testSessionID},
		Backend:  fb,
	})

	if err := c.Activate(context.Background()); err == nil {
		t.Fatal("Activate() should return the history error")
	}

	if c.Status() != StatusError {
		t.Errorf("Status() = %v, want error", c.Status())
	}
	if len(c.Messages()) != 0 {
		t.Errorf("Messages() should stay unpopulated, got %d entries", len(c.Messages()))
	}
	if !strings.Contains(c.FatalError(), "unreachable") {
		t.Errorf("FatalError() = %q, should carry the reason", c.FatalError())
	}

	// Sends are unreachable from the error state
	if c.Send(context.Background(), "hello") {
		t.Error("Send() from error state should be a no-op")
	}
	if fb.calls() != 0 {
		t.Errorf("Chat calls = %d, want 0", fb.calls())
	}
}

func TestActivate_BootstrapFailureIsTerminal(t *testing.T) {
	fb := &fakeBackend{}
	c := New(Options{
		Sessions: &fakeSessions{err: errors.New("disk is read-only")},
		Backend:  fb,
	})

	if err := c.Activate(context.Background()); err == nil {
		t.Fatal("Activate() should return the bootstrap error")
	}
	if c.Status() != StatusError {
		t.Errorf("Status() = %v, want error", c.Status())
	}
	if fb.historyCalls != 0 {
		t.Errorf("History calls = %d, history must not run without a session id", fb.historyCalls)
	}
}

func TestActivate_FetchesHistoryOnce(t *testing.T) {
	fb := &fakeBackend{}
	c := newReadyController(t, fb)

	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("second Activate() error = %v", err)
	}
	if fb.historyCalls != 1 {
		t.Errorf("History calls = %d, want 1", fb.historyCalls)
	}
	if len(c.Messages()) != 1 {
		t.Errorf("Messages() length = %d, a second Activate must not reseed", len(c.Messages()))
	}
}

// =============================================================================
// SEND PIPELINE
// =============================================================================

func TestSend_AppendsUserAndBotEntries(t *testing.T) {
	fb := &fakeBackend{reply: "hi"}
	c := newReadyController(t, fb)

	if c.Busy() {
		t.Fatal("Busy() = true before send")
	}

	if !c.Send(context.Background(), "hello") {
		t.Fatal("Send() should dispatch")
	}

	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Messages() length = %d, want 3 (greeting + user + bot)", len(msgs))
	}
	if msgs[1].Sender != SenderUser || msgs[1].Text != "hello" {
		t.Errorf("User entry = %+v, want user/hello", msgs[1])
	}
	if msgs[2].Sender != SenderBot || msgs[2].Text != "hi" {
		t.Errorf("Bot entry = %+v, want bot/hi", msgs[2])
	}
	if c.Busy() {
		t.Error("Busy() = true after send completed")
	}
	if fb.last().SessionID != testSessionID {
		t.Errorf("Request session = %q, want %q", fb.last().SessionID, testSessionID)
	}
	if fb.calls() != 1 {
		t.Errorf("Chat calls = %d, want exactly 1", fb.calls())
	}
}

func TestSend_EmptyTextNoAttachmentIsNoop(t *testing.T) {
	fb := &fakeBackend{reply: "hi"}
	c := newReadyController(t, fb)

	if c.Send(context.Background(), "") {
		t.Error("Send(\"\") should be a no-op")
	}
	if c.Send(context.Background(), "   \t") {
		t.Error("Send(blank) should be a no-op")
	}
	if fb.calls() != 0 {
		t.Errorf("Chat calls = %d, want 0", fb.calls())
	}
	if len(c.Messages()) != 1 {
		t.Errorf("Messages() length = %d, log must stay unchanged", len(c.Messages()))
	}
}

func TestSend_BeforeActivateIsNoop(t *testing.T) {
	fb := &fakeBackend{reply: "hi"}
	c := New(Options{
		Sessions: &fakeSessions{id: testSessionID},
		Backend:  fb,
	})

	if c.Send(context.Background(), "hello") {
		t.Error("Send() before Activate should be a no-op")
	}
	if fb.calls() != 0 {
		t.Errorf("Chat calls = %d, want 0", fb.calls())
	}
}

func TestSend_FailureSynthesizesBotEntry(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.ClientError{
		Type:    backend.ErrTypeServer,
		Message: "An error occurred: model exploded",
	}}
	c := newReadyController(t, fb)

	if !c.Send(context.Background(), "hello") {
		t.Fatal("Send() should dispatch even when the backend fails")
	}

	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Messages() length = %d, want 3 (greeting + user + synthesized bot)", len(msgs))
	}
	if msgs[1].Sender != SenderUser {
		t.Errorf("Entry 1 sender = %q, want user", msgs[1].Sender)
	}
	if msgs[2].Sender != SenderBot {
		t.Errorf("Entry 2 sender = %q, want bot", msgs[2].Sender)
	}
	if !strings.Contains(msgs[2].Text, "model exploded") {
		t.Errorf("Synthesized entry = %q, should carry the failure reason", msgs[2].Text)
	}
	if c.Busy() {
		t.Error("Busy() = true after failed send")
	}
	if c.Status() != StatusReady {
		t.Errorf("Status() = %v, a failed send must not leave ready", c.Status())
	}
}

func TestSend_TimeoutReasonInSynthesizedEntry(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.ClientError{
		Type:    backend.ErrTypeTimeout,
		Message: "request timed out",
		Cause:   context.DeadlineExceeded,
	}}
	c := newReadyController(t, fb)

	c.Send(context.Background(), "hello")

	msgs := c.Messages()
	last := msgs[len(msgs)-1]
	if !strings.Contains(last.Text, "timed out") {
		t.Errorf("Synthesized entry = %q, want a timeout explanation", last.Text)
	}
}

func TestSend_WhileBusyIsNoop(t *testing.T) {
	fb := &fakeBackend{reply: "hi", block: make(chan struct{})}
	c := newReadyController(t, fb)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Send(context.Background(), "first")
	}()

	waitFor(t, "send to go busy", c.Busy)

	if c.Send(context.Background(), "second") {
		t.Error("Send() while busy should be a no-op")
	}

	close(fb.block)
	wg.Wait()

	if fb.calls() != 1 {
		t.Errorf("Chat calls = %d, want 1", fb.calls())
	}
	if c.Busy() {
		t.Error("Busy() = true after the in-flight send finished")
	}
	if len(c.Messages()) != 3 {
		t.Errorf("Messages() length = %d, the rejected send must not append", len(c.Messages()))
	}
}

func TestSend_ConsumesAttachmentBeforeRoundTrip(t *testing.T) {
	fb := &fakeBackend{reply: "nice cat", block: make(chan struct{})}
	c := newReadyController(t, fb)

	if !c.SelectAttachment("cat.png", pngData()) {
		t.Fatal("SelectAttachment() rejected a png")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Send(context.Background(), "look")
	}()

	waitFor(t, "send to go busy", c.Busy)

	// The slot is consumed at dispatch, not at completion
	if c.Attachment() != nil {
		t.Error("Attachment() should be nil while the send is in flight")
	}

	close(fb.block)
	wg.Wait()

	req := fb.last()
	if req.FileName != "cat.png" {
		t.Errorf("Request file name = %q, want cat.png", req.FileName)
	}
	if len(req.FileData) == 0 {
		t.Error("Request file data should carry the attachment bytes")
	}

	msgs := c.Messages()
	if msgs[1].AttachmentName != "cat.png" {
		t.Errorf("Optimistic user entry attachment = %q, want cat.png", msgs[1].AttachmentName)
	}
}

func TestSend_AttachmentWithoutText(t *testing.T) {
	fb := &fakeBackend{reply: "got it"}
	c := newReadyController(t, fb)

	c.SelectAttachment("cat.png", pngData())

	if !c.Send(context.Background(), "") {
		t.Fatal("Send() with only an attachment should dispatch")
	}
	if fb.last().Message != "" {
		t.Errorf("Request message = %q, want empty", fb.last().Message)
	}
	if fb.last().FileName != "cat.png" {
		t.Errorf("Request file name = %q, want cat.png", fb.last().FileName)
	}
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

func TestSelectAttachment_NonImageRejected(t *testing.T) {
	c := newReadyController(t, &fakeBackend{})
	c.Notices() // start from an empty queue

	if c.SelectAttachment("notes.txt", []byte("just some plain text here")) {
		t.Error("SelectAttachment() should reject non-image payloads")
	}
	if c.Attachment() != nil {
		t.Error("Attachment() slot should stay unchanged after a rejection")
	}

	notices := c.Notices()
	if len(notices) != 1 {
		t.Fatalf("Notices() length = %d, want exactly 1 validation notice", len(notices))
	}
	if !strings.Contains(notices[0], "Only images") {
		t.Errorf("Notice = %q, want an only-images validation message", notices[0])
	}
}

func TestSelectAttachment_EmptyPayloadRejected(t *testing.T) {
	c := newReadyController(t, &fakeBackend{})

	if c.SelectAttachment("void.png", nil) {
		t.Error("SelectAttachment() should reject an empty payload")
	}
	if c.Attachment() != nil {
		t.Error("Attachment() slot should stay empty")
	}
}

func TestSelectAttachment_LastWriteWins(t *testing.T) {
	c := newReadyController(t, &fakeBackend{})

	c.SelectAttachment("first.png", pngData())
	c.SelectAttachment("second.png", pngData())

	att := c.Attachment()
	if att == nil {
		t.Fatal("Attachment() = nil, want the second image")
	}
	if att.Name != "second.png" {
		t.Errorf("Attachment name = %q, want second.png", att.Name)
	}
	if att.MIME != "image/png" {
		t.Errorf("Attachment MIME = %q, want image/png", att.MIME)
	}
}

func TestClearAttachment_Idempotent(t *testing.T) {
	c := newReadyController(t, &fakeBackend{})

	c.SelectAttachment("cat.png", pngData())
	c.ClearAttachment()
	if c.Attachment() != nil {
		t.Error("Attachment() should be nil after clear")
	}

	// Clearing an empty slot changes nothing
	c.ClearAttachment()
	if c.Attachment() != nil {
		t.Error("Attachment() should stay nil after a second clear")
	}
}

// =============================================================================
// VOICE
// =============================================================================

func TestToggleListening_Unavailable(t *testing.T) {
	c := newReadyController(t, &fakeBackend{})
	c.Notices()

	transcript, stopped := c.ToggleListening()
	if transcript != "" || stopped {
		t.Errorf("ToggleListening() = (%q, %v), want no-op", transcript, stopped)
	}
	if c.Listening() {
		t.Error("Listening() = true with the null recognizer")
	}

	notices := c.Notices()
	if len(notices) != 1 || !strings.Contains(notices[0], "not available") {
		t.Errorf("Notices() = %v, want one unavailable notice", notices)
	}
}

func TestToggleListening_TranscriptReplacesInput(t *testing.T) {
	rec := &fakeRecognizer{available: true, transcript: "take two words"}
	c := New(Options{
		Sessions:   &fakeSessions{id: testSessionID},
		Backend:    &fakeBackend{},
		Recognizer: rec,
	})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	c.SetInput("typed draft")

	if _, stopped := c.ToggleListening(); stopped {
		t.Fatal("first toggle should start, not stop")
	}
	if !c.Listening() {
		t.Fatal("Listening() = false after starting capture")
	}

	transcript, stopped := c.ToggleListening()
	if !stopped {
		t.Fatal("second toggle should stop capture")
	}
	if transcript != "take two words" {
		t.Errorf("transcript = %q, want %q", transcript, "take two words")
	}
	if c.Input() != "take two words" {
		t.Errorf("Input() = %q, transcript must replace the composer text", c.Input())
	}
}

func TestToggleListening_EmptyTranscriptKeepsInput(t *testing.T) {
	rec := &fakeRecognizer{available: true, transcript: ""}
	c := New(Options{
		Sessions:   &fakeSessions{id: testSessionID},
		Backend:    &fakeBackend{},
		Recognizer: rec,
	})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	c.SetInput("typed draft")
	c.Notices()

	c.ToggleListening()
	c.ToggleListening()

	if c.Input() != "typed draft" {
		t.Errorf("Input() = %q, an empty transcript must not wipe the composer", c.Input())
	}
	notices := c.Notices()
	if len(notices) != 1 || !strings.Contains(notices[0], "No speech") {
		t.Errorf("Notices() = %v, want one no-speech notice", notices)
	}
}

// =============================================================================
// NOTICES
// =============================================================================

func TestNotices_Drain(t *testing.T) {
	c := newReadyController(t, &fakeBackend{})

	c.SelectAttachment("notes.txt", []byte("plain text, not an image"))

	first := c.Notices()
	if len(first) == 0 {
		t.Fatal("Notices() should return the queued notice")
	}
	second := c.Notices()
	if len(second) != 0 {
		t.Errorf("Notices() after drain = %v, want empty", second)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusLoading, "loading"},
		{StatusReady, "ready"},
		{StatusError, "error"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
