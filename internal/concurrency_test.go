// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal contains race detection tests for the thatbot client and server.
//
// Run with: go test -race -v ./internal/...
//
// These tests hammer the shared-state surfaces that real usage exercises from
// multiple goroutines: the global configuration, the conversation controller,
// the message store, and the server's rate limiting. They should be run as
// part of CI with the -race flag enabled.
package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/thatbot/internal/backend"
	"github.com/jeranaias/thatbot/internal/config"
	"github.com/jeranaias/thatbot/internal/controller"
	"github.com/jeranaias/thatbot/internal/server"
	"github.com/jeranaias/thatbot/internal/session"
	"github.com/jeranaias/thatbot/internal/store"
)

// =============================================================================
// TEST CONFIGURATION
// =============================================================================

const (
	// Number of concurrent goroutines for race tests
	raceConcurrency = 50
	// Number of iterations per goroutine
	raceIterations = 25
	// Timeout for race tests
	raceTimeout = 30 * time.Second
)

// gatedBackend blocks the first Chat call until gate closes, so tests can
// observe the controller mid-send.
type gatedBackend struct {
	reply   string
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (b *gatedBackend) History(ctx context.Context, sessionID string) ([]backend.HistoryEntry, error) {
	return nil, nil
}

func (b *gatedBackend) Chat(ctx context.Context, req backend.ChatRequest) (string, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.gate
	return b.reply, nil
}

// =============================================================================
// CONFIG CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_ConfigGlobalAccess runs readers against publishers swapping
// the global config. Publishers build fresh instances and never touch them
// after SetGlobal.
func TestConcurrency_ConfigGlobalAccess(t *testing.T) {
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)

	var wg sync.WaitGroup

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				cfg := config.Global()
				_ = cfg.Backend.BaseURL
				_ = cfg.Local.OllamaModel
				_ = cfg.UI.Theme
				_ = cfg.Server.Port
			}
		}()
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				cfg := config.Default()
				cfg.Local.OllamaModel = fmt.Sprintf("publisher-%d-%d", n, j)
				config.SetGlobal(cfg)
			}
		}(i)
	}

	wg.Wait()

	if config.Global() == nil {
		t.Fatal("Global() = nil after concurrent access")
	}
}

// TestConcurrency_ConfigReload runs disk reloads against global readers.
func TestConcurrency_ConfigReload(t *testing.T) {
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)

	var reloads, failures atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		if i%2 == 0 {
			go func() {
				defer wg.Done()
				for j := 0; j < raceIterations; j++ {
					if _, err := config.ReloadGlobal(); err != nil {
						failures.Add(1)
					} else {
						reloads.Add(1)
					}
				}
			}()
			continue
		}
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if config.Global() == nil {
					t.Error("Global() = nil during reload churn")
					return
				}
			}
		}()
	}

	wg.Wait()
	t.Logf("reload churn: %d reloads, %d failures", reloads.Load(), failures.Load())
}

// TestConcurrency_ConfigCloneGetSet verifies that per-goroutine clones are
// fully independent. A shared instance is not safe for mixed Get and Set;
// clone-then-mutate is the supported pattern.
func TestConcurrency_ConfigCloneGetSet(t *testing.T) {
	base := config.Default()
	var wg sync.WaitGroup

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cfg := base.Clone()
			want := fmt.Sprintf("model-%d", n)
			if err := cfg.Set("local.ollama_model", want); err != nil {
				t.Errorf("Set() error = %v", err)
				return
			}
			got, err := cfg.Get("local.ollama_model")
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			if got != want {
				t.Errorf("Get() = %v, want %q", got, want)
			}
		}(i)
	}

	wg.Wait()

	if base.Local.OllamaModel != "llama3.2" {
		t.Errorf("base config mutated to %q", base.Local.OllamaModel)
	}
}

// =============================================================================
// CONTROLLER CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_ControllerSendAndSnapshots holds a send in flight while
// snapshot readers and rejected sends run against the controller.
func TestConcurrency_ControllerSendAndSnapshots(t *testing.T) {
	gb := &gatedBackend{
		reply:   "done",
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	sessions := session.NewStoreAt(filepath.Join(t.TempDir(), "session.json"))
	ctrl := controller.New(controller.Options{Sessions: sessions, Backend: gb})
	ctx := context.Background()

	if err := ctrl.Activate(ctx); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	var dispatched atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatched.Store(ctrl.Send(ctx, "question"))
	}()

	select {
	case <-gb.entered:
	case <-time.After(raceTimeout):
		t.Fatal("send never reached the backend")
	}

	// Sends while one is in flight must be refused.
	for i := 0; i < 10; i++ {
		if ctrl.Send(ctx, "rejected") {
			t.Error("Send() accepted while busy")
		}
	}

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				_ = ctrl.Messages()
				_ = ctrl.Busy()
				_ = ctrl.Status()
				_ = ctrl.SessionID()
				_ = ctrl.Input()
			}
		}()
	}

	close(gb.gate)
	wg.Wait()

	if !dispatched.Load() {
		t.Error("Send() = false, want dispatched")
	}
	if ctrl.Busy() {
		t.Error("Busy() = true after send completed")
	}
	if got := len(ctrl.Messages()); got != 3 {
		t.Errorf("Messages() len = %d, want greeting + user + bot", got)
	}
}

// =============================================================================
// STORE CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_StoreAppends writes to one session from many goroutines and
// verifies nothing is lost and history comes back ordered.
func TestConcurrency_StoreAppends(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	const writers = 10
	const perWriter = 20
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				msg := &store.Message{
					SessionID: "session_race",
					Sender:    "user",
					Text:      fmt.Sprintf("writer %d message %d", n, j),
				}
				if err := st.Append(ctx, msg); err != nil {
					t.Errorf("Append() error = %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	count, err := st.CountMessages(ctx, "session_race")
	if err != nil {
		t.Fatalf("CountMessages() error = %v", err)
	}
	if count != writers*perWriter {
		t.Errorf("CountMessages() = %d, want %d", count, writers*perWriter)
	}

	history, err := st.History(ctx, "session_race")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != writers*perWriter {
		t.Fatalf("History() len = %d, want %d", len(history), writers*perWriter)
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("history out of order at index %d", i)
			break
		}
	}
}

// =============================================================================
// SERVER CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_RateLimiterAllow checks the limiter under parallel load:
// distinct addresses stay under their own windows, and a shared address is
// capped at exactly the limit.
func TestConcurrency_RateLimiterAllow(t *testing.T) {
	roomy := server.NewRateLimiter(raceIterations, time.Minute)

	var denied atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.0.%d", n)
			for j := 0; j < raceIterations; j++ {
				if !roomy.Allow(ip) {
					denied.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()
	if got := denied.Load(); got != 0 {
		t.Errorf("denied = %d under per-address limit, want 0", got)
	}

	capped := server.NewRateLimiter(10, time.Minute)

	var allowed atomic.Int64
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if capped.Allow("192.0.2.1") {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	if got := allowed.Load(); got != 10 {
		t.Errorf("shared address allowed = %d, want exactly 10", got)
	}
}

// TestConcurrency_ServerChatLoad drives parallel sessions through the full
// HTTP stack and verifies every one completes with its own history.
func TestConcurrency_ServerChatLoad(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv := server.NewServer(0).
		WithStore(st).
		WithOllamaClient(fakeOllama(t, http.StatusOK, "ok", nil)).
		WithUploadsDir(t.TempDir()).
		WithModel("llama3.2")

	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)

	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: api.URL})
	ctx := context.Background()

	const sessionCount = 12
	var completed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < sessionCount; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session_load_%02d", n)

			reply, err := client.Chat(ctx, backend.ChatRequest{
				SessionID: id,
				Message:   fmt.Sprintf("hello from %d", n),
			})
			if err != nil {
				t.Errorf("Chat(%s) error = %v", id, err)
				return
			}
			if reply != "ok" {
				t.Errorf("Chat(%s) = %q, want ok", id, reply)
				return
			}

			entries, err := client.History(ctx, id)
			if err != nil {
				t.Errorf("History(%s) error = %v", id, err)
				return
			}
			if len(entries) != 2 {
				t.Errorf("History(%s) len = %d, want 2", id, len(entries))
				return
			}
			completed.Add(1)
		}(i)
	}
	wg.Wait()

	if got := completed.Load(); got != sessionCount {
		t.Errorf("completed sessions = %d, want %d", got, sessionCount)
	}
}
