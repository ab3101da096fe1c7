// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the durable chat session identifier.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/thatbot/internal/util"
)

// DurableKey is the key the session identifier is stored under. The
// backend only ever sees the identifier itself; the key names the slot
// in the client's persistent store.
const DurableKey = "chatSessionId"

// sessionFileName is the file holding the durable store.
const sessionFileName = "session.json"

// =============================================================================
// SESSION STORE
// =============================================================================

// Store reads and writes the session identifier. The identifier is
// generated at most once: after the first Bootstrap it is reused for
// every later activation and never regenerated while the file exists.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store at the default location (~/.thatbot/session.json).
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ".thatbot", sessionFileName)), nil
}

// NewStoreAt creates a store backed by the given file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

// sessionFile is the on-disk shape of the durable store.
type sessionFile struct {
	SessionID string `json:"chatSessionId"`
}

// Bootstrap returns the persisted session identifier, generating and
// persisting a fresh one when none is stored. The new identifier is
// written to disk before Bootstrap returns, so it survives a crash
// between bootstrap and the first network call.
func (s *Store) Bootstrap() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.load()
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = NewSessionID()
	if err := s.save(id); err != nil {
		return "", err
	}
	return id, nil
}

// Load returns the stored identifier, or "" when none is stored.
func (s *Store) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save persists the given identifier, replacing any stored value.
func (s *Store) Save(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(id)
}

// load reads the session file. An unparsable file counts as absent:
// the durable slot holds a single string, and a mangled file cannot
// name a session the backend knows.
func (s *Store) load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", nil
	}
	return f.SessionID, nil
}

// save writes the session file atomically with owner-only permissions.
func (s *Store) save(id string) error {
	data, err := json.MarshalIndent(sessionFile{SessionID: id}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(s.path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// =============================================================================
// ID GENERATION
// =============================================================================

// NewSessionID creates a session identifier of the form
// session_<unix-millis>_<random-hex>.
func NewSessionID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "session_" + util.Int64ToString(time.Now().UnixMilli()) + "_" + hex.EncodeToString(bytes)
}
