// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides SQLite persistence for chat conversations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrInvalidSender = errors.New("invalid sender")
	ErrEmptySession  = errors.New("session id is required")
)

// =============================================================================
// TYPES
// =============================================================================

// Message is one stored conversation row.
type Message struct {
	// ID is the stable message identifier (UUID). Filled by Append when empty.
	ID string

	// SessionID ties the message to one conversation.
	SessionID string

	// Sender is "user" or "bot".
	Sender string

	// Text is the message body.
	Text string

	// ImagePath is the stored filename of an uploaded image, empty when none.
	ImagePath string

	// Timestamp is when the message was stored. Filled by Append when zero.
	Timestamp time.Time
}

// SessionInfo summarizes one stored session.
type SessionInfo struct {
	SessionID    string
	Messages     int
	LastActivity time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store persists conversation messages in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the default database location under the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".thatbot", "thatbot.db"), nil
}

// Open opens (creating if needed) the conversation database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for SQLite
	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // No lifetime limit

	// Configure SQLite for better performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",       // 64MB cache
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",         // Enable foreign key constraints
		"PRAGMA wal_autocheckpoint=1000", // Checkpoint every 1000 pages
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the database schema
func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(InitMetadata)
	return err
}

// Close closes the store and releases resources
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// WRITES
// =============================================================================

// Append stores one message. Empty ID and zero Timestamp are filled in;
// the stored values are written back to msg.
func (s *Store) Append(ctx context.Context, msg *Message) error {
	if msg.SessionID == "" {
		return ErrEmptySession
	}
	if msg.Sender != "user" && msg.Sender != "bot" {
		return fmt.Errorf("%w: %q", ErrInvalidSender, msg.Sender)
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	// image_path stays NULL for plain text messages, matching the
	// history query's NULL handling.
	var imagePath sql.NullString
	if msg.ImagePath != "" {
		imagePath = sql.NullString{String: msg.ImagePath, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (message_id, session_id, sender, message, image_path, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, msg.Sender, msg.Text, imagePath, msg.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return nil
}

// DeleteSession removes all stored messages for one session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrEmptySession
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// =============================================================================
// READS
// =============================================================================

// History returns all messages for a session, oldest first. Rows sharing a
// timestamp keep insertion order.
func (s *Store) History(ctx context.Context, sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, sender, message, image_path, timestamp
		FROM conversations
		WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			msg       Message
			imagePath sql.NullString
			ts        int64
		)
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Text, &imagePath, &ts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		msg.SessionID = sessionID
		msg.ImagePath = imagePath.String
		msg.Timestamp = time.Unix(ts, 0)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return messages, nil
}

// CountMessages returns how many messages a session has stored.
func (s *Store) CountMessages(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, ErrEmptySession
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return count, nil
}

// Sessions lists stored sessions, most recently active first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*), MAX(timestamp)
		FROM conversations
		GROUP BY session_id
		ORDER BY MAX(timestamp) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var (
			info SessionInfo
			last int64
		)
		if err := rows.Scan(&info.SessionID, &info.Messages, &last); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		info.LastActivity = time.Unix(last, 0)
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return sessions, nil
}
