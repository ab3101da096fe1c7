// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides SQLite persistence for chat conversations.
//
// Every message the backend handles, user and bot alike, lands in one
// conversations table keyed by session id. History reads return rows
// oldest first so the client can replay a conversation verbatim, with
// a rowid tiebreak preserving insertion order inside a single second.
//
// The database lives at ~/.thatbot/thatbot.db by default and uses the
// pure Go SQLite driver, so the binary stays CGO-free.
//
// # Key Types
//
//   - Store: the open database handle
//   - Message: one stored conversation row
//   - SessionInfo: per-session summary for listings
//
// # Usage
//
//	path, _ := store.DefaultPath()
//	db, err := store.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = db.Append(ctx, &store.Message{
//	    SessionID: id,
//	    Sender:    "user",
//	    Text:      "hello",
//	})
package store
