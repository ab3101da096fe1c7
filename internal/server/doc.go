// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements the HTTP API that chat clients talk to.
//
// The server exposes four routes: GET /history returns the stored
// conversation for a session as a JSON array, POST /chat runs one
// conversation turn against the local model, GET /uploads/{filename} serves
// previously uploaded images, and GET /health reports liveness plus store
// and model reachability. A fifth route, GET /stats, exposes request
// counters for diagnostics.
//
// Every conversation turn replays the full session history to the model
// behind a fixed persona primer, so the model stays in character without the
// client ever seeing the primer. Uploaded images are saved under a
// per-session filename and the current turn's image is passed to the model
// as base64; older images are not replayed.
//
// # Key Types
//
//   - Server: route setup, dependencies, and lifecycle
//   - ServerStats: request counters served by /stats
//   - RateLimiter: sliding-window per-IP limiter used by the middleware
//   - CORSConfig: allowlist for browser origins
//
// # Usage
//
//	srv := server.NewServer(5000).
//	    WithStore(st).
//	    WithOllamaClient(client).
//	    WithUploadsDir(dir).
//	    WithModel("llama3.2")
//
//	go srv.Start()
//	defer srv.Shutdown(ctx)
//
// Requests pass through a middleware chain (recovery, security headers,
// logging, CORS, rate limiting) before reaching the handlers. Chat requests
// are additionally rate limited per session so one conversation cannot
// monopolize the model.
package server
