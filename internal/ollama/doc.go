// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// This package implements a client for the Ollama local LLM server. The
// chat endpoint is used in non-streaming mode: the backend waits for the
// whole reply and hands it to the caller in one piece. Messages can carry
// base64-encoded images for multimodal models.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role, content, and optional images
//   - ChatRequest: Request structure for chat completions
//   - ChatResponse: Response structure with message and metrics
//
// # Usage
//
// Create a client and send a chat request:
//
//	client := ollama.NewClient()
//	resp, err := client.Chat(ctx, "llama3.2", []ollama.Message{
//	    ollama.NewSystemMessage(persona),
//	    ollama.NewUserMessage("Hello"),
//	})
//
// The client can also locate and start a local Ollama install when it is
// not yet running:
//
//	if err := client.EnsureRunning(ctx); err != nil {
//	    return err
//	}
package ollama
