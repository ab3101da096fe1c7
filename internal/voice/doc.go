// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice provides speech-to-text capture for the chat composer.
//
// Capture is delegated to an external transcriber command configured in
// voice.command. The command runs for the length of a capture session and
// prints the transcript to stdout. Anything that behaves that way works:
// whisper wrappers, vosk CLIs, cloud STT shims.
//
// # Key Types
//
//   - Recognizer: Start/Stop capture interface used by the chat UI
//   - ExecRecognizer: Runs the configured transcriber command
//   - NullRecognizer: No-op used when no command is configured
//
// # Usage
//
//	rec := voice.New(cfg.Voice.Command, 30*time.Second)
//	if rec.Available() {
//	    rec.Start()
//	    // ... user speaks ...
//	    transcript, _ := rec.Stop()
//	}
package voice
