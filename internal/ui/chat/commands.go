// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thatbot/internal/controller"
)

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

// syncInterval is how often the view re-reads controller state while a
// send is in flight. 10fps keeps the optimistic user entry visible
// within 100ms without burning CPU on an idle terminal.
const syncInterval = time.Second / 10

// ActivateCmd bootstraps the session and loads history off the update
// loop. HTTP deadlines come from the backend client, so no extra
// timeout is layered on here.
func ActivateCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Activate(context.Background())
		return NewActivatedMsg(err)
	}
}

// SendCmd runs one chat round trip. The controller appends the
// optimistic user entry before blocking, then appends exactly one bot
// bubble (reply or failure) before this command returns.
func SendCmd(ctrl *controller.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		sent := ctrl.Send(context.Background(), text)
		return NewReplyMsg(sent)
	}
}

// AttachFileCmd reads the file at path and offers it to the controller
// as the staged attachment. Validation failures (wrong type, empty
// payload) become controller notices rather than errors.
func AttachFileCmd(ctrl *controller.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return AttachLoadedMsg{Name: name, Err: err}
		}
		accepted := ctrl.SelectAttachment(name, data)
		return AttachLoadedMsg{Name: name, Accepted: accepted}
	}
}

// ToggleVoiceCmd flips the microphone state. When a capture session
// ends with usable speech the transcript rides back on the message.
func ToggleVoiceCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		transcript, _ := ctrl.ToggleListening()
		return NewVoiceToggledMsg(transcript, ctrl.Listening())
	}
}

// SyncTickCmd schedules the next controller re-read while waiting on a
// reply.
func SyncTickCmd() tea.Cmd {
	return tea.Tick(syncInterval, func(t time.Time) tea.Msg {
		return SyncTickMsg{Time: t}
	})
}
