// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thatbot/internal/backend"
)

// =============================================================================
// VIEW STATE TESTS
// =============================================================================

func TestViewBeforeFirstResize(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})

	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before resize = %q, want plain loading text", got)
	}
}

func TestViewLoadingScreen(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})
	m = resize(m, 80, 24)

	view := m.View()
	if !strings.Contains(view, "Connecting to ThatBot") {
		t.Error("loading screen should show the connecting spinner")
	}
}

func TestViewReadyShowsGreeting(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	view := m.View()
	if !strings.Contains(view, "thatbot") {
		t.Error("ready view should include the header brand")
	}
	if !strings.Contains(view, "Hello!") {
		t.Error("ready view should include the seeded greeting")
	}
	if !strings.Contains(view, "127.0.0.1:5000") {
		t.Error("ready view should include the server host")
	}
}

func TestViewShowsHistory(t *testing.T) {
	be := &fakeBackend{history: []backend.HistoryEntry{
		{Sender: "user", Text: "earlier question"},
		{Sender: "bot", Text: "earlier answer"},
	}}
	m, ctrl := newTestModel(t, be)
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	view := m.View()
	if !strings.Contains(view, "earlier question") {
		t.Error("view should include the user history entry")
	}
	if !strings.Contains(view, "earlier answer") {
		t.Error("view should include the bot history entry")
	}
}

func TestViewWaitingShowsTypingIndicator(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{reply: "ok"})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	m.input.SetValue("are you there")
	m, _ = keyPress(m, tea.KeyMsg{Type: tea.KeyEnter})

	view := m.View()
	if !strings.Contains(view, "ThatBot is typing") {
		t.Error("waiting view should show the typing indicator")
	}
	if !strings.Contains(view, "Waiting for ThatBot") {
		t.Error("waiting view should park the composer")
	}
}

func TestViewErrorScreen(t *testing.T) {
	be := &fakeBackend{historyErr: backend.ErrUnreachable}
	m, ctrl := newTestModel(t, be)
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	view := m.View()
	if !strings.Contains(view, "Could not reach ThatBot") {
		t.Error("error view should show the startup error title")
	}
	if !strings.Contains(view, "thatbot serve") {
		t.Error("error view should suggest starting the server")
	}
}

func TestViewHelpOverlay(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)
	m.showHelp = true

	view := m.View()
	if !strings.Contains(view, "Keys available now") {
		t.Error("help overlay should render its title")
	}
	if !strings.Contains(view, "Send message") {
		t.Error("help overlay should list the submit binding")
	}
	if !strings.Contains(view, "Press ? or Esc to close") {
		t.Error("help overlay should show the close hint")
	}
}

func TestViewNoticeBar(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)
	m.notices.Add("sample notice text")

	view := m.View()
	if !strings.Contains(view, "sample notice text") {
		t.Error("notice bar should render queued notices")
	}
	if !strings.Contains(view, "[!]") {
		t.Error("notice bar should carry the warning marker")
	}
}

// =============================================================================
// COMPONENT RENDER TESTS
// =============================================================================

func TestRenderHeaderStates(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	header := m.renderHeader()
	if !strings.Contains(header, "[OK]") {
		t.Error("ready header should show the success marker")
	}

	m.state = StateWaiting
	header = m.renderHeader()
	if !strings.Contains(header, "[*]") {
		t.Error("waiting header should show the active marker")
	}
}

func TestRenderInputFooterCharCount(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	footer := m.renderInputFooter()
	if !strings.Contains(footer, "0 / 4096") {
		t.Errorf("footer should show the character count, got %q", footer)
	}

	m.input.SetValue("hello")
	footer = m.renderInputFooter()
	if !strings.Contains(footer, "5 / 4096") {
		t.Errorf("footer should track typed length, got %q", footer)
	}
}

func TestRenderInputFooterAttachmentChip(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	if !ctrl.SelectAttachment("vacation.png", pngBytes) {
		t.Fatal("attachment was rejected")
	}

	footer := m.renderInputFooter()
	if !strings.Contains(footer, "[img]") {
		t.Error("footer should show the attachment chip")
	}
	if !strings.Contains(footer, "vacation.png") {
		t.Error("footer chip should carry the filename")
	}
}

func TestRenderInputFooterAttachHint(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)
	m.attachMode = true

	footer := m.renderInputFooter()
	if !strings.Contains(footer, "Enter loads the file") {
		t.Error("attach mode footer should explain the keys")
	}
}

func TestRenderEmptyState(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)
	m.messages = nil

	content := m.renderMessages()
	if !strings.Contains(content, "ThatBot") {
		t.Error("empty state should show the welcome logo")
	}
	if !strings.Contains(content, "first message") {
		t.Error("empty state should prompt for the first message")
	}
}

func TestRenderMessagesImageMarker(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{reply: "got it"})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	ctrl.SelectAttachment("dog.png", pngBytes)
	ctrl.Send(context.Background(), "look at this")
	m.messages = ctrl.Messages()

	content := m.renderMessages()
	if !strings.Contains(content, "[image]") {
		t.Error("messages with attachments should carry the image marker")
	}
	if !strings.Contains(content, "dog.png") {
		t.Error("the optimistic entry should name the attached file")
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestViewFillsTerminalHeight(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 100, 30)

	view := m.View()
	lines := strings.Count(view, "\n") + 1
	if lines > 30 {
		t.Errorf("view has %d lines, must not exceed terminal height 30", lines)
	}
}

func TestViewNarrowTerminal(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeBackend{})
	m = activate(t, m, ctrl)
	m = resize(m, 40, 12)

	// Must render without panicking and stay within bounds
	view := m.View()
	if view == "" {
		t.Error("narrow terminal should still render")
	}
}
