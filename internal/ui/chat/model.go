// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thatbot/internal/controller"
	"github.com/jeranaias/thatbot/internal/ui/components"
	"github.com/jeranaias/thatbot/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateLoading State = iota // Bootstrapping session and loading history
	StateReady                // Accepting input
	StateWaiting              // Send in flight
	StateError                // Startup failed; terminal for this run
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Conversation state lives in the controller. messages is the last
	// snapshot rendered into the viewport.
	ctrl     *controller.Controller
	messages []controller.Message

	// Server host shown in the header and status bar
	serverHost string

	// UI Components
	viewport  viewport.Model
	input     textinput.Model
	statusBar *components.StatusBar
	notices   *components.NoticeStack
	typing    components.TypingIndicator
	listening components.ListeningIndicator
	loading   components.Spinner

	// Key bindings
	keyMap KeyMap

	// Attach mode replaces the composer with a path prompt
	attachMode  bool
	attachInput textinput.Model

	// Help overlay
	showHelp bool

	// True while a notice expiry chain is scheduled, so repeated Adds
	// do not stack parallel timers
	noticeTicking bool
}

// New creates a new chat model around a conversation controller.
func New(ctrl *controller.Controller, theme *styles.Theme) Model {
	// Create text input with prompt
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	// Create attach path input
	ai := textinput.New()
	ai.Prompt = "attach> "
	ai.Placeholder = "Path to an image file..."
	ai.CharLimit = 1024

	// Create viewport
	vp := viewport.New(80, 20)
	vp.SetContent("")

	// The connecting spinner animates from the first frame; Init
	// re-issues its tick command since mutations there are lost.
	loading := components.NewConnectingSpinner()
	loading.Start()

	return Model{
		state:       StateLoading,
		theme:       theme,
		ctrl:        ctrl,
		viewport:    vp,
		input:       ti,
		attachInput: ai,
		statusBar:   components.NewStatusBar(theme),
		notices:     components.NewNoticeStack(),
		typing:      components.NewTypingIndicator(),
		listening:   components.NewListeningIndicator(),
		loading:     loading,
		keyMap:      DefaultKeyMap(),
	}
}

// NewWithHost creates a chat model that displays the backend host.
func NewWithHost(ctrl *controller.Controller, theme *styles.Theme, host string) Model {
	m := New(ctrl, theme)
	m.SetServerHost(host)
	return m
}

// SetServerHost records the backend host shown in the header and status
// bar. The backend is reported down until activation succeeds.
func (m *Model) SetServerHost(host string) {
	m.serverHost = host
	m.statusBar.SetBackend(host, false)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.loading.Start(),
		ActivateCmd(m.ctrl),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ActivatedMsg:
		return m.handleActivated(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case SyncTickMsg:
		return m.handleSyncTick(msg)

	case AttachLoadedMsg:
		return m.handleAttachLoaded(msg)

	case VoiceToggledMsg:
		return m.handleVoiceToggled(msg)

	case components.NoticeTickMsg:
		return m.handleNoticeTick(msg)

	case spinner.TickMsg:
		// Fan the tick out to the animating indicators. Each spinner
		// drops ticks carrying a foreign ID, so only the owner advances.
		switch m.state {
		case StateLoading:
			var cmd tea.Cmd
			m.loading, cmd = m.loading.Update(msg)
			cmds = append(cmds, cmd)
		case StateWaiting:
			var cmd tea.Cmd
			m.typing, cmd = m.typing.Update(msg)
			m.updateViewport()
			cmds = append(cmds, cmd)
		}
		if m.listening.IsActive() {
			var cmd tea.Cmd
			m.listening, cmd = m.listening.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	default:
		// For any unhandled messages, update the focused text input
		// and always update the viewport for scroll events, etc.
		if m.attachMode {
			var inputCmd tea.Cmd
			m.attachInput, inputCmd = m.attachInput.Update(msg)
			cmds = append(cmds, inputCmd)
		} else if m.state == StateReady {
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}

		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)

		return m, tea.Batch(cmds...)
	}
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.recalcViewport()

	// Update input width:
	// The input line renders with Width(width-4) and Padding(0,1),
	// leaving width-6 columns of content. Subtracting the prompt gives
	// the space left for typed text.
	const promptLen = 2 // "> "
	inputWidth := m.width - 6 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	const attachPromptLen = 8 // "attach> "
	attachWidth := m.width - 6 - attachPromptLen
	if attachWidth < 10 {
		attachWidth = 10
	}
	m.attachInput.Width = attachWidth

	// Update theme dimensions
	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}
	m.statusBar.SetWidth(m.width)

	// Re-render viewport content with new dimensions
	m.updateViewport()

	// Also forward the resize to viewport so it can update internal state
	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, vpCmd
}

func (m Model) handleActivated(msg ActivatedMsg) (tea.Model, tea.Cmd) {
	m.loading.Stop()

	if msg.Err != nil || m.ctrl.Status() == controller.StatusError {
		m.state = StateError
		return m, nil
	}

	m.state = StateReady
	m.messages = m.ctrl.Messages()
	m.statusBar.SetSession(m.ctrl.SessionID())
	m.statusBar.SetBackend(m.serverHost, true)
	m.statusBar.SetVoiceEnabled(m.ctrl.VoiceAvailable())
	m.updateViewport()
	m.viewport.GotoBottom()
	m.input.Focus()

	return m, textinput.Blink
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.typing.Stop()
	if m.state == StateWaiting {
		m.state = StateReady
	}
	m.statusBar.SetBusy(false)
	m.statusBar.SetAttachment(stagedAttachmentName(m.ctrl))

	m.messages = m.ctrl.Messages()
	m.updateViewport()
	m.viewport.GotoBottom()
	m.input.Focus()

	cmds := []tea.Cmd{textinput.Blink}
	if cmd := m.syncNotices(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSyncTick(msg SyncTickMsg) (tea.Model, tea.Cmd) {
	// Stale tick after the reply already landed
	if m.state != StateWaiting {
		return m, nil
	}

	atBottom := m.viewport.AtBottom()
	m.messages = m.ctrl.Messages()
	m.updateViewport()
	if atBottom {
		m.viewport.GotoBottom()
	}

	cmds := []tea.Cmd{SyncTickCmd()}
	if cmd := m.syncNotices(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleAttachLoaded(msg AttachLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notices.Add("Could not read " + msg.Name + ": " + msg.Err.Error())
		m.recalcViewport()
		m.updateViewport()
		if !m.noticeTicking {
			m.noticeTicking = true
			return m, components.NoticeTickCmd()
		}
		return m, nil
	}

	m.statusBar.SetAttachment(stagedAttachmentName(m.ctrl))
	if cmd := m.syncNotices(); cmd != nil {
		return m, cmd
	}
	return m, nil
}

func (m Model) handleVoiceToggled(msg VoiceToggledMsg) (tea.Model, tea.Cmd) {
	m.statusBar.SetListening(msg.Listening)

	var cmds []tea.Cmd
	if msg.Listening && !m.listening.IsActive() {
		cmds = append(cmds, m.listening.Start())
	} else if !msg.Listening {
		m.listening.Stop()
	}

	if msg.Transcript != "" {
		m.input.SetValue(msg.Transcript)
		m.input.CursorEnd()
	}

	if cmd := m.syncNotices(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleNoticeTick(msg components.NoticeTickMsg) (tea.Model, tea.Cmd) {
	m.notices.Tick()

	if m.notices.HasNotices() {
		return m, components.NoticeTickCmd()
	}

	// Bar just emptied; give its rows back to the viewport
	m.noticeTicking = false
	m.recalcViewport()
	m.updateViewport()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Emergency exit works regardless of state
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	if m.state == StateError {
		return m.handleErrorKey(msg)
	}

	if m.showHelp {
		return m.handleHelpKey(msg)
	}

	if m.attachMode {
		return m.handleAttachKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Help):
		// "?" opens help only when the composer is empty; otherwise it
		// falls through and gets typed
		if m.input.Value() == "" {
			m.showHelp = true
			return m, nil
		}

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.Attach):
		if m.state == StateReady {
			m.attachMode = true
			m.attachInput.SetValue("")
			m.attachInput.Focus()
			m.input.Blur()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ClearAttach):
		m.ctrl.ClearAttachment()
		m.statusBar.SetAttachment("")
		return m, nil

	case key.Matches(msg, m.keyMap.Voice):
		return m, ToggleVoiceCmd(m.ctrl)

	case key.Matches(msg, m.keyMap.Escape):
		m.input.SetValue("")
		m.ctrl.SetInput("")
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp),
		key.Matches(msg, m.keyMap.PageDown),
		key.Matches(msg, m.keyMap.Up),
		key.Matches(msg, m.keyMap.Down):
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, vpCmd
	}

	// Everything else goes to the composer while it accepts input
	if m.state == StateReady {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state != StateReady {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" && m.ctrl.Attachment() == nil {
		return m, nil
	}

	m.state = StateWaiting
	m.input.SetValue("")
	m.statusBar.SetBusy(true)
	m.statusBar.SetAttachment("")

	typingCmd := m.typing.Start()

	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		SendCmd(m.ctrl, text),
		SyncTickCmd(),
		typingCmd,
	)
}

func (m Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Help) || key.Matches(msg, m.keyMap.Escape) || msg.String() == "q" {
		m.showHelp = false
		return m, nil
	}
	return m, nil
}

func (m Model) handleAttachKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Escape):
		m.attachMode = false
		m.attachInput.Blur()
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.Submit):
		path := strings.TrimSpace(m.attachInput.Value())
		m.attachMode = false
		m.attachInput.Blur()
		m.input.Focus()
		if path == "" {
			return m, textinput.Blink
		}
		return m, tea.Batch(AttachFileCmd(m.ctrl, path), textinput.Blink)
	}

	var cmd tea.Cmd
	m.attachInput, cmd = m.attachInput.Update(msg)
	return m, cmd
}

// =============================================================================
// VIEWPORT MANAGEMENT
// =============================================================================

// recalcViewport resizes the message viewport around the fixed chrome.
//
// IMPORTANT: These constants MUST stay in sync with the actual rendered
// heights in view.go renderChat(). That function measures real heights
// with lipgloss.Height() and clamps as a fallback, but these values
// should be conservative (larger) so the viewport is never too tall.
func (m *Model) recalcViewport() {
	const (
		headerHeight    = 2 // Header bar with Padding(0, 1)
		inputAreaHeight = 4 // Separator + input line + char count + buffer
		statusBarHeight = 2 // Status bar with Padding(0, 1)
		noticeBarHeight = 2 // Notice bar, only reserved while populated
	)

	reserved := headerHeight + inputAreaHeight + statusBarHeight
	if m.notices.HasNotices() {
		reserved += noticeBarHeight
	}

	viewportHeight := m.height - reserved
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	viewportWidth := m.width
	if viewportWidth < 1 {
		viewportWidth = 1
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight
}

// updateViewport re-renders the message log into the viewport.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}

// syncNotices drains queued controller notices into the on-screen
// stack. Returns the expiry tick command when the chain is not already
// running.
func (m *Model) syncNotices() tea.Cmd {
	queued := m.ctrl.Notices()
	if len(queued) == 0 {
		return nil
	}

	for _, n := range queued {
		m.notices.Add(n)
	}
	m.recalcViewport()
	m.updateViewport()

	if !m.noticeTicking {
		m.noticeTicking = true
		return components.NoticeTickCmd()
	}
	return nil
}

// stagedAttachmentName returns the staged attachment's filename, empty
// when the slot is clear.
func stagedAttachmentName(ctrl *controller.Controller) string {
	if att := ctrl.Attachment(); att != nil {
		return att.Name
	}
	return ""
}
