// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY BINDINGS
// =============================================================================

// KeyMap defines the keyboard shortcuts for the chat view.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Actions
	Submit      key.Binding
	Attach      key.Binding
	ClearAttach key.Binding
	Voice       key.Binding

	// UI Controls
	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("Up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("Down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "scroll to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "scroll to bottom"),
		),

		// Actions
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send message"),
		),
		Attach: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("C-a", "attach image"),
		),
		ClearAttach: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "clear attachment"),
		),
		Voice: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("C-v", "toggle voice input"),
		),

		// UI Controls
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "clear input / close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Attach, k.Voice, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End}, // Navigation
		{k.Submit, k.Attach, k.ClearAttach, k.Voice},        // Actions
		{k.Help, k.Escape, k.Quit},                          // UI Controls
	}
}

// =============================================================================
// CONTEXT-AWARE HELP SYSTEM
// =============================================================================

// HelpContext identifies which mode the chat view is in, so the help
// overlay only lists keys that actually work right now.
type HelpContext string

const (
	// ContextNormal is the ready state with the composer focused.
	ContextNormal HelpContext = "normal"

	// ContextWaiting is active while a send is in flight.
	ContextWaiting HelpContext = "waiting"

	// ContextAttach is active while typing an attachment path.
	ContextAttach HelpContext = "attach"

	// ContextError is the terminal startup-failure screen.
	ContextError HelpContext = "error"
)

// HelpCategory groups related keybindings in the help display.
type HelpCategory string

const (
	CategoryConversation HelpCategory = "Conversation"
	CategoryAttachments  HelpCategory = "Attachments"
	CategoryNavigation   HelpCategory = "Navigation"
	CategoryGeneral      HelpCategory = "General"
)

// HelpItem pairs a key with its description and the contexts where it
// applies.
type HelpItem struct {
	Key      string
	Desc     string
	Contexts []HelpContext
	Category HelpCategory
}

// GetHelpItems returns all help items with their context and category
// metadata.
func GetHelpItems() []HelpItem {
	return []HelpItem{
		// Conversation
		{
			Key:      "Enter",
			Desc:     "Send message",
			Contexts: []HelpContext{ContextNormal},
			Category: CategoryConversation,
		},
		{
			Key:      "C-v",
			Desc:     "Start/stop voice input",
			Contexts: []HelpContext{ContextNormal},
			Category: CategoryConversation,
		},
		{
			Key:      "Esc",
			Desc:     "Clear the composer",
			Contexts: []HelpContext{ContextNormal},
			Category: CategoryConversation,
		},

		// Attachments
		{
			Key:      "C-a",
			Desc:     "Attach an image",
			Contexts: []HelpContext{ContextNormal},
			Category: CategoryAttachments,
		},
		{
			Key:      "C-x",
			Desc:     "Clear staged attachment",
			Contexts: []HelpContext{ContextNormal},
			Category: CategoryAttachments,
		},
		{
			Key:      "Enter",
			Desc:     "Load file at path",
			Contexts: []HelpContext{ContextAttach},
			Category: CategoryAttachments,
		},
		{
			Key:      "Esc",
			Desc:     "Cancel attach",
			Contexts: []HelpContext{ContextAttach},
			Category: CategoryAttachments,
		},

		// Navigation
		{
			Key:      "Up/Down",
			Desc:     "Scroll messages",
			Contexts: []HelpContext{ContextNormal, ContextWaiting},
			Category: CategoryNavigation,
		},
		{
			Key:      "PgUp/PgDn",
			Desc:     "Page through history",
			Contexts: []HelpContext{ContextNormal, ContextWaiting},
			Category: CategoryNavigation,
		},
		{
			Key:      "Home/End",
			Desc:     "Jump to top/bottom",
			Contexts: []HelpContext{ContextNormal, ContextWaiting},
			Category: CategoryNavigation,
		},

		// General
		{
			Key:      "?",
			Desc:     "Toggle this help",
			Contexts: []HelpContext{ContextNormal, ContextWaiting},
			Category: CategoryGeneral,
		},
		{
			Key:      "q",
			Desc:     "Exit after a startup failure",
			Contexts: []HelpContext{ContextError},
			Category: CategoryGeneral,
		},
		{
			Key:      "C-c",
			Desc:     "Quit",
			Contexts: []HelpContext{ContextNormal, ContextWaiting, ContextAttach, ContextError},
			Category: CategoryGeneral,
		},
	}
}

// GetHelpItemsForContext returns only the help items available in the
// given context.
func GetHelpItemsForContext(ctx HelpContext) []HelpItem {
	var items []HelpItem
	for _, item := range GetHelpItems() {
		for _, c := range item.Contexts {
			if c == ctx {
				items = append(items, item)
				break
			}
		}
	}
	return items
}

// GetHelpItemsByCategory returns help items for a context, grouped by
// category.
func GetHelpItemsByCategory(ctx HelpContext) map[HelpCategory][]HelpItem {
	grouped := make(map[HelpCategory][]HelpItem)
	for _, item := range GetHelpItemsForContext(ctx) {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	return grouped
}

// GetCategoryOrder returns the display order for help categories.
func GetCategoryOrder() []HelpCategory {
	return []HelpCategory{
		CategoryConversation,
		CategoryAttachments,
		CategoryNavigation,
		CategoryGeneral,
	}
}

// GetContextDisplayName returns a human-readable name for a context.
func GetContextDisplayName(ctx HelpContext) string {
	switch ctx {
	case ContextNormal:
		return "Chat"
	case ContextWaiting:
		return "Waiting for reply"
	case ContextAttach:
		return "Attach image"
	case ContextError:
		return "Startup error"
	default:
		return string(ctx)
	}
}
