// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY BINDINGS
// =============================================================================

// keyMap defines the chat shell's key bindings.
type keyMap struct {
	Send          key.Binding
	NewConv       key.Binding
	Palette       key.Binding
	ContentSearch key.Binding
	ToggleSearch  key.Binding
	Export        key.Binding
	Timestamps    key.Binding
	Retry         key.Binding
	Edit          key.Binding
	Quit          key.Binding
	Close         key.Binding
	Up            key.Binding
	Down          key.Binding
	Rename        key.Binding
	Delete        key.Binding
	Accept        key.Binding
}

var keys = keyMap{
	Send:          key.NewBinding(key.WithKeys("enter")),
	NewConv:       key.NewBinding(key.WithKeys("ctrl+n")),
	Palette:       key.NewBinding(key.WithKeys("ctrl+k")),
	ContentSearch: key.NewBinding(key.WithKeys("ctrl+s")),
	ToggleSearch:  key.NewBinding(key.WithKeys("ctrl+w")),
	Export:        key.NewBinding(key.WithKeys("ctrl+e")),
	Timestamps:    key.NewBinding(key.WithKeys("ctrl+t")),
	Retry:         key.NewBinding(key.WithKeys("ctrl+r")),
	Edit:          key.NewBinding(key.WithKeys("ctrl+o")),
	Quit:          key.NewBinding(key.WithKeys("ctrl+c")),
	Close:         key.NewBinding(key.WithKeys("esc")),
	Up:            key.NewBinding(key.WithKeys("up")),
	Down:          key.NewBinding(key.WithKeys("down")),
	Rename:        key.NewBinding(key.WithKeys("ctrl+r")),
	Delete:        key.NewBinding(key.WithKeys("ctrl+d")),
	Accept:        key.NewBinding(key.WithKeys("enter")),
}
