// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/astro-tui/internal/orchestrator"
)

// =============================================================================
// MESSAGES
// =============================================================================

// sendResultMsg delivers the terminal outcome of a send.
type sendResultMsg struct {
	result orchestrator.Result
}

// quotaTickMsg drives the periodic quota refresh check, concurrent with
// any in-flight send.
type quotaTickMsg time.Time

// StoreChangedMsg is posted from outside the program (the data file
// watcher) when another instance changed the conversations file.
type StoreChangedMsg struct{}

// exportDoneMsg reports an export attempt.
type exportDoneMsg struct {
	path string
	err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

// quotaTickInterval is how often the refresh window is checked.
const quotaTickInterval = 30 * time.Second

func quotaTickCmd() tea.Cmd {
	return tea.Tick(quotaTickInterval, func(t time.Time) tea.Msg {
		return quotaTickMsg(t)
	})
}

// sendCmd runs the full pipeline off the UI goroutine. The orchestrator
// owns all state transitions, so the command only reports the outcome.
func (m *Model) sendCmd(convID, input string) tea.Cmd {
	searchEnabled := m.searchEnabled
	return func() tea.Msg {
		res := m.orch.Send(context.Background(), convID, input, searchEnabled)
		return sendResultMsg{result: res}
	}
}
