// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/astro-tui/internal/index"
	"github.com/jeranaias/astro-tui/internal/notify"
	"github.com/jeranaias/astro-tui/internal/orchestrator"
	"github.com/jeranaias/astro-tui/internal/postproc"
	"github.com/jeranaias/astro-tui/internal/store"
	"github.com/jeranaias/astro-tui/internal/ui/components"
)

// Update is the single message pump for the shell.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.sending {
			m.refreshViewport()
		}
		return m, cmd

	case components.ToastTickMsg:
		m.toasts = m.center.Tick()
		return m, components.ToastTickCmd()

	case quotaTickMsg:
		if m.tracker.MaybeRefresh() {
			m.center.Info("message quota refreshed")
		}
		m.quotaState = m.tracker.State()
		return m, quotaTickCmd()

	case sendResultMsg:
		return m.handleSendResult(msg.result)

	case exportDoneMsg:
		if msg.err != nil {
			m.center.Error(notify.CodeExportFailed, "export failed: "+msg.err.Error())
		} else {
			m.center.Success("exported to " + msg.path)
		}
		return m, nil

	case StoreChangedMsg:
		return m.handleStoreChanged()

	case refreshMsg:
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

const (
	headerHeight    = 1
	statusBarHeight = 1
	inputHeight     = 5 // textarea plus its border
)

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chromeHeight := headerHeight + statusBarHeight + inputHeight
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(msg.Width - 4)

	// markdown wraps to the bubble width, not the full terminal
	renderer, err := postproc.NewRenderer(msg.Width*3/4-4, m.theme)
	if err != nil {
		m.logger.Warn("markdown renderer unavailable", zap.Error(err))
	} else {
		m.renderer = renderer
	}

	m.refreshViewport()
	return m, nil
}

// =============================================================================
// SEND LIFECYCLE
// =============================================================================

func (m *Model) handleSendResult(res orchestrator.Result) (tea.Model, tea.Cmd) {
	// Stale-response guard: state is already persisted by the
	// orchestrator. Only the current conversation re-renders.
	if res.ConversationID == m.activeConvID {
		m.sending = false
		m.refreshViewport()
	}
	m.quotaState = m.tracker.State()

	if res.Err != nil {
		m.reportSendError(res)
		return m, nil
	}

	if m.msgIdx != nil {
		if conv, err := m.store.Get(res.ConversationID); err == nil {
			if err := m.msgIdx.IndexConversation(conv); err != nil {
				m.logger.Warn("index update failed", zap.Error(err))
			}
		}
	}
	return m, nil
}

func (m *Model) reportSendError(res orchestrator.Result) {
	var quotaErr *orchestrator.QuotaExhaustedError
	var inputErr *orchestrator.InputError
	var notFound *store.NotFoundError

	switch {
	case errors.As(res.Err, &quotaErr):
		m.center.Error(notify.CodeQuotaExhausted, quotaErr.Error())
	case errors.As(res.Err, &inputErr):
		m.center.Warning(res.Code, inputErr.Error())
	case errors.As(res.Err, &notFound):
		m.center.Warning(notify.CodeConversation, "conversation no longer exists")
	default:
		m.center.Error(res.Code, "Unable to get a response. Please try again.")
	}
}

func (m *Model) handleStoreChanged() (tea.Model, tea.Cmd) {
	if _, err := m.store.Get(m.activeConvID); err != nil {
		// the other instance deleted what we were looking at
		m.setActive(m.store.List()[0].ID)
	} else {
		m.refreshViewport()
	}
	m.center.Info("conversations reloaded from disk")
	return m, nil
}

// =============================================================================
// KEY DISPATCH
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modeWelcome:
		return m.handleWelcomeKey(msg)
	case modePalette:
		return m.handlePaletteKey(msg)
	case modeRename:
		return m.handleRenameKey(msg)
	case modeContentSearch:
		return m.handleContentSearchKey(msg)
	}
	return m.handleChatKey(msg)
}

// =============================================================================
// WELCOME MODE
// =============================================================================

// handleWelcomeKey holds the shell on the first-launch screen until the
// user accepts. Every other key is swallowed.
func (m *Model) handleWelcomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Accept) {
		m.prefs.SetBool(store.PrefAcceptedTerms, true)
		m.mode = modeChat
		m.refreshViewport()
	}
	return m, nil
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Send):
		return m.submit()

	case key.Matches(msg, keys.NewConv):
		conv := m.store.Create()
		m.setActive(conv.ID)
		return m, nil

	case key.Matches(msg, keys.Palette):
		m.palette.SetConversations(m.store.List())
		m.palette.SetQuery("")
		m.mode = modePalette
		return m, nil

	case key.Matches(msg, keys.ContentSearch):
		if m.msgIdx == nil {
			m.center.Warning(notify.CodeIndexFailed, "message search unavailable")
			return m, nil
		}
		m.searchBuf = ""
		m.searchHits = nil
		m.searchIdx = 0
		m.mode = modeContentSearch
		return m, nil

	case key.Matches(msg, keys.ToggleSearch):
		m.searchEnabled = !m.searchEnabled
		m.prefs.SetBool(store.PrefSearchEnabled, m.searchEnabled)
		if m.searchEnabled {
			m.center.Info("web search augmentation on")
		} else {
			m.center.Info("web search augmentation off")
		}
		return m, nil

	case key.Matches(msg, keys.Export):
		return m, m.exportActive()

	case key.Matches(msg, keys.Retry):
		return m.retryLast()

	case key.Matches(msg, keys.Edit):
		return m.editLast()

	case key.Matches(msg, keys.Timestamps):
		m.showTimes = !m.showTimes
		m.prefs.SetBool(store.PrefShowTimestamps, m.showTimes)
		m.refreshViewport()
		return m, nil
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	switch msg.String() {
	case "pgup", "pgdown":
		m.viewport, vpCmd = m.viewport.Update(msg)
	}
	return m, tea.Batch(taCmd, vpCmd)
}

// submit validates and launches a send. Input stays disabled for the
// active conversation until its placeholder resolves.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.sending {
		m.center.Info("still waiting for the previous response")
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	m.textarea.Reset()
	m.sending = true
	cmd := m.sendCmd(m.activeConvID, input)

	// the user message and placeholder appear as soon as the pipeline
	// appends them; a short spinner frame delay is acceptable
	return m, tea.Batch(cmd, m.spinner.Tick, m.deferredRefresh())
}

// retryLast pulls back the most recent failed exchange and resends its
// user message through the full pipeline.
func (m *Model) retryLast() (tea.Model, tea.Cmd) {
	if m.sending {
		m.center.Info("still waiting for the previous response")
		return m, nil
	}

	input, err := m.store.TakeFailedExchange(m.activeConvID)
	if err != nil {
		m.center.Info("no failed message to retry")
		return m, nil
	}

	m.sending = true
	cmd := m.sendCmd(m.activeConvID, input)
	return m, tea.Batch(cmd, m.spinner.Tick, m.deferredRefresh())
}

// editLast pulls back the most recent settled exchange and loads its
// user message into the input for editing. Sending again is a normal
// submit.
func (m *Model) editLast() (tea.Model, tea.Cmd) {
	if m.sending {
		m.center.Info("still waiting for the previous response")
		return m, nil
	}

	input, err := m.store.TakeLastExchange(m.activeConvID)
	if err != nil {
		m.center.Info("no message to edit")
		return m, nil
	}

	m.textarea.SetValue(input)
	m.textarea.CursorEnd()
	m.refreshViewport()
	return m, nil
}

// deferredRefresh re-renders after the pipeline has appended the user
// message and placeholder.
func (m *Model) deferredRefresh() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{}
	}
}

type refreshMsg struct{}

// =============================================================================
// PALETTE MODE
// =============================================================================

func (m *Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close):
		m.mode = modeChat
		return m, nil

	case key.Matches(msg, keys.Up):
		m.palette.MoveUp()
		return m, nil

	case key.Matches(msg, keys.Down):
		m.palette.MoveDown()
		return m, nil

	case key.Matches(msg, keys.Accept):
		if id := m.palette.Selected(); id != "" {
			m.setActive(id)
		}
		m.mode = modeChat
		return m, nil

	case key.Matches(msg, keys.Rename):
		if m.palette.Selected() != "" {
			m.renameBuf = ""
			m.mode = modeRename
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		return m.deleteSelected()
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if q := m.palette.Query(); q != "" {
			r := []rune(q)
			m.palette.SetQuery(string(r[:len(r)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		m.palette.SetQuery(m.palette.Query() + msg.String())
	}
	return m, nil
}

func (m *Model) deleteSelected() (tea.Model, tea.Cmd) {
	id := m.palette.Selected()
	if id == "" {
		return m, nil
	}

	if err := m.store.Delete(id); err != nil {
		m.center.Warning(notify.CodeConversation, "could not delete conversation")
		return m, nil
	}
	if m.msgIdx != nil {
		if err := m.msgIdx.Remove(id); err != nil {
			m.logger.Warn("index removal failed", zap.Error(err))
		}
	}

	// deletion may have created a replacement; the listing is fresh
	m.palette.SetConversations(m.store.List())
	if id == m.activeConvID {
		m.setActive(m.store.List()[0].ID)
	}
	return m, nil
}

// =============================================================================
// RENAME MODE
// =============================================================================

func (m *Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close):
		m.mode = modePalette
		return m, nil

	case key.Matches(msg, keys.Accept):
		title := strings.TrimSpace(m.renameBuf)
		if title != "" {
			if err := m.store.Rename(m.palette.Selected(), title); err != nil {
				m.center.Warning(notify.CodeConversation, "could not rename conversation")
			}
			m.palette.SetConversations(m.store.List())
		}
		m.mode = modePalette
		return m, nil
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if m.renameBuf != "" {
			r := []rune(m.renameBuf)
			m.renameBuf = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.renameBuf += msg.String()
	}
	return m, nil
}

// =============================================================================
// CONTENT SEARCH MODE
// =============================================================================

func (m *Model) handleContentSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close):
		m.mode = modeChat
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.searchIdx > 0 {
			m.searchIdx--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.searchIdx < len(m.searchHits)-1 {
			m.searchIdx++
		}
		return m, nil

	case key.Matches(msg, keys.Accept):
		if len(m.searchHits) == 0 {
			m.runContentSearch()
			return m, nil
		}
		hit := m.searchHits[m.searchIdx]
		m.setActive(hit.ConversationID)
		m.mode = modeChat
		return m, nil
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if m.searchBuf != "" {
			r := []rune(m.searchBuf)
			m.searchBuf = string(r[:len(r)-1])
		}
		m.searchHits = nil
	case tea.KeyRunes, tea.KeySpace:
		m.searchBuf += msg.String()
		m.searchHits = nil
	}
	return m, nil
}

// runContentSearch queries the FTS index, degrading to title search on
// failure.
func (m *Model) runContentSearch() {
	hits, err := m.msgIdx.Search(m.searchBuf, 20)
	if err != nil {
		m.logger.Warn("content search failed, falling back to titles", zap.Error(err))
		m.searchHits = nil
		for _, c := range m.store.SearchByTitle(m.searchBuf) {
			m.searchHits = append(m.searchHits, indexHitFromTitle(c.ID, c.GetTitle()))
		}
		if len(m.searchHits) == 0 {
			m.center.Warning(notify.CodeIndexFailed, "search unavailable")
		}
		m.searchIdx = 0
		return
	}
	m.searchHits = hits
	m.searchIdx = 0
}

// indexHitFromTitle shapes a title-only match like an FTS hit so the
// overlay renders both the same way.
func indexHitFromTitle(convID, title string) index.Hit {
	return index.Hit{ConversationID: convID, Title: title, Snippet: title}
}
