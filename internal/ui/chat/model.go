// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea shell for the astro client.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/astro-tui/internal/access"
	"github.com/jeranaias/astro-tui/internal/export"
	"github.com/jeranaias/astro-tui/internal/index"
	"github.com/jeranaias/astro-tui/internal/notify"
	"github.com/jeranaias/astro-tui/internal/orchestrator"
	"github.com/jeranaias/astro-tui/internal/postproc"
	"github.com/jeranaias/astro-tui/internal/quota"
	"github.com/jeranaias/astro-tui/internal/store"
	"github.com/jeranaias/astro-tui/internal/ui/components"
	"github.com/jeranaias/astro-tui/internal/ui/styles"
)

// =============================================================================
// MODES
// =============================================================================

// mode selects which surface owns keyboard input.
type mode int

const (
	modeChat mode = iota
	modeWelcome
	modePalette
	modeRename
	modeContentSearch
)

// =============================================================================
// MODEL
// =============================================================================

// Deps carries everything the shell needs, wired in main.
type Deps struct {
	Store     *store.Store
	Orch      *orchestrator.Orchestrator
	Tracker   *quota.Tracker
	Center    *notify.Center
	Prefs     *store.PrefStore
	Index     *index.MessageIndex // may be nil
	Grant     access.Grant
	Logger    *zap.Logger
	ExportDir string
	CharLimit int
	Theme     string
}

// Model is the root Bubble Tea model.
type Model struct {
	store   *store.Store
	orch    *orchestrator.Orchestrator
	tracker *quota.Tracker
	center  *notify.Center
	prefs   *store.PrefStore
	msgIdx  *index.MessageIndex
	grant   access.Grant
	logger  *zap.Logger

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	palette  *components.Palette
	renderer *postproc.Renderer

	mode          mode
	activeConvID  string
	searchEnabled bool
	showTimes     bool
	sending       bool
	width, height int
	ready         bool

	renameBuf   string
	searchBuf   string
	searchHits  []index.Hit
	searchIdx   int
	exportDir   string
	theme       string
	quotaState  quota.State
	toasts      []notify.Notification
}

// New builds the shell. The active conversation is the most recent one,
// restored from preferences when still present.
func New(deps Deps) *Model {
	ta := textarea.New()
	ta.Placeholder = "Message Astro..."
	ta.CharLimit = deps.CharLimit
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(styles.Purple)

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	m := &Model{
		store:         deps.Store,
		orch:          deps.Orch,
		tracker:       deps.Tracker,
		center:        deps.Center,
		prefs:         deps.Prefs,
		msgIdx:        deps.Index,
		grant:         deps.Grant,
		logger:        deps.Logger,
		textarea:      ta,
		spinner:       sp,
		palette:       components.NewPalette(),
		exportDir:     deps.ExportDir,
		theme:         deps.Theme,
		searchEnabled: deps.Prefs.GetBool(store.PrefSearchEnabled, false),
		showTimes:     deps.Prefs.GetBool(store.PrefShowTimestamps, false),
		quotaState:    deps.Tracker.State(),
	}

	m.activeConvID = m.restoreActive()

	// First launch blocks on the welcome screen until terms are accepted.
	if !deps.Prefs.GetBool(store.PrefAcceptedTerms, false) {
		m.mode = modeWelcome
	}

	if deps.Store.Recovered() {
		m.center.Warning(notify.CodeStoreFailed,
			"previous conversations could not be read; a backup was kept")
	}
	return m
}

// restoreActive picks the conversation to open with: the remembered one
// if it still exists, otherwise the most recent.
func (m *Model) restoreActive() string {
	remembered := m.prefs.Get(store.PrefActiveConv, "")
	if remembered != "" {
		if _, err := m.store.Get(remembered); err == nil {
			return remembered
		}
	}
	list := m.store.List()
	return list[0].ID
}

// Init starts the periodic ticks.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		quotaTickCmd(),
		components.ToastTickCmd(),
	)
}

// setActive switches the visible conversation and remembers the choice.
func (m *Model) setActive(convID string) {
	m.activeConvID = convID
	m.prefs.Set(store.PrefActiveConv, convID)
	m.sending = m.orch.PendingSend(convID)
	m.refreshViewport()
}

// exportActive writes the current conversation as Markdown.
func (m *Model) exportActive() tea.Cmd {
	convID := m.activeConvID
	return func() tea.Msg {
		conv, err := m.store.Get(convID)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := export.ExportToFile(conv, export.NewMarkdownExporter(nil), &export.Options{
			OutputDir:         m.exportDir,
			IncludeTimestamps: true,
		})
		return exportDoneMsg{path: path, err: err}
	}
}
