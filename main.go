// astro TUI - A terminal client for the Astro hosted chat API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/astro-tui/internal/access"
	"github.com/jeranaias/astro-tui/internal/api"
	"github.com/jeranaias/astro-tui/internal/config"
	"github.com/jeranaias/astro-tui/internal/index"
	"github.com/jeranaias/astro-tui/internal/logging"
	"github.com/jeranaias/astro-tui/internal/notify"
	"github.com/jeranaias/astro-tui/internal/orchestrator"
	"github.com/jeranaias/astro-tui/internal/quota"
	"github.com/jeranaias/astro-tui/internal/search"
	"github.com/jeranaias/astro-tui/internal/store"
	"github.com/jeranaias/astro-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--version", "-v":
			fmt.Printf("astro %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "--help", "-h":
			printUsage()
			return
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "astro is an interactive terminal application and needs a TTY")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	dataDir := cfg.Storage.DataDir

	// Nothing may write to the terminal while the TUI runs, so all
	// diagnostics go to a file. A broken log file is not fatal.
	log, err := logging.New(dataDir)
	if err != nil {
		log = logging.NewNop()
	}
	defer log.Sync()

	grant := access.Lookup(cfg.API.Key)

	tracker := quota.New(
		filepath.Join(dataDir, "quota.json"),
		grant.QuotaLimit,
		time.Duration(grant.RefreshHours)*time.Hour,
	)

	convPath := filepath.Join(dataDir, "conversations.json")
	st, err := store.Open(convPath, log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open conversations: %v\n", err)
		os.Exit(1)
	}
	prefs := store.OpenPrefs(filepath.Join(dataDir, "prefs.json"), log.Logger)

	client := api.NewClient(&api.ClientConfig{
		BaseURL:        cfg.API.BaseURL,
		SearchURL:      cfg.Search.BaseURL,
		Key:            cfg.API.Key,
		Timeout:        cfg.API.Timeout(),
		RequestsPerSec: cfg.API.RequestsPerSec,
	})

	var augmentor orchestrator.ContextAugmentor
	if grant.HasPermission(access.PermSearch) {
		augmentor = search.New(client, cfg.Search.MaxResults, log.Logger)
	}

	orch := orchestrator.New(st, tracker, client, augmentor, log.Logger, orchestrator.Options{
		MaxAttempts: cfg.API.MaxRetries,
		RetryDelay:  cfg.API.RetryDelay(),
		MaxTokens:   cfg.API.MaxTokens,
		InputLimit:  cfg.UI.InputCharLimit,
	})

	// The FTS index is an accelerator, not a dependency: without it the
	// client still runs, degraded to title-only search.
	idx, err := index.Open(filepath.Join(dataDir, "index.db"), log.Logger)
	if err != nil {
		log.Warn("message index unavailable", zap.Error(err))
		idx = nil
	} else {
		defer idx.Close()
		if err := idx.Rebuild(st.List()); err != nil {
			log.Warn("index rebuild failed", zap.Error(err))
		}
	}

	m := chat.New(chat.Deps{
		Store:     st,
		Orch:      orch,
		Tracker:   tracker,
		Center:    notify.NewCenter(),
		Prefs:     prefs,
		Index:     idx,
		Grant:     grant,
		Logger:    log.Logger,
		ExportDir: filepath.Join(dataDir, "exports"),
		CharLimit: cfg.UI.InputCharLimit,
		Theme:     cfg.UI.Theme,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Pick up edits made by a second running instance.
	watcher, err := index.NewWatcher(convPath, func() {
		changed, err := st.Reload()
		if err != nil {
			log.Warn("reload after external change failed", zap.Error(err))
			return
		}
		if !changed {
			return
		}
		if idx != nil {
			if err := idx.Rebuild(st.List()); err != nil {
				log.Warn("index rebuild after external change failed", zap.Error(err))
			}
		}
		p.Send(chat.StoreChangedMsg{})
	}, log.Logger)
	if err != nil {
		log.Warn("conversation file watcher unavailable", zap.Error(err))
	} else {
		if err := watcher.Watch(); err != nil {
			log.Warn("conversation file watcher failed to start", zap.Error(err))
		}
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "astro exited with an error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`astro - terminal client for the Astro chat API

Usage:
  astro              start the chat interface
  astro --version    print version information

Keys:
  enter    send message
  ctrl+n   new conversation
  ctrl+k   conversation palette
  ctrl+s   search message history
  ctrl+w   toggle web search augmentation
  ctrl+e   export conversation to Markdown
  ctrl+t   toggle timestamps
  ctrl+r   retry the last failed message
  ctrl+o   edit and resend the last message
  ctrl+c   quit

Configuration lives at ~/.astro/config.toml. The API key can also be
set via the ASTRO_API_KEY environment variable.`)
}
