// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// PREFERENCE STORE
// =============================================================================

// Preference keys.
const (
	PrefTheme          = "theme"
	PrefSearchEnabled  = "search_enabled"
	PrefShowTimestamps = "show_timestamps"
	PrefActiveConv     = "active_conversation"
	PrefAcceptedTerms  = "accepted_terms"
)

// PrefStore is a small persisted key-value map for UI preferences that
// survive restarts (theme, search toggle, last active conversation).
// Unlike the conversation store, a corrupt or missing prefs file is not
// an error: preferences reset to defaults.
type PrefStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
	logger *zap.Logger
}

// OpenPrefs loads preferences from path, starting empty when the file is
// missing or unreadable.
func OpenPrefs(path string, logger *zap.Logger) *PrefStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PrefStore{path: path, values: make(map[string]string), logger: logger}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &p.values); err != nil {
			logger.Warn("prefs file is corrupt, resetting", zap.Error(err))
			p.values = make(map[string]string)
		}
	}
	return p
}

// Get returns the value for key, or fallback when unset.
func (p *PrefStore) Get(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if v, ok := p.values[key]; ok {
		return v
	}
	return fallback
}

// GetBool returns the boolean value for key, or fallback when unset.
func (p *PrefStore) GetBool(key string, fallback bool) bool {
	switch p.Get(key, "") {
	case "true":
		return true
	case "false":
		return false
	}
	return fallback
}

// Set stores a value and persists immediately.
func (p *PrefStore) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[key] = value
	p.persistLocked()
}

// SetBool stores a boolean value.
func (p *PrefStore) SetBool(key string, value bool) {
	if value {
		p.Set(key, "true")
	} else {
		p.Set(key, "false")
	}
}

func (p *PrefStore) persistLocked() {
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		p.logger.Error("failed to create data dir", zap.Error(err))
		return
	}
	data, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		p.logger.Error("failed to encode prefs", zap.Error(err))
		return
	}
	if err := util.AtomicWriteFile(p.path, data, 0600); err != nil {
		p.logger.Error(fmt.Sprintf("failed to write prefs to %s", p.path), zap.Error(err))
	}
}
