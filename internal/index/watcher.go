// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// DATA FILE WATCHER
// =============================================================================

// DefaultDebounce coalesces bursts of write events into one reload. The
// atomic write pattern produces several events per save (create, rename).
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes the conversations data file and fires a callback when
// another process changes it (a second running instance). The callback
// typically reloads the store and rebuilds the index.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending bool
	lastHit time.Time
}

// NewWatcher creates a watcher for the data file at path. onChange runs
// on the watcher goroutine after the debounce window settles.
func NewWatcher(path string, onChange func(), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// Watch starts observing. The parent directory is watched rather than the
// file itself: atomic writes replace the file, which would break a direct
// file watch.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.processEvents(ctx)
	go w.processPending(ctx)
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.watcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("watcher goroutine panicked", zap.Any("panic", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.lastHit = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) processPending(ctx context.Context) {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending && time.Since(w.lastHit) >= w.debounce
			if fire {
				w.pending = false
			}
			w.mu.Unlock()

			if fire && w.onChange != nil {
				w.onChange()
			}
		}
	}
}
