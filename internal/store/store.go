// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists conversations and preferences on disk.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/astro-tui/internal/model"
	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// NotFoundError indicates a conversation or message ID that no longer
// exists, typically because it was deleted mid-flight.
type NotFoundError struct {
	Kind string // "conversation" or "message"
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found: " + e.ID
}

// ErrNoExchange is returned when a conversation has no exchange that can
// be taken back for retry or editing.
var ErrNoExchange = errors.New("no exchange to take back")

// =============================================================================
// CONVERSATION STORE
// =============================================================================

const storeVersion = 1

// storeFile is the on-disk envelope for the whole collection.
type storeFile struct {
	Version       int                   `json:"version"`
	Conversations []*model.Conversation `json:"conversations"`
}

// Store holds every conversation, ordered most recent first, and writes
// the whole collection atomically after each mutation. All methods are
// safe for concurrent use; accessors return deep copies so callers can
// never mutate stored state behind the lock.
type Store struct {
	mu            sync.RWMutex
	path          string
	conversations []*model.Conversation
	logger        *zap.Logger

	// lastSaved is the exact bytes of the last write or read, used by
	// Reload to tell our own persists apart from external edits.
	lastSaved []byte

	recovered bool
}

// Recovered reports whether Open found a corrupt data file and started
// fresh. The UI surfaces this as a warning so data loss is never silent.
func (s *Store) Recovered() bool {
	return s.recovered
}

// Open loads the collection from path, creating an empty store (with one
// fresh conversation) when the file does not exist. A corrupt file is set
// aside as a .corrupt backup and the client starts fresh: the history is
// preserved on disk for manual recovery, and the app still comes up.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// first run
	case err != nil:
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	default:
		var file storeFile
		if err := json.Unmarshal(data, &file); err != nil {
			logger.Error("conversations file is corrupt, setting it aside", zap.Error(err))
			if err := os.Rename(path, path+".corrupt"); err != nil {
				return nil, fmt.Errorf("failed to set aside corrupt conversations file: %w", err)
			}
			s.recovered = true
		} else {
			s.conversations = file.Conversations
			s.lastSaved = data
		}
	}

	sort.SliceStable(s.conversations, func(i, j int) bool {
		return s.conversations[i].UpdatedAt.After(s.conversations[j].UpdatedAt)
	})

	if len(s.conversations) == 0 {
		s.conversations = []*model.Conversation{model.NewConversation()}
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Reload re-reads the collection from disk, replacing in-memory state.
// Used when a second running instance changes the data file. It reports
// whether anything actually changed, so watcher callbacks can ignore
// events caused by this process's own writes. In-flight sends resolve
// against the reloaded state; a conversation deleted by the other
// instance surfaces as NotFoundError at resolution time.
func (s *Store) Reload() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to re-read conversations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if bytes.Equal(data, s.lastSaved) {
		return false, nil
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return false, fmt.Errorf("conversations file is corrupt: %w", err)
	}

	s.conversations = file.Conversations
	s.lastSaved = data
	sort.SliceStable(s.conversations, func(i, j int) bool {
		return s.conversations[i].UpdatedAt.After(s.conversations[j].UpdatedAt)
	})
	if len(s.conversations) == 0 {
		s.conversations = []*model.Conversation{model.NewConversation()}
	}
	return true, nil
}

// Create returns a conversation to start chatting in. An existing empty
// conversation that still has the default title is reused instead of
// piling up blanks; otherwise a fresh one goes to the front of the list.
func (s *Store) Create() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if len(c.Messages) == 0 && c.HasDefaultTitle() {
			return c.Clone()
		}
	}

	conv := model.NewConversation()
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.persist()
	return conv.Clone()
}

// List returns all conversations, most recently updated first.
func (s *Store) List() []*model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Get returns a copy of one conversation.
func (s *Store) Get(id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.findLocked(id)
	if c == nil {
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	}
	return c.Clone(), nil
}

// Delete removes a conversation. Deleting the last one immediately
// creates a replacement so the client always has somewhere to type.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "conversation", ID: id}
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if len(s.conversations) == 0 {
		s.conversations = []*model.Conversation{model.NewConversation()}
	}
	s.persist()
	return nil
}

// Rename sets a conversation's title.
func (s *Store) Rename(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(id)
	if c == nil {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	c.Title = strings.TrimSpace(title)
	s.touchLocked(c)
	s.persist()
	return nil
}

// SearchByTitle returns conversations whose title contains the query,
// case-insensitively, preserving recency order. An empty query matches
// everything.
func (s *Store) SearchByTitle(query string) []*model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var out []*model.Conversation
	for _, c := range s.conversations {
		if query == "" || strings.Contains(strings.ToLower(c.Title), query) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// =============================================================================
// EXCHANGE LIFECYCLE
// =============================================================================

// BeginExchange appends the user's message and a loading assistant
// placeholder, returning the placeholder's ID for later resolution.
// The conversation moves to the front of the list.
func (s *Store) BeginExchange(convID, input string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(convID)
	if c == nil {
		return "", &NotFoundError{Kind: "conversation", ID: convID}
	}

	c.AddUserMessage(input)
	placeholder := c.AddAssistantPlaceholder()
	s.touchLocked(c)
	s.persist()
	return placeholder.ID, nil
}

// ResolveExchange fills a loading placeholder with the final response.
// A missing conversation or message is reported, not ignored: the
// caller decides whether a stale resolution matters.
func (s *Store) ResolveExchange(convID, messageID, response string) error {
	return s.resolve(convID, messageID, func(m *model.Message) {
		m.Resolve(response)
	})
}

// FailExchange marks a loading placeholder as errored with a
// user-facing message. No placeholder is ever left loading.
func (s *Store) FailExchange(convID, messageID, errMsg string) error {
	return s.resolve(convID, messageID, func(m *model.Message) {
		m.ResolveError(errMsg)
	})
}

func (s *Store) resolve(convID, messageID string, fn func(*model.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(convID)
	if c == nil {
		return &NotFoundError{Kind: "conversation", ID: convID}
	}

	msg := c.GetMessageByID(messageID)
	if msg == nil {
		return &NotFoundError{Kind: "message", ID: messageID}
	}
	fn(msg)
	s.touchLocked(c)
	s.persist()
	return nil
}

// TakeFailedExchange removes the most recent failed exchange (the user
// message and its errored assistant reply) and returns the user input so
// the caller can resend it.
func (s *Store) TakeFailedExchange(convID string) (string, error) {
	return s.takeExchange(convID, true)
}

// TakeLastExchange removes the most recent settled exchange regardless
// of outcome and returns the user input, for edit-and-resend. An
// exchange whose reply is still loading is refused.
func (s *Store) TakeLastExchange(convID string) (string, error) {
	return s.takeExchange(convID, false)
}

func (s *Store) takeExchange(convID string, failedOnly bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(convID)
	if c == nil {
		return "", &NotFoundError{Kind: "conversation", ID: convID}
	}

	n := len(c.Messages)
	if n < 2 {
		return "", ErrNoExchange
	}
	last := c.Messages[n-1]
	prev := c.Messages[n-2]
	if prev.Role != model.RoleUser || last.Role != model.RoleAssistant || last.IsLoading {
		return "", ErrNoExchange
	}
	if failedOnly && !last.IsError {
		return "", ErrNoExchange
	}

	c.Messages = c.Messages[:n-2]
	s.touchLocked(c)
	s.persist()
	return prev.Content, nil
}

// History returns the rolling context window for a conversation.
func (s *Store) History(convID string) ([]model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.findLocked(convID)
	if c == nil {
		return nil, &NotFoundError{Kind: "conversation", ID: convID}
	}
	return c.BuildHistory(), nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// findLocked returns the live conversation. Caller holds the lock.
func (s *Store) findLocked(id string) *model.Conversation {
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// touchLocked bumps UpdatedAt and moves the conversation to the front.
func (s *Store) touchLocked(c *model.Conversation) {
	c.UpdatedAt = time.Now()
	for i, existing := range s.conversations {
		if existing == c && i > 0 {
			copy(s.conversations[1:i+1], s.conversations[:i])
			s.conversations[0] = c
			break
		}
	}
}

// persist writes the whole collection. Failures are logged, not fatal:
// the in-memory state stays authoritative for the session.
func (s *Store) persist() {
	if err := s.persistLocked(); err != nil {
		s.logger.Error("failed to persist conversations", zap.Error(err))
	}
}

func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	data, err := json.MarshalIndent(storeFile{
		Version:       storeVersion,
		Conversations: s.conversations,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode conversations: %w", err)
	}

	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write conversations: %w", err)
	}
	s.lastSaved = data
	return nil
}
