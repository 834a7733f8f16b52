// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search across conversation messages.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/astro-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed     = errors.New("index is closed")
	ErrEmptyQuery = errors.New("empty search query")
)

// =============================================================================
// MESSAGE INDEX
// =============================================================================

// MessageIndex is a SQLite FTS index over message content for
// cross-conversation search. The index is derivative state: it can always
// be rebuilt from the conversation store, so every failure here degrades
// to title-only search instead of breaking the client.
type MessageIndex struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the index database at dbPath.
func Open(dbPath string, logger *zap.Logger) (*MessageIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	// Single connection: SQLite allows one writer and the index is
	// touched from UI callbacks, not a hot path.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init index metadata: %w", err)
	}

	return &MessageIndex{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (ix *MessageIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db == nil {
		return nil
	}
	err := ix.db.Close()
	ix.db = nil
	return err
}

// =============================================================================
// INDEXING
// =============================================================================

// IndexConversation replaces one conversation's rows. Called after each
// persist so the index tracks the store incrementally.
func (ix *MessageIndex) IndexConversation(conv *model.Conversation) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db == nil {
		return ErrClosed
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if err := indexConversationTx(tx, conv); err != nil {
		return err
	}
	return tx.Commit()
}

// Rebuild replaces the whole index from the full collection. Used on
// startup and after an external change to the data file.
func (ix *MessageIndex) Rebuild(convs []*model.Conversation) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db == nil {
		return ErrClosed
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	for _, conv := range convs {
		if err := indexConversationTx(tx, conv); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Remove drops a deleted conversation from the index.
func (ix *MessageIndex) Remove(convID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db == nil {
		return ErrClosed
	}
	_, err := ix.db.Exec(`DELETE FROM messages WHERE conversation_id = ?`, convID)
	return err
}

func indexConversationTx(tx *sql.Tx, conv *model.Conversation) error {
	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("failed to clear conversation rows: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (message_id, conversation_id, conversation_title, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range conv.Messages {
		// placeholders and error strings are not searchable content
		if m.IsLoading || m.IsError || m.IsEmpty() {
			continue
		}
		if _, err := stmt.Exec(m.ID, conv.ID, conv.GetTitle(), m.Role.String(), m.Content, m.Timestamp.Unix()); err != nil {
			return fmt.Errorf("failed to index message: %w", err)
		}
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Hit is one full-text search result.
type Hit struct {
	ConversationID string
	MessageID      string
	Title          string
	Role           string

	// Snippet is the matched fragment with FTS highlight markers
	Snippet string
}

// DefaultSearchLimit bounds result sets for list display.
const DefaultSearchLimit = 20

// Search runs a full-text query over message content, best matches first.
func (ix *MessageIndex) Search(query string, limit int) ([]Hit, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db == nil {
		return nil, ErrClosed
	}
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	rows, err := ix.db.Query(`
		SELECT m.conversation_id, m.message_id, m.conversation_title, m.role,
		       snippet(messages_fts, 0, '>', '<', '...', 12)
		FROM messages_fts
		JOIN messages m ON m.id = messages_fts.rowid
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ConversationID, &h.MessageID, &h.Title, &h.Role, &h.Snippet); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// buildFTSQuery quotes each token so user input can never inject FTS
// operators. Tokens are ANDed, matching all words.
func buildFTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}
