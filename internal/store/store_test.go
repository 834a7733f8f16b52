// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/astro-tui/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "conversations.json"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenStartsWithOneConversation(t *testing.T) {
	s := newTestStore(t)
	list := s.List()
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if !list[0].HasDefaultTitle() {
		t.Errorf("initial conversation title = %q", list[0].Title)
	}
}

func TestCreateReusesEmptyDefault(t *testing.T) {
	s := newTestStore(t)
	first := s.Create()
	second := s.Create()
	if first.ID != second.ID {
		t.Error("Create must reuse an empty default-titled conversation")
	}
	if len(s.List()) != 1 {
		t.Errorf("len(list) = %d, want 1", len(s.List()))
	}
}

func TestCreateAfterUseMakesNew(t *testing.T) {
	s := newTestStore(t)
	first := s.Create()
	if _, err := s.BeginExchange(first.ID, "hello"); err != nil {
		t.Fatalf("BeginExchange failed: %v", err)
	}

	second := s.Create()
	if second.ID == first.ID {
		t.Error("Create must not reuse a conversation with messages")
	}
	list := s.List()
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].ID != second.ID {
		t.Error("new conversation must be first")
	}
}

func TestDeleteLastCreatesReplacement(t *testing.T) {
	s := newTestStore(t)
	only := s.List()[0]

	if err := s.Delete(only.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	list := s.List()
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1 replacement", len(list))
	}
	if list[0].ID == only.ID {
		t.Error("replacement must be a fresh conversation")
	}
	if !list[0].HasDefaultTitle() || len(list[0].Messages) != 0 {
		t.Error("replacement must be empty with the default title")
	}
}

func TestDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	err := s.Delete("conv_nope")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("err = %v, want NotFoundError", err)
	}
}

func TestExchangeLifecycle(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()

	placeholderID, err := s.BeginExchange(conv.ID, "What are black holes?")
	if err != nil {
		t.Fatalf("BeginExchange failed: %v", err)
	}

	got, _ := s.Get(conv.ID)
	if len(got.Messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(got.Messages))
	}
	if !got.HasPendingSend() {
		t.Error("placeholder must be pending")
	}

	if err := s.ResolveExchange(conv.ID, placeholderID, "Dense regions of spacetime."); err != nil {
		t.Fatalf("ResolveExchange failed: %v", err)
	}

	got, _ = s.Get(conv.ID)
	if got.HasPendingSend() {
		t.Error("no placeholder may remain after resolution")
	}
	last := got.GetLastMessage()
	if last.Content != "Dense regions of spacetime." || last.IsError {
		t.Errorf("resolved message = %+v", last)
	}
	if got.CompletedExchanges() != 1 {
		t.Errorf("CompletedExchanges = %d, want 1", got.CompletedExchanges())
	}
}

func TestFailExchange(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	placeholderID, _ := s.BeginExchange(conv.ID, "hi")

	if err := s.FailExchange(conv.ID, placeholderID, "Unable to reach Astro (API429)"); err != nil {
		t.Fatalf("FailExchange failed: %v", err)
	}

	got, _ := s.Get(conv.ID)
	last := got.GetLastMessage()
	if !last.IsError || last.IsLoading {
		t.Errorf("failed message = %+v", last)
	}
	if got.CompletedExchanges() != 0 {
		t.Error("errored exchange must not count as completed")
	}

	entries, _ := s.History(conv.ID)
	if len(entries) != 0 {
		t.Errorf("errored exchange must not enter history, got %v", entries)
	}
}

func TestTakeFailedExchange(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	placeholderID, _ := s.BeginExchange(conv.ID, "flaky question")
	s.FailExchange(conv.ID, placeholderID, "Unable to reach Astro (API503)")

	input, err := s.TakeFailedExchange(conv.ID)
	if err != nil {
		t.Fatalf("TakeFailedExchange failed: %v", err)
	}
	if input != "flaky question" {
		t.Errorf("input = %q, want the original user message", input)
	}
	got, _ := s.Get(conv.ID)
	if len(got.Messages) != 0 {
		t.Errorf("len(messages) = %d, want 0 after the exchange is taken back", len(got.Messages))
	}
}

func TestTakeFailedExchangeRefusesCompleted(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	placeholderID, _ := s.BeginExchange(conv.ID, "fine question")
	s.ResolveExchange(conv.ID, placeholderID, "fine answer")

	if _, err := s.TakeFailedExchange(conv.ID); !errors.Is(err, ErrNoExchange) {
		t.Errorf("err = %v, want ErrNoExchange for a completed exchange", err)
	}
	got, _ := s.Get(conv.ID)
	if len(got.Messages) != 2 {
		t.Error("a refused take must leave the conversation untouched")
	}
}

func TestTakeLastExchange(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	placeholderID, _ := s.BeginExchange(conv.ID, "draft question")
	s.ResolveExchange(conv.ID, placeholderID, "answer")

	input, err := s.TakeLastExchange(conv.ID)
	if err != nil {
		t.Fatalf("TakeLastExchange failed: %v", err)
	}
	if input != "draft question" {
		t.Errorf("input = %q, want the original user message", input)
	}
	got, _ := s.Get(conv.ID)
	if len(got.Messages) != 0 {
		t.Errorf("len(messages) = %d, want 0", len(got.Messages))
	}
}

func TestTakeLastExchangeRefusesPending(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	s.BeginExchange(conv.ID, "still waiting")

	if _, err := s.TakeLastExchange(conv.ID); !errors.Is(err, ErrNoExchange) {
		t.Errorf("err = %v, want ErrNoExchange while the reply is loading", err)
	}
}

func TestTakeExchangeFromEmptyConversation(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()

	if _, err := s.TakeLastExchange(conv.ID); !errors.Is(err, ErrNoExchange) {
		t.Errorf("err = %v, want ErrNoExchange for an empty conversation", err)
	}
	if _, err := s.TakeFailedExchange("conv_nope"); err == nil {
		t.Error("missing conversation must be reported")
	}
}

func TestResolveStaleMessage(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	err := s.ResolveExchange(conv.ID, "msg_gone", "late response")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "message" {
		t.Errorf("err = %v, want message NotFoundError", err)
	}
}

func TestRenameAndSearchByTitle(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	if err := s.Rename(conv.ID, "Black hole physics"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if got := s.SearchByTitle("black hole"); len(got) != 1 {
		t.Errorf("SearchByTitle = %d results, want 1", len(got))
	}
	if got := s.SearchByTitle("quantum"); len(got) != 0 {
		t.Errorf("SearchByTitle = %d results, want 0", len(got))
	}
	if got := s.SearchByTitle(""); len(got) != 1 {
		t.Errorf("empty query must match all, got %d", len(got))
	}
}

func TestRecencyOrdering(t *testing.T) {
	s := newTestStore(t)
	first := s.Create()
	s.BeginExchange(first.ID, "a")
	second := s.Create()
	s.BeginExchange(second.ID, "b")

	// touching the older conversation moves it back to the front
	s.Rename(first.ID, "revived")
	list := s.List()
	if list[0].ID != first.ID {
		t.Errorf("list[0] = %s, want most recently touched %s", list[0].ID, first.ID)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	conv := s.Create()
	placeholderID, _ := s.BeginExchange(conv.ID, "persist me")
	s.ResolveExchange(conv.ID, placeholderID, "persisted")
	s.Rename(conv.ID, "Round trip")

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.Get(conv.ID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Title != "Round trip" || len(got.Messages) != 2 {
		t.Errorf("reloaded conversation = %+v", got)
	}
	if got.Messages[1].Content != "persisted" {
		t.Errorf("reloaded content = %q", got.Messages[1].Content)
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	s.BeginExchange(conv.ID, "original")

	list := s.List()
	list[0].Messages[0].Content = "mutated"
	list[0].Title = "mutated"

	got, _ := s.Get(conv.ID)
	if got.Messages[0].Content != "original" || got.Title == "mutated" {
		t.Error("List must return deep copies")
	}
}

func TestHistoryWindow(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()

	for i := 0; i < 8; i++ {
		id, _ := s.BeginExchange(conv.ID, "question")
		s.ResolveExchange(conv.ID, id, "answer")
	}

	entries, err := s.History(conv.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != model.MaxHistoryEntries {
		t.Errorf("len(history) = %d, want %d", len(entries), model.MaxHistoryEntries)
	}
}

func TestPrefStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	p := OpenPrefs(path, nil)
	if got := p.Get(PrefTheme, "dark"); got != "dark" {
		t.Errorf("unset pref = %q, want fallback", got)
	}

	p.Set(PrefTheme, "light")
	p.SetBool(PrefSearchEnabled, true)

	reopened := OpenPrefs(path, nil)
	if got := reopened.Get(PrefTheme, "dark"); got != "light" {
		t.Errorf("theme = %q, want light", got)
	}
	if !reopened.GetBool(PrefSearchEnabled, false) {
		t.Error("search_enabled must persist")
	}
}

func TestReloadIgnoresOwnWrites(t *testing.T) {
	s := newTestStore(t)
	conv := s.Create()
	if _, err := s.BeginExchange(conv.ID, "hello"); err != nil {
		t.Fatalf("BeginExchange failed: %v", err)
	}

	changed, err := s.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if changed {
		t.Error("Reload must report no change after our own persist")
	}
}

func TestReloadPicksUpExternalEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conversations.json")

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Second instance writing to the same file
	other, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	conv := other.Create()
	if _, err := other.BeginExchange(conv.ID, "from the other window"); err != nil {
		t.Fatalf("BeginExchange failed: %v", err)
	}

	changed, err := s.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !changed {
		t.Fatal("Reload must report a change after an external write")
	}
	got, err := s.Get(conv.ID)
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}
	if len(got.Messages) == 0 {
		t.Error("reloaded conversation should carry the external message")
	}
}

func TestOpenSetsAsideCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conversations.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open must recover from a corrupt file, got %v", err)
	}
	if !s.Recovered() {
		t.Error("Recovered() must report the corrupt start")
	}
	if len(s.List()) != 1 {
		t.Errorf("len(list) = %d, want 1 fresh conversation", len(s.List()))
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt file must be kept as a backup: %v", err)
	}
}
