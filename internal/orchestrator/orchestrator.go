// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator drives the send pipeline for chat messages.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/astro-tui/internal/api"
	"github.com/jeranaias/astro-tui/internal/postproc"
	"github.com/jeranaias/astro-tui/internal/quota"
	"github.com/jeranaias/astro-tui/internal/store"
	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultMaxAttempts is the total number of tries for a transient
	// failure (one initial send plus two retries).
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = 1000 * time.Millisecond

	// DefaultInputLimit is the hard cap on message length in characters.
	DefaultInputLimit = 1000
)

// =============================================================================
// ERRORS
// =============================================================================

// QuotaExhaustedError is returned when the pre-flight gate rejects a send.
// No network call is made.
type QuotaExhaustedError struct {
	RetryIn time.Duration
}

func (e *QuotaExhaustedError) Error() string {
	if e.RetryIn <= 0 {
		return "message limit reached"
	}
	mins := int(e.RetryIn.Minutes()) + 1
	return fmt.Sprintf("message limit reached, retry in %d min", mins)
}

// Code returns the stable quota-gate code.
func (e *QuotaExhaustedError) Code() string { return "QUOTA001" }

// InputError is returned for input rejected before any state change.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

// =============================================================================
// DEPENDENCIES
// =============================================================================

// ChatClient is the slice of the API client the pipeline needs.
type ChatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
}

// ContextAugmentor folds search results into the outbound context.
// Implementations must be best-effort and never fail the send.
type ContextAugmentor interface {
	Augment(ctx context.Context, query, requestContext string) (string, []api.SearchResult)
}

// Options tunes the pipeline. Zero values fall back to defaults.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
	MaxTokens   int
	InputLimit  int

	// BaseContext is the system context prepended to every request.
	BaseContext string
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator owns the send state machine: quota gate, placeholder
// lifecycle, retry sequencing, response cleaning, and quota settlement.
//
// Quota settlement is exact: the pre-flight estimate is debited before
// the first attempt; on success the estimate is credited back and the
// real response cost debited, on any failure the estimate is credited
// back unchanged. A failed send never costs quota.
type Orchestrator struct {
	store     *store.Store
	tracker   *quota.Tracker
	client    ChatClient
	augmentor ContextAugmentor
	processor *postproc.Processor
	logger    *zap.Logger
	opts      Options
}

// New wires the pipeline. augmentor may be nil to disable search.
func New(st *store.Store, tracker *quota.Tracker, client ChatClient, augmentor ContextAugmentor, logger *zap.Logger, opts Options) *Orchestrator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.InputLimit <= 0 {
		opts.InputLimit = DefaultInputLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:     st,
		tracker:   tracker,
		client:    client,
		augmentor: augmentor,
		processor: postproc.New(),
		logger:    logger,
		opts:      opts,
	}
}

// Result is the terminal outcome of one send.
type Result struct {
	ConversationID string
	MessageID      string

	// Content is the cleaned response on success.
	Content string

	// Err and Code are set on failure. The placeholder has already been
	// resolved to an error string by the time the caller sees this.
	Err  error
	Code string

	// Attempts is how many network calls were made.
	Attempts int
}

// Send runs one message through the full pipeline and blocks until a
// terminal outcome. Designed to be wrapped in a tea.Cmd; the returned
// Result is safe to deliver to a conversation that has since been
// switched away from, because all state changes went through the store.
func (o *Orchestrator) Send(ctx context.Context, convID, input string, searchEnabled bool) Result {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{ConversationID: convID, Err: &InputError{Reason: "message is empty"}, Code: "INPUT001"}
	}
	if util.CountRunes(input) > o.opts.InputLimit {
		return Result{ConversationID: convID, Err: &InputError{Reason: fmt.Sprintf("message exceeds %d characters", o.opts.InputLimit)}, Code: "INPUT002"}
	}

	// Pre-flight quota gate. Rejection here makes zero network calls and
	// leaves the conversation untouched.
	estimate := quota.EstimateCost(util.CountRunes(input))
	if !o.tracker.Check(estimate) {
		return Result{
			ConversationID: convID,
			Err:            &QuotaExhaustedError{RetryIn: o.tracker.RetryIn()},
			Code:           "QUOTA001",
		}
	}
	o.tracker.Debit(estimate)

	placeholderID, err := o.store.BeginExchange(convID, input)
	if err != nil {
		o.tracker.Credit(estimate)
		return Result{ConversationID: convID, Err: err, Code: "CONV001"}
	}

	history, err := o.store.History(convID)
	if err != nil {
		history = nil
	}

	requestContext := o.opts.BaseContext
	var searchResults []api.SearchResult
	if searchEnabled && o.augmentor != nil {
		requestContext, searchResults = o.augmentor.Augment(ctx, input, requestContext)
	}

	req := &api.ChatRequest{
		Input:         input,
		Context:       requestContext,
		History:       history,
		SearchResults: searchResults,
		MaxTokens:     o.opts.MaxTokens,
	}

	resp, attempts, err := o.attempt(ctx, req)
	if err != nil {
		o.tracker.Credit(estimate)
		code := api.ErrorCode(err)
		o.failPlaceholder(convID, placeholderID, err, code)
		return Result{ConversationID: convID, MessageID: placeholderID, Err: err, Code: code, Attempts: attempts}
	}

	cleaned := o.processor.Clean(resp.Response)
	if err := o.store.ResolveExchange(convID, placeholderID, cleaned); err != nil {
		// Conversation was deleted mid-flight. The send succeeded, so
		// settle quota normally and report the stale delivery.
		o.settleSuccess(estimate, cleaned)
		return Result{ConversationID: convID, MessageID: placeholderID, Err: err, Code: "CONV001", Attempts: attempts}
	}
	o.settleSuccess(estimate, cleaned)

	o.maybeAutoTitle(ctx, convID)

	return Result{
		ConversationID: convID,
		MessageID:      placeholderID,
		Content:        cleaned,
		Attempts:       attempts,
	}
}

// =============================================================================
// RETRY LOOP
// =============================================================================

// attempt runs the retry loop: transient failures get up to MaxAttempts
// tries with a fixed delay; fatal failures return immediately.
func (o *Orchestrator) attempt(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, int, error) {
	var lastErr error
	for n := 1; n <= o.opts.MaxAttempts; n++ {
		resp, err := o.client.Chat(ctx, req)
		if err == nil {
			return resp, n, nil
		}
		lastErr = err

		if !api.IsRetryable(err) {
			return nil, n, err
		}
		if n == o.opts.MaxAttempts {
			break
		}

		o.logger.Info("transient send failure, retrying",
			zap.Int("attempt", n),
			zap.String("code", api.ErrorCode(err)),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, n, ctx.Err()
		case <-time.After(o.opts.RetryDelay):
		}
	}
	return nil, o.opts.MaxAttempts, lastErr
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// settleSuccess swaps the pre-flight estimate for the real response cost.
func (o *Orchestrator) settleSuccess(estimate int, cleaned string) {
	o.tracker.Credit(estimate)
	o.tracker.Debit(quota.EstimateCost(util.CountRunes(cleaned)))
}

// failPlaceholder resolves the loading placeholder to a user-facing error
// string. A store failure here means the conversation is gone, which is
// fine: there is no placeholder left to orphan.
func (o *Orchestrator) failPlaceholder(convID, placeholderID string, sendErr error, code string) {
	msg := fmt.Sprintf("Unable to get a response. Please try again. (%s)", code)
	if err := o.store.FailExchange(convID, placeholderID, msg); err != nil {
		o.logger.Warn("could not record send failure", zap.Error(err), zap.NamedError("send_error", sendErr))
	}
}

// PendingSend reports whether the conversation still has an unresolved
// placeholder. The UI uses this to keep input disabled.
func (o *Orchestrator) PendingSend(convID string) bool {
	conv, err := o.store.Get(convID)
	if err != nil {
		return false
	}
	return conv.HasPendingSend()
}
