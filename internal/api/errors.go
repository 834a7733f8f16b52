// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Astro chat and search
// endpoints.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for retry classification.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeRateLimited is HTTP 429: transient, retried
	ErrTypeRateLimited
	// ErrTypeUnavailable is HTTP 503/504: transient, retried
	ErrTypeUnavailable
	// ErrTypeTimeout is a transport timeout: treated as transient
	ErrTypeTimeout
	// ErrTypeConnection is a transport failure before any response
	ErrTypeConnection
	// ErrTypeBadRequest is any other non-2xx status: fatal
	ErrTypeBadRequest
	// ErrTypeInvalidResponse is a 2xx with an empty or malformed body: fatal
	ErrTypeInvalidResponse
)

// ClientError represents an error from the chat or search endpoint.
type ClientError struct {
	Type    ErrorType
	Status  int // HTTP status, 0 for transport errors
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is transient. Only rate limits,
// service unavailability, gateway timeouts, and transport timeouts are
// retried; malformed bodies and all other statuses fail immediately.
func (e *ClientError) Retryable() bool {
	switch e.Type {
	case ErrTypeRateLimited, ErrTypeUnavailable, ErrTypeTimeout:
		return true
	}
	return false
}

// Code returns the stable user-facing error code for support correlation,
// derived from the HTTP status (API429, API503, ...) or a transport
// fallback (NET000, API000).
func (e *ClientError) Code() string {
	if e.Status > 0 {
		return fmt.Sprintf("API%03d", e.Status)
	}
	switch e.Type {
	case ErrTypeTimeout, ErrTypeConnection:
		return "NET000"
	default:
		return "API000"
	}
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// statusError builds a ClientError from a non-2xx HTTP status.
func statusError(status int, detail string) *ClientError {
	msg := "request failed with status " + http.StatusText(status)
	if detail != "" {
		msg = detail
	}

	switch status {
	case http.StatusTooManyRequests:
		return &ClientError{Type: ErrTypeRateLimited, Status: status, Message: msg}
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &ClientError{Type: ErrTypeUnavailable, Status: status, Message: msg}
	default:
		return &ClientError{Type: ErrTypeBadRequest, Status: status, Message: msg}
	}
}

// IsRetryable reports whether an error should be retried.
func IsRetryable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Retryable()
	}
	return false
}

// ErrorCode extracts the stable code from an error, falling back to the
// generic code for non-client errors.
func ErrorCode(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code()
	}
	return "ERR000"
}
