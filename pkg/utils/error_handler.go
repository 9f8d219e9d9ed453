package utils

import (
	"context"
	"time"
)

// RetryPolicy bounds how many times a failing step may move on to a fallback
type RetryPolicy struct {
	MaxFallbacks int
}

// DefaultRetryPolicy allows exactly one fallback cycle
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxFallbacks: 1}
}

// Allows reports whether another fallback may be attempted after used ones
func (p RetryPolicy) Allows(used int) bool {
	return used < p.MaxFallbacks
}

// SimpleErrorHandler retries transient failures of external tools
type SimpleErrorHandler struct {
	maxRetries int
	baseDelay  time.Duration
}

// NewSimpleErrorHandler creates a handler with linear backoff starting at one second
func NewSimpleErrorHandler(maxRetries int) *SimpleErrorHandler {
	return &SimpleErrorHandler{
		maxRetries: maxRetries,
		baseDelay:  time.Second,
	}
}

// WithBaseDelay overrides the backoff unit
func (h *SimpleErrorHandler) WithBaseDelay(d time.Duration) *SimpleErrorHandler {
	h.baseDelay = d
	return h
}

// WithRetryContext runs fn until it succeeds, fails with a non-retryable
// error, the retries are exhausted or ctx is done.
func (h *SimpleErrorHandler) WithRetryContext(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !h.IsRetryable(err) || attempt == h.maxRetries {
			break
		}

		delay := h.baseDelay * time.Duration(attempt+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// IsRetryable decides whether an error is worth another attempt
func (h *SimpleErrorHandler) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch GetErrorType(err) {
	case ErrorTypeTimeout, ErrorTypeNetwork, ErrorTypeIO:
		return true
	default:
		return false
	}
}
