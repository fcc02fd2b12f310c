// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// RetrievalError reports a failed search or fetch call. StatusCode is zero
// when the request never produced a response (transport failure).
type RetrievalError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Retryable reports whether a repeat of the same call could succeed:
// transport failures, HTTP 429, and 5xx responses. Cancellation is final.
func (e *RetrievalError) Retryable() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ParseError reports a response body that is not decodable XML at all.
// A well-formed article missing a field is not a ParseError.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
