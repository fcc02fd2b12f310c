// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// RetryBaseDelay is the first backoff interval when a Policy does not set
// one. Tests override this to avoid real sleeps.
var RetryBaseDelay = types.DefaultRetryBaseDelay

// Retryable is implemented by errors that know whether repeating the call
// that produced them could succeed.
type Retryable interface {
	Retryable() bool
}

// Policy is a bounded exponential-backoff retry policy. Attempts is the
// total number of tries and is clamped to [1, types.MaxRetryAttempts].
// The delay starts at BaseDelay and doubles on each retry.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	Logger    *slog.Logger
}

// NewPolicy builds a Policy from the retry section of the configuration.
func NewPolicy(cfg types.RetryConfig, logger *slog.Logger) Policy {
	return Policy{Attempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay, Logger: logger}
}

func (p Policy) attempts() int {
	switch {
	case p.Attempts < 1:
		return 1
	case p.Attempts > types.MaxRetryAttempts:
		return types.MaxRetryAttempts
	}
	return p.Attempts
}

func (p Policy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = RetryBaseDelay
	}
	return base << (attempt - 1)
}

func (p Policy) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Do runs fn until it succeeds, returns an error that is not Retryable, or
// the attempt budget is spent. The last error is returned unchanged. If
// ctx is cancelled during a backoff wait, Do returns ctx.Err().
func (p Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	max := p.attempts()
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var r Retryable
		if attempt >= max || !errors.As(err, &r) || !r.Retryable() {
			return err
		}

		delay := p.backoff(attempt)
		p.logger().Warn("retrying", "op", op, "attempt", attempt, "max_attempts", max, "delay", delay, "error", err)

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// DoHTTP sends req and retries on HTTP 429 and 5xx responses under the
// policy. Transport errors are returned at once. On each retried response
// the body is drained and closed before sleeping. After the budget is spent
// the last response is returned so the caller can inspect it. Requests with
// a body must be replayable (GetBody set, as http.NewRequest does for
// bytes.Reader bodies).
func (p Policy) DoHTTP(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	max := p.attempts()
	for attempt := 1; ; attempt++ {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}
		if !RetryableStatus(resp.StatusCode) || attempt >= max {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		delay := p.backoff(attempt)
		p.logger().Warn("retrying request", "url", req.URL.String(), "status", resp.StatusCode,
			"attempt", attempt, "max_attempts", max, "delay", delay)

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
