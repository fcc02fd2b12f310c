// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize compresses article abstracts into short synopses via an
// external summarization service. Failures never propagate: a failed call
// yields FailureMessage for that record only.
package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/evidence-review/internal/httputil"
	"github.com/pdiddy/evidence-review/pkg/types"
)

// FailureMessage is the synopsis recorded when the service does not return
// a usable summary.
const FailureMessage = "Summarization failed."

// Summarizer turns an abstract into a synopsis. Implementations return
// FailureMessage instead of an error.
type Summarizer interface {
	Summarize(ctx context.Context, abstract string) string
}

// New returns the Summarizer selected by cfg.Backend, or nil when the
// backend is "none".
func New(cfg types.SummarizerConfig, retry httputil.Policy, logger *slog.Logger) (Summarizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Backend {
	case types.SummarizerHuggingFace, "":
		return NewHuggingFace(cfg, retry, logger), nil
	case types.SummarizerOpenAI:
		return NewOpenAI(cfg, logger), nil
	case types.SummarizerNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Backend)
	}
}

// SummarizeAll attaches a synopsis to every record that has an abstract,
// running at most workers calls at once. Records whose abstract is the
// NoAbstract default are never sent to s. Each result is written back at
// its own index, so record order is unchanged. Records not yet started
// when ctx is cancelled keep a nil synopsis, and ctx.Err() is returned.
func SummarizeAll(ctx context.Context, s Summarizer, records []types.ArticleRecord, workers int) error {
	if s == nil {
		return nil
	}
	if workers <= 0 {
		workers = types.DefaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range records {
		if !records[i].HasAbstract() {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			synopsis := s.Summarize(ctx, records[i].Abstract)
			records[i].Synopsis = &synopsis
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}
