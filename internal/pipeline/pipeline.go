// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one evidence review: compose the prompt, build the
// query, search and fetch articles, summarize abstracts, and assemble the
// report. Retrieval failures degrade the run to the prompt alone; they are
// reported as notices rather than errors.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pdiddy/evidence-review/internal/httputil"
	"github.com/pdiddy/evidence-review/internal/prompt"
	"github.com/pdiddy/evidence-review/internal/pubmed"
	"github.com/pdiddy/evidence-review/internal/query"
	"github.com/pdiddy/evidence-review/internal/report"
	"github.com/pdiddy/evidence-review/internal/summarize"
	"github.com/pdiddy/evidence-review/pkg/types"
)

// State is the terminal state of a run.
type State string

const (
	// StatePromptOnly: no articles, either because there was nothing to
	// search or because retrieval degraded.
	StatePromptOnly State = "prompt_only"

	// StatePromptWithArticles: at least one article record was assembled.
	StatePromptWithArticles State = "prompt_with_articles"

	// StateExportReady: the report has been serialized.
	StateExportReady State = "export_ready"
)

// LiteratureClient is the search and fetch surface a run needs.
// *pubmed.Client satisfies it.
type LiteratureClient interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Fetch(ctx context.Context, ids []string) ([]byte, error)
}

// Result is the outcome of one run.
type Result struct {
	RunID   string       `json:"run_id" yaml:"run_id"`
	Query   string       `json:"query" yaml:"query"`
	Report  types.Report `json:"report" yaml:"report"`
	State   State        `json:"state" yaml:"state"`
	Notices []string     `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// Export serializes the report as a .docx document and marks the result
// export ready. A failure leaves State unchanged.
func (r *Result) Export() ([]byte, error) {
	b, err := report.Export(r.Report)
	if err != nil {
		return nil, err
	}
	r.State = StateExportReady
	return b, nil
}

func (r *Result) notice(format string, args ...any) {
	r.Notices = append(r.Notices, fmt.Sprintf(format, args...))
}

// Pipeline holds the collaborators for review runs. It keeps no state
// between runs and is safe for concurrent use.
type Pipeline struct {
	cfg        types.PipelineConfig
	client     LiteratureClient
	summarizer summarize.Summarizer
	retry      httputil.Policy
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClient sets the literature client. Without one, runs produce the
// prompt only.
func WithClient(c LiteratureClient) Option {
	return func(p *Pipeline) { p.client = c }
}

// WithSummarizer sets the summarizer. Without one, records get no synopsis.
func WithSummarizer(s summarize.Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New returns a Pipeline for cfg with the given collaborators.
func New(cfg types.PipelineConfig, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	p.retry = httputil.NewPolicy(cfg.Retry, p.logger)
	return p
}

// FromConfig wires the PubMed client and the configured summarizer.
// Retrieval is left out when cfg.Literature.Enabled is false.
func FromConfig(cfg types.PipelineConfig, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := summarize.New(cfg.Summarizer, httputil.NewPolicy(cfg.Retry, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("configuring summarizer: %w", err)
	}

	opts := []Option{WithLogger(logger)}
	if s != nil {
		opts = append(opts, WithSummarizer(s))
	}
	if cfg.Literature.Enabled {
		opts = append(opts, WithClient(pubmed.NewClient(cfg.Literature, logger)))
	}
	return New(cfg, opts...), nil
}

// Run executes one review for q. It returns an error only for an invalid
// question or a cancelled context; retrieval and parse failures are
// absorbed into Result.Notices with the prompt still present.
func (p *Pipeline) Run(ctx context.Context, q types.ResearchQuestion) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid research question: %w", err)
	}

	res := &Result{RunID: uuid.NewString(), State: StatePromptOnly}
	log := p.logger.With("run_id", res.RunID)

	promptText := prompt.Compose(q)
	b := query.Builder{Parenthesize: p.cfg.Literature.Parenthesize}
	res.Query = b.Build(q.Population, q.Intervention, q.Comparison, q.Outcome)
	res.Report = report.Assemble(promptText, nil)

	if p.client == nil {
		log.Debug("no literature client configured")
		return res, nil
	}
	if res.Query == "" {
		res.notice("No PICO terms to search; showing the prompt only.")
		return res, nil
	}

	records, err := p.retrieve(ctx, log, res)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return res, nil
	}

	if p.summarizer != nil {
		if err := summarize.SummarizeAll(ctx, p.summarizer, records, p.cfg.Summarizer.Workers); err != nil {
			return nil, err
		}
		if n := countFailures(records); n > 0 {
			res.notice("%d of %d summaries could not be generated.", n, countAbstracts(records))
		}
	}

	res.Report = report.Assemble(promptText, records)
	res.State = StatePromptWithArticles
	log.Info("review assembled", "articles", len(records))
	return res, nil
}

// retrieve runs search, fetch, and parse. Degradations add a notice to res
// and return no records; only cancellation is returned as an error.
func (p *Pipeline) retrieve(ctx context.Context, log *slog.Logger, res *Result) ([]types.ArticleRecord, error) {
	limit := p.cfg.Literature.MaxResults
	if limit <= 0 {
		limit = types.DefaultMaxResults
	}

	var ids []string
	err := p.retry.Do(ctx, "search", func(ctx context.Context) error {
		var err error
		ids, err = p.client.Search(ctx, res.Query, limit)
		return err
	})
	if err != nil {
		return nil, p.degrade(ctx, log, res, "Literature search failed", err)
	}
	if len(ids) == 0 {
		res.notice("No articles matched the query.")
		return nil, nil
	}
	log.Debug("search complete", "ids", len(ids))

	var raw []byte
	err = p.retry.Do(ctx, "fetch", func(ctx context.Context) error {
		var err error
		raw, err = p.client.Fetch(ctx, ids)
		return err
	})
	if err != nil {
		return nil, p.degrade(ctx, log, res, "Fetching article details failed", err)
	}

	records, err := pubmed.Parse(raw)
	if err != nil {
		return nil, p.degrade(ctx, log, res, "Article details could not be read", err)
	}
	if len(records) == 0 {
		res.notice("The database returned no details for the matched articles.")
		return nil, nil
	}
	return records, nil
}

// degrade records a notice for a failed retrieval step. A cancelled
// context is returned as the run's error instead.
func (p *Pipeline) degrade(ctx context.Context, log *slog.Logger, res *Result, what string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var re *pubmed.RetrievalError
	var pe *pubmed.ParseError
	switch {
	case errors.As(err, &re):
		log.Warn("retrieval degraded", "endpoint", re.Endpoint, "status", re.StatusCode, "error", err)
	case errors.As(err, &pe):
		log.Warn("parse degraded", "endpoint", pe.Endpoint, "error", err)
	default:
		log.Warn("retrieval degraded", "error", err)
	}
	res.notice("%s (%s); showing the prompt only.", what, reason(err))
	return nil
}

// reason describes err for a notice. Wrapped error text is left out since
// transport errors carry the request URL and its api_key.
func reason(err error) string {
	var re *pubmed.RetrievalError
	var pe *pubmed.ParseError
	switch {
	case errors.As(err, &re) && re.StatusCode != 0:
		return fmt.Sprintf("%s returned HTTP %d", re.Endpoint, re.StatusCode)
	case errors.As(err, &re):
		return re.Endpoint + " could not be reached"
	case errors.As(err, &pe):
		return pe.Endpoint + " response was malformed"
	default:
		return "unexpected error"
	}
}

func countFailures(records []types.ArticleRecord) int {
	n := 0
	for _, r := range records {
		if r.Synopsis != nil && *r.Synopsis == summarize.FailureMessage {
			n++
		}
	}
	return n
}

func countAbstracts(records []types.ArticleRecord) int {
	n := 0
	for _, r := range records {
		if r.HasAbstract() {
			n++
		}
	}
	return n
}
