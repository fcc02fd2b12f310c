// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/evidence-review/internal/httputil"
	"github.com/pdiddy/evidence-review/pkg/types"
)

// huggingFaceEndpoint is the default inference URL. Declared as a var so
// tests can substitute an httptest server.
var huggingFaceEndpoint = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

// HuggingFace calls a hosted summarization model over the inference API.
type HuggingFace struct {
	endpoint  string
	token     string
	userAgent string
	minLength int
	maxLength int
	client    *http.Client
	retry     httputil.Policy
	logger    *slog.Logger
}

// NewHuggingFace returns a HuggingFace summarizer for cfg. An empty
// endpoint uses the default model URL; a zero timeout uses
// types.DefaultHTTPTimeout.
func NewHuggingFace(cfg types.SummarizerConfig, retry httputil.Policy, logger *slog.Logger) *HuggingFace {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = huggingFaceEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultHTTPTimeout
	}
	minLen, maxLen := cfg.MinLength, cfg.MaxLength
	if minLen <= 0 {
		minLen = types.DefaultSummaryMin
	}
	if maxLen <= 0 {
		maxLen = types.DefaultSummaryMax
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HuggingFace{
		endpoint:  endpoint,
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		minLength: minLen,
		maxLength: maxLen,
		client:    &http.Client{Timeout: timeout},
		retry:     retry,
		logger:    logger,
	}
}

type hfRequest struct {
	Inputs  string    `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

// Summarize posts abstract to the inference endpoint and returns the first
// summary_text. Any non-200 status, transport error, or unusable body
// returns FailureMessage.
func (h *HuggingFace) Summarize(ctx context.Context, abstract string) string {
	body, err := json.Marshal(hfRequest{
		Inputs:  abstract,
		Options: hfOptions{MinLength: h.minLength, MaxLength: h.maxLength},
	})
	if err != nil {
		h.logger.Warn("summarization failed", "error", err)
		return FailureMessage
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		h.logger.Warn("summarization failed", "error", err)
		return FailureMessage
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.retry.DoHTTP(ctx, h.client, req)
	if err != nil {
		h.logger.Warn("summarization failed", "endpoint", h.endpoint, "error", err)
		return FailureMessage
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		h.logger.Warn("summarization failed", "endpoint", h.endpoint, "status", resp.StatusCode)
		return FailureMessage
	}

	var out []hfSummary
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		h.logger.Warn("summarization failed", "endpoint", h.endpoint, "error", err)
		return FailureMessage
	}
	if len(out) == 0 || strings.TrimSpace(out[0].SummaryText) == "" {
		h.logger.Warn("summarization returned no summary_text", "endpoint", h.endpoint)
		return FailureMessage
	}
	return out[0].SummaryText
}
