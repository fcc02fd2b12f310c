// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/evidence-review/pkg/types"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI summarizes with a chat-completion model. Length hints are passed
// in the system message and as a token ceiling.
type OpenAI struct {
	client    openai.Client
	model     string
	minLength int
	maxLength int
	logger    *slog.Logger
}

// NewOpenAI returns an OpenAI summarizer for cfg. cfg.Endpoint, when set,
// overrides the API base URL. The SDK's own retries are disabled so each
// call stays a single attempt.
func NewOpenAI(cfg types.SummarizerConfig, logger *slog.Logger) *OpenAI {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultHTTPTimeout
	}
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.Token != "" {
		opts = append(opts, option.WithAPIKey(cfg.Token))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, option.WithHeader("User-Agent", cfg.UserAgent))
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
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
	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     model,
		minLength: minLen,
		maxLength: maxLen,
		logger:    logger,
	}
}

// Summarize asks the model for a synopsis of abstract. Any API error or
// empty completion returns FailureMessage.
func (o *OpenAI) Summarize(ctx context.Context, abstract string) string {
	system := fmt.Sprintf("Summarize the following medical abstract in %d to %d words. "+
		"Reply with the summary only.", o.minLength, o.maxLength)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(abstract),
		},
		MaxTokens: openai.Int(int64(o.maxLength * 2)),
	})
	if err != nil {
		o.logger.Warn("summarization failed", "backend", "openai", "model", o.model, "error", err)
		return FailureMessage
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		o.logger.Warn("summarization returned no content", "backend", "openai", "model", o.model)
		return FailureMessage
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
