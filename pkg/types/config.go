package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout. It must be finite; zero
	// falls back to DefaultHTTPTimeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-review/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LiteratureConfig holds settings for the bibliographic search and fetch stage.
type LiteratureConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Enabled controls whether retrieval runs at all. When false the
	// pipeline produces the prompt only.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// MaxResults is the number of ids requested from the search endpoint (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// APIKey is the NCBI E-utilities API key. Optional; it raises rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Parenthesize wraps each PICO component in parentheses in the query.
	Parenthesize bool `json:"parenthesize" yaml:"parenthesize" mapstructure:"parenthesize"`
}

// SummarizerBackend identifies the summarization service.
type SummarizerBackend string

const (
	SummarizerHuggingFace SummarizerBackend = "huggingface"
	SummarizerOpenAI      SummarizerBackend = "openai"
	SummarizerNone        SummarizerBackend = "none"
)

// SummarizerConfig holds settings for the per-abstract summarization stage.
type SummarizerConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the summarization service: huggingface, openai, or none.
	Backend SummarizerBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Endpoint is the inference URL for the huggingface backend, or the
	// base URL override for the openai backend.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`

	// Token is the bearer token (huggingface) or API key (openai).
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	// Model is the chat model used by the openai backend.
	Model string `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`

	// MinLength and MaxLength are the output-length hints sent to the service.
	MinLength int `json:"min_length" yaml:"min_length" mapstructure:"min_length"`
	MaxLength int `json:"max_length" yaml:"max_length" mapstructure:"max_length"`

	// Workers bounds the number of summarization requests in flight (default 5).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// RetryConfig controls the optional bounded retry around retrieval calls.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per call. 1 disables retry;
	// values above 3 are clamped to 3.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseDelay is the first backoff interval; it doubles on each retry.
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Literature LiteratureConfig `json:"literature" yaml:"literature" mapstructure:"literature"`
	Summarizer SummarizerConfig `json:"summarizer" yaml:"summarizer" mapstructure:"summarizer"`
	Retry      RetryConfig      `json:"retry" yaml:"retry" mapstructure:"retry"`
}

const (
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultUserAgent      = "evidence-review/0.1"
	DefaultMaxResults     = 5
	DefaultSummaryMin     = 30
	DefaultSummaryMax     = 100
	DefaultWorkers        = 5
	DefaultRetryBaseDelay = 2 * time.Second
	MaxRetryAttempts      = 3
)

// DefaultPipelineConfig returns the configuration used when no config file,
// environment variable, or flag overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Literature: LiteratureConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   DefaultHTTPTimeout,
				UserAgent: DefaultUserAgent,
			},
			Enabled:      true,
			MaxResults:   DefaultMaxResults,
			Parenthesize: true,
		},
		Summarizer: SummarizerConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   DefaultHTTPTimeout,
				UserAgent: DefaultUserAgent,
			},
			Backend:   SummarizerHuggingFace,
			MinLength: DefaultSummaryMin,
			MaxLength: DefaultSummaryMax,
			Workers:   DefaultWorkers,
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			BaseDelay:   DefaultRetryBaseDelay,
		},
	}
}
