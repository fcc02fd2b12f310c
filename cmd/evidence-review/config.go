// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-review/internal/question"
	"github.com/pdiddy/evidence-review/pkg/types"
)

// setConfigDefaults registers every config key so environment variables
// reach viper.Unmarshal even when no config file sets them.
func setConfigDefaults() {
	d := types.DefaultPipelineConfig()

	viper.SetDefault("literature.enabled", d.Literature.Enabled)
	viper.SetDefault("literature.max_results", d.Literature.MaxResults)
	viper.SetDefault("literature.api_key", d.Literature.APIKey)
	viper.SetDefault("literature.parenthesize", d.Literature.Parenthesize)
	viper.SetDefault("literature.timeout", d.Literature.Timeout)
	viper.SetDefault("literature.user_agent", d.Literature.UserAgent)

	viper.SetDefault("summarizer.backend", string(d.Summarizer.Backend))
	viper.SetDefault("summarizer.endpoint", d.Summarizer.Endpoint)
	viper.SetDefault("summarizer.token", d.Summarizer.Token)
	viper.SetDefault("summarizer.model", d.Summarizer.Model)
	viper.SetDefault("summarizer.min_length", d.Summarizer.MinLength)
	viper.SetDefault("summarizer.max_length", d.Summarizer.MaxLength)
	viper.SetDefault("summarizer.workers", d.Summarizer.Workers)
	viper.SetDefault("summarizer.timeout", d.Summarizer.Timeout)
	viper.SetDefault("summarizer.user_agent", d.Summarizer.UserAgent)

	viper.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	viper.SetDefault("retry.base_delay", d.Retry.BaseDelay)
}

// addPipelineFlags registers the flags that override pipeline configuration.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-results", types.DefaultMaxResults, "number of articles to retrieve")
	cmd.Flags().Bool("no-retrieval", false, "skip the literature search and show the prompt only")
	cmd.Flags().String("summarizer", string(types.SummarizerHuggingFace), "summarization backend: huggingface, openai, or none")
	cmd.Flags().String("summarizer-token", "", "summarizer bearer token or API key")
	cmd.Flags().String("ncbi-api-key", "", "NCBI E-utilities API key")
	cmd.Flags().Int("retries", 1, "attempts per retrieval call (1-3)")
	cmd.Flags().Int("workers", types.DefaultWorkers, "concurrent summarization requests")
}

// loadPipelineConfig layers defaults, config file, environment, changed
// flags, and finally secret files for credentials still unset.
func loadPipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("max-results") {
		cfg.Literature.MaxResults, _ = f.GetInt("max-results")
	}
	if f.Changed("no-retrieval") {
		off, _ := f.GetBool("no-retrieval")
		cfg.Literature.Enabled = !off
	}
	if f.Changed("summarizer") {
		b, _ := f.GetString("summarizer")
		cfg.Summarizer.Backend = types.SummarizerBackend(b)
	}
	if f.Changed("summarizer-token") {
		cfg.Summarizer.Token, _ = f.GetString("summarizer-token")
	}
	if f.Changed("ncbi-api-key") {
		cfg.Literature.APIKey, _ = f.GetString("ncbi-api-key")
	}
	if f.Changed("retries") {
		cfg.Retry.MaxAttempts, _ = f.GetInt("retries")
	}
	if f.Changed("workers") {
		cfg.Summarizer.Workers, _ = f.GetInt("workers")
	}

	loadedSecrets.Apply(&cfg)
	return cfg, nil
}

// addQuestionFlags registers the PICO and review-option flags.
func addQuestionFlags(cmd *cobra.Command) {
	d := types.DefaultQuestion()
	cmd.Flags().String("question", "", "load the question from a YAML file; flags override its fields")
	cmd.Flags().String("topic", d.Topic, "review topic")
	cmd.Flags().String("population", d.Population, "population (P)")
	cmd.Flags().String("intervention", d.Intervention, "intervention (I)")
	cmd.Flags().String("comparison", d.Comparison, "comparison (C)")
	cmd.Flags().String("outcome", d.Outcome, "outcome (O)")
	cmd.Flags().String("study-types", "systematic_review,meta_analysis,rct", "comma-separated study types")
	cmd.Flags().Int("years", d.YearLimit, "restrict evidence to the last N years (1-10)")
	cmd.Flags().String("sources", "pubmed,cochrane,guidelines", "comma-separated preferred sources")
	cmd.Flags().String("format", string(d.OutputFormat), "output format: bullets, report, or table")
}

// questionFromFlags starts from the default question or --question file
// and applies every question flag the user set.
func questionFromFlags(cmd *cobra.Command) (types.ResearchQuestion, error) {
	f := cmd.Flags()
	q := types.DefaultQuestion()
	if path, _ := f.GetString("question"); path != "" {
		var err error
		if q, err = question.ReadFile(path); err != nil {
			return q, err
		}
	}

	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("topic", &q.Topic)
	str("population", &q.Population)
	str("intervention", &q.Intervention)
	str("comparison", &q.Comparison)
	str("outcome", &q.Outcome)

	if f.Changed("study-types") {
		v, _ := f.GetString("study-types")
		q.StudyTypes = question.StudyTypes(question.SplitList(v))
	}
	if f.Changed("years") {
		q.YearLimit, _ = f.GetInt("years")
	}
	if f.Changed("sources") {
		v, _ := f.GetString("sources")
		q.PreferredSources = question.Sources(question.SplitList(v))
	}
	if f.Changed("format") {
		v, _ := f.GetString("format")
		q.OutputFormat = types.OutputFormat(v)
	}

	if err := q.Validate(); err != nil {
		return q, err
	}
	return q, nil
}
