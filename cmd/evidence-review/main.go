// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evidence-review CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	applog "github.com/pdiddy/evidence-review/internal/log"
	"github.com/pdiddy/evidence-review/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from the secrets directory at startup.
	loadedSecrets secrets.Secrets

	logger = slog.Default()
)

// rootCmd is the base command for the evidence-review CLI.
var rootCmd = &cobra.Command{
	Use:   "evidence-review",
	Short: "Build evidence review prompts and literature reports from PICO questions",
	Long: `evidence-review turns a structured clinical question (population,
intervention, comparison, outcome) into a review prompt, searches PubMed for
matching articles, summarizes each abstract, and assembles a report that can
be printed, rendered as Markdown, or exported as a Word document.

Credentials are read from files in the secrets directory (ncbi-api-key,
huggingface-token, openai-api-key) unless set by flag, environment, or config.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = applog.New(os.Stderr, jsonLogs, verbose)
		slog.SetDefault(logger)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Names())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evidence-review.yaml or $XDG_CONFIG_HOME/evidence-review/evidence-review.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evidence-review")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "evidence-review"))
	}

	setConfigDefaults()
	viper.SetEnvPrefix("EVIDENCE_REVIEW")
	viper.SetEnvKeyReplacer(envReplacer())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// envReplacer maps nested keys such as literature.max_results to
// EVIDENCE_REVIEW_LITERATURE_MAX_RESULTS.
func envReplacer() *strings.Replacer { return strings.NewReplacer(".", "_") }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
