// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-review/internal/pipeline"
	"github.com/pdiddy/evidence-review/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reviews over HTTP",
	Long: `Serve exposes the review pipeline over HTTP:

  GET  /healthz      liveness check
  POST /api/review   JSON question in, run result with Markdown and HTML out
  POST /api/export   JSON question in, research_report.docx out

Omitted question fields take the default question's values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPipelineConfig(cmd)
		if err != nil {
			return err
		}
		p, err := pipeline.FromConfig(cfg, logger)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		return server.New(p, logger).ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	addPipelineFlags(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "listen address")

	rootCmd.AddCommand(serveCmd)
}
