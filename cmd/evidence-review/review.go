// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-review/internal/pipeline"
	"github.com/pdiddy/evidence-review/internal/report"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Compose the prompt, retrieve articles, and assemble the report",
	Long: `Review builds the review prompt from the question, searches PubMed with the
PICO terms, summarizes each abstract, and prints the assembled report.

Retrieval failures do not fail the command: the prompt is still printed and a
note explaining what was skipped goes to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := questionFromFlags(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadPipelineConfig(cmd)
		if err != nil {
			return err
		}
		p, err := pipeline.FromConfig(cfg, logger)
		if err != nil {
			return err
		}

		res, err := p.Run(cmd.Context(), q)
		if err != nil {
			return err
		}
		for _, n := range res.Notices {
			fmt.Fprintln(os.Stderr, "Note:", n)
		}

		if path, _ := cmd.Flags().GetString("docx"); path != "" {
			b, err := res.Export()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		}

		return printResult(cmd, res)
	},
}

func printResult(cmd *cobra.Command, res *pipeline.Result) error {
	f := cmd.Flags()
	asJSON, _ := f.GetBool("json")
	asYAML, _ := f.GetBool("yaml")
	asMarkdown, _ := f.GetBool("markdown")

	switch {
	case asJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case asYAML:
		return report.WriteYAML(os.Stdout, res.Report)
	case asMarkdown:
		return report.WriteMarkdown(os.Stdout, res.Report)
	default:
		width, _ := f.GetInt("width")
		fmt.Print(report.Terminal(res.Report, width))
		return nil
	}
}

func init() {
	addQuestionFlags(reviewCmd)
	addPipelineFlags(reviewCmd)

	reviewCmd.Flags().String("docx", "", "also export the report as a Word document to this path")
	reviewCmd.Flags().Lookup("docx").NoOptDefVal = report.DocxFilename
	reviewCmd.Flags().Bool("json", false, "print the run result as JSON")
	reviewCmd.Flags().Bool("yaml", false, "print the report as YAML (readable by render)")
	reviewCmd.Flags().Bool("markdown", false, "print the report as Markdown")
	reviewCmd.Flags().Int("width", 100, "wrap terminal output at this width (0 disables wrapping)")
	reviewCmd.MarkFlagsMutuallyExclusive("json", "yaml", "markdown")

	rootCmd.AddCommand(reviewCmd)
}
