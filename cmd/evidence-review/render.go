// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-review/internal/report"
)

var renderCmd = &cobra.Command{
	Use:   "render <report.yaml>",
	Short: "Render a saved report without re-running retrieval",
	Long: `Render reads a report saved with "review --yaml" and writes it as a Word
document, Markdown, HTML, or styled terminal text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		r, err := report.ReadYAML(in)
		if err != nil {
			return err
		}

		f := cmd.Flags()
		if path, _ := f.GetString("docx"); path != "" {
			out, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := report.WriteDocx(out, r); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
			return nil
		}

		asMarkdown, _ := f.GetBool("markdown")
		asHTML, _ := f.GetBool("html")
		switch {
		case asMarkdown:
			return report.WriteMarkdown(os.Stdout, r)
		case asHTML:
			s, err := report.HTML(r)
			if err != nil {
				return err
			}
			fmt.Print(s)
			return nil
		default:
			width, _ := f.GetInt("width")
			fmt.Print(report.Terminal(r, width))
			return nil
		}
	},
}

func init() {
	renderCmd.Flags().String("docx", "", "write a Word document to this path")
	renderCmd.Flags().Lookup("docx").NoOptDefVal = report.DocxFilename
	renderCmd.Flags().Bool("markdown", false, "print Markdown")
	renderCmd.Flags().Bool("html", false, "print HTML")
	renderCmd.Flags().Int("width", 100, "wrap terminal output at this width (0 disables wrapping)")
	renderCmd.MarkFlagsMutuallyExclusive("docx", "markdown", "html")

	rootCmd.AddCommand(renderCmd)
}
