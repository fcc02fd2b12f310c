// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-review/internal/prompt"
	"github.com/pdiddy/evidence-review/internal/question"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the review prompt for a question without searching",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := questionFromFlags(cmd)
		if err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("save-question"); path != "" {
			if err := question.WriteFile(path, q); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved question to %s\n", path)
		}
		fmt.Print(prompt.Compose(q))
		return nil
	},
}

func init() {
	addQuestionFlags(promptCmd)
	promptCmd.Flags().String("save-question", "", "save the question to a YAML file for reuse with --question")

	rootCmd.AddCommand(promptCmd)
}
