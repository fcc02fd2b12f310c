// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-review/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the PubMed search query built from the PICO terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := questionFromFlags(cmd)
		if err != nil {
			return err
		}
		b := query.Builder{Parenthesize: viper.GetBool("literature.parenthesize")}
		if bare, _ := cmd.Flags().GetBool("bare"); bare {
			b.Parenthesize = false
		}

		s := b.Build(q.Population, q.Intervention, q.Comparison, q.Outcome)
		if s == "" {
			fmt.Fprintln(os.Stderr, "No PICO terms to search.")
			return nil
		}
		fmt.Println(s)
		return nil
	},
}

func init() {
	addQuestionFlags(queryCmd)
	queryCmd.Flags().Bool("bare", false, "join terms with AND without parentheses")

	rootCmd.AddCommand(queryCmd)
}
