// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wos-client/internal/analysis"
	"github.com/pdiddy/wos-client/internal/api"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <keyword>",
	Short: "Run a disciplinary analysis for a keyword and year range",
	Long: `Analyze asks the backend to aggregate every paper matching the keyword
within the year range: publication trend per year, country and journal
distributions, top authors and institutions, and corpus totals.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("from", 0, "first year of the analysis window (required)")
	analyzeCmd.Flags().Int("to", 0, "last year of the analysis window (required)")
	analyzeCmd.Flags().Bool("json", false, "output the full analysis as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")

	client := api.New(backendConfig(), apiToken)
	svc := analysis.NewService(client)

	result, err := svc.Run(cmd.Context(), args[0], from, to)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return analysis.FormatJSON(result, os.Stdout)
	}
	fmt.Printf("Disciplinary analysis for %q, %d-%d\n\n", args[0], from, to)
	analysis.FormatTable(result, os.Stdout)
	return nil
}
