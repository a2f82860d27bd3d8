// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wos-client/internal/api"
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "Show the year range the backend has loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.New(backendConfig(), apiToken)
		minYear, maxYear, err := client.SupportedYearRange(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Supported year range: %d-%d\n", minYear, maxYear)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}
