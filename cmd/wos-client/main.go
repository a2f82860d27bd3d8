// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wos-client CLI.
// Implements: prd001-filter, prd002-session, prd003-export,
//             prd004-detail, prd005-analysis (CLI surface).
// See docs/ARCHITECTURE § Client Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wos-client/internal/secrets"
	"github.com/pdiddy/wos-client/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// apiToken is the backend bearer token loaded from .secrets/ at startup.
// Empty means unauthenticated access.
var apiToken string

// rootCmd is the base command for the wos-client CLI.
var rootCmd = &cobra.Command{
	Use:   "wos-client",
	Short: "Command-line client for a Web-of-Science-style literature backend",
	Long: `wos-client searches a literature backend with multi-clause boolean
queries, pages through the bounded result set, opens single records, runs
disciplinary analyses, and exports matched records to CSV — either the
loaded records immediately or everything matching via an asynchronous
server-side bulk job with progress polling and cancellation.

The last executed search persists locally, so a later invocation restores
the result set without re-querying.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		token, err := secrets.Token(".secrets/")
		if err != nil {
			return err
		}
		apiToken = token
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wos-client.yaml or ~/.config/wos-client/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL (default http://localhost:8888)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wos-client")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wos-client"))
		}
	}

	viper.SetDefault("backend.base_url", "http://localhost:8888")
	viper.SetDefault("backend.timeout", "60s")
	viper.SetDefault("backend.requests_per_second", 4)
	viper.SetDefault("backend.max_retries", 3)
	viper.SetDefault("export.poll_interval", "2s")
	viper.SetDefault("export.output_dir", ".")
	viper.SetDefault("export.grace_delay", "3s")

	viper.SetEnvPrefix("WOS_CLIENT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// backendConfig assembles the backend connection settings from config
// and flags. The --base-url flag wins over the config file.
func backendConfig() types.BackendConfig {
	cfg := types.BackendConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("backend.timeout"),
			UserAgent: "wos-client/" + version,
		},
		BaseURL:           viper.GetString("backend.base_url"),
		RequestsPerSecond: viper.GetFloat64("backend.requests_per_second"),
		MaxRetries:        viper.GetInt("backend.max_retries"),
	}
	if flagURL, _ := rootCmd.PersistentFlags().GetString("base-url"); flagURL != "" {
		cfg.BaseURL = flagURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return cfg
}

func sessionConfig() types.SessionConfig {
	return types.SessionConfig{
		StoreDir: viper.GetString("session.store_dir"),
	}
}

func exportConfig() types.ExportConfig {
	return types.ExportConfig{
		PollInterval: viper.GetDuration("export.poll_interval"),
		OutputDir:    viper.GetString("export.output_dir"),
		GraceDelay:   viper.GetDuration("export.grace_delay"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
