// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the archive-harvest CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-harvest/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in initConfig from log_level.
var logger = zerolog.Nop()

// rootCmd downloads every matching document when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "archive-harvest",
	Short: "Download every linked document from a single index page",
	Long: `archive-harvest fetches one HTML index page, extracts the links that point
to files with the configured extension (default .pdf) and downloads them one
at a time into a directory named for the run date.

Files that already exist are skipped unless --existing=overwrite is given.
A failed download is reported and the run moves on to the next link; only a
failure to fetch the index itself makes the command exit non-zero.`,
	SilenceUsage: true,
	RunE:         runHarvest,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./archive-harvest.yaml or ~/.config/archive-harvest/archive-harvest.yaml)")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("index-url", "", "index page to harvest")
	flags.String("extension", "", "file extension to download (default .pdf)")
	flags.String("output-dir", "", "parent directory for the dated run directory (default downloads)")
	flags.String("date-layout", "", "Go time layout naming the run directory (default 2006-01-02)")
	flags.String("existing", "", "policy for files already on disk: skip or overwrite (default skip)")
	flags.Duration("timeout", 0, "per-request timeout (default 30s)")
	flags.String("user-agent", "", "User-Agent header")
	flags.Duration("delay", 0, "pause between consecutive downloads")
	flags.String("allowed-host", "", "only download links whose host ends in this domain")
	flags.Bool("follow-iframes", false, "look inside iframes when the index has no matching links")
	flags.Bool("release-subdirs", false, "file downloads under the 4-digit release segment of their URL")
	flags.String("ledger", "", "SQLite run history file (empty disables)")
	flags.String("log-level", "", "diagnostics level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"index_url":       "index-url",
		"extension":       "extension",
		"output_dir":      "output-dir",
		"date_layout":     "date-layout",
		"existing":        "existing",
		"timeout":         "timeout",
		"user_agent":      "user-agent",
		"delay":           "delay",
		"allowed_host":    "allowed-host",
		"follow_iframes":  "follow-iframes",
		"release_subdirs": "release-subdirs",
		"ledger":          "ledger",
		"log_level":       "log-level",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	used, err := config.Setup(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger = config.NewLogger(viper.GetString("log_level"), os.Stderr)
	if used != "" {
		logger.Info().Str("file", used).Msg("Using config file")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
