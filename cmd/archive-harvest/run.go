// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-harvest/internal/config"
	"github.com/pdiddy/archive-harvest/internal/harvest"
	"github.com/pdiddy/archive-harvest/internal/httputil"
	"github.com/pdiddy/archive-harvest/internal/ledger"
	"github.com/pdiddy/archive-harvest/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch the index and download every matching file",
	Long: `Run fetches the index page, extracts links ending in the configured
extension and downloads them sequentially into <output-dir>/<run date>/.
A manifest.yaml describing the run is written next to the files.`,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// newHarvester builds a Harvester from the current viper settings. The
// returned cleanup closes the ledger, if one was opened.
func newHarvester() (*harvest.Harvester, types.HarvestConfig, func(), error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, cfg, nil, err
	}

	opts := []harvest.Option{harvest.WithLogger(logger)}
	cleanup := func() {}
	if cfg.Ledger != "" {
		l, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return nil, cfg, nil, err
		}
		opts = append(opts, harvest.WithRecorder(l))
		cleanup = func() { l.Close() }
	}

	h := harvest.New(httputil.NewClient(cfg.HTTPConfig), afero.NewOsFs(), cfg, os.Stdout, opts...)
	return h, cfg, cleanup, nil
}

func runHarvest(cmd *cobra.Command, args []string) error {
	h, cfg, cleanup, err := newHarvester()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(os.Stdout, "Base URL: %s\n", cfg.IndexURL)
	summary, err := h.Run(cmd.Context())
	if err != nil {
		if harvest.IsIndexFailure(err) {
			fmt.Fprintf(os.Stderr, "index fetch failed, nothing downloaded: %v\n", err)
		}
		return err
	}
	if summary.HasFailures() {
		logger.Warn().Int("failed", summary.Failed()).Str("dir", summary.DestDir).
			Msg("run finished with failed downloads")
	}
	return nil
}
