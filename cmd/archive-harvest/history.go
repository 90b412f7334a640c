// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-harvest/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past runs recorded in the ledger",
	Long: `History lists the most recent runs stored in the ledger database. Given a
run ID it prints the outcome of every file in that run instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to list")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := viper.GetString("ledger")
	if path == "" {
		return fmt.Errorf("no ledger configured: set --ledger or ledger in the config file")
	}
	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if len(args) == 1 {
		files, err := l.Files(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return enc.Encode(files)
		}
		if len(files) == 0 {
			fmt.Printf("No files recorded for run %s.\n", args[0])
			return nil
		}
		for _, f := range files {
			detail := fmt.Sprintf("%d bytes", f.Bytes)
			if f.Error != "" {
				detail = f.Error
			}
			fmt.Fprintf(os.Stdout, "%-10s  %-40s  %s\n", f.Status, f.Filename, detail)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := l.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %5s  %5s  %5s  %s\n",
		"Run", "Started", "Down", "Skip", "Fail", "Directory")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %5d  %5d  %5d  %s\n",
			r.ID, r.Started.Local().Format("2006-01-02 15:04:05"),
			r.Downloaded, r.Skipped, r.Failed, r.DestDir)
	}
	return nil
}
