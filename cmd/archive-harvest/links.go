// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List the links a run would download",
	Long: `Links fetches the index page and prints every matching link with the
file name it would be saved under. Nothing is downloaded.`,
	RunE: runLinks,
}

func init() {
	linksCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	h, _, cleanup, err := newHarvester()
	if err != nil {
		return err
	}
	defer cleanup()

	links, err := h.Links(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(links)
	}

	if len(links) == 0 {
		fmt.Println("No matching links found.")
		return nil
	}
	for _, l := range links {
		fmt.Fprintf(os.Stdout, "%-40s  %s\n", l.Filename, l.URL)
	}
	fmt.Fprintf(os.Stdout, "\n%d links\n", len(links))
	return nil
}
