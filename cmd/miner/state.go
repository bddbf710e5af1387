package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/store"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the saved crawl position and counters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		loader, _ := cfg.NewViperLoader(configFile, false)
		config, err := loader.Load()
		if err != nil {
			return err
		}
		st, err := store.NewStateStore(config.Output.StatePath).Load()
		if err != nil {
			return err
		}
		processed, err := store.NewProcessedStore(config.Output.ProcessedPath).Load()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(struct {
			*store.CrawlState
			ProcessedCount int `json:"processedCount"`
		}{st, processed.Len()}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
