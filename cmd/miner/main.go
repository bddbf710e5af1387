package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	watch      bool
)

var rootCmd = &cobra.Command{
	Use:   "miner",
	Short: "Mine GitHub web applications for accessibility testing tools",
	Long: "Searches GitHub for public web application repositories, detects which " +
		"accessibility testing tools they use and appends the results to a CSV ledger.",
	SilenceUsage: true,
	RunE:         runCrawl,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default cfg/yaml/mode.yaml)")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", true, "Reload delays when the config file changes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}
