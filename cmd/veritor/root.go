package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "veritor",
	Short: "Veritor answers regulation questions from validated sources",
	Long: `Veritor runs a validated retrieval pipeline: questions are classified,
routed to retrieval agents, and every answer is checked against evidence
rules before it reaches the caller. Unverifiable answers become curated
fallback responses instead of guesses.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
