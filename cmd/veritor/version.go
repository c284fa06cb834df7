package main

import (
	"fmt"

	"github.com/spf13/cobra"

	veritor "github.com/attestra/veritor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of veritor",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("veritor version %s\n", veritor.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
