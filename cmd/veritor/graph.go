package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attestra/veritor/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the pipeline state machine as a Mermaid flowchart",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(graph.GenerateMermaid(nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
