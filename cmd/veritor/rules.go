package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attestra/veritor/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with evidence rule sets",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Compile a rule set file and report problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleSet, err := rules.Load(args[0])
		if err != nil {
			return fmt.Errorf("rule set is invalid: %w", err)
		}

		intents := ruleSet.Intents()
		fmt.Printf("OK: %d intents compiled\n", len(intents))
		for _, intent := range intents {
			evidence := len(ruleSet.EvidenceFor(intent.Name))
			fmt.Printf("  %-14s %d patterns, %d evidence rules\n",
				intent.Name, len(intent.Patterns), evidence)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
}
