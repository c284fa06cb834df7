package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/attestra/veritor/internal/cli"
	"github.com/attestra/veritor/internal/presentation/tui"
	"github.com/attestra/veritor/pkg/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the validated answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		threadID, _ := cmd.Flags().GetString("thread")
		jsonOut, _ := cmd.Flags().GetBool("json")

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger := cli.CreateLogger(cfg.LogLevel, debug)

		var hooks []domain.LifecycleHooks
		if debug {
			hooks = append(hooks, cli.DebugHooks(logger))
		}

		engine, cleanup, err := cli.BuildEngine(cfg, logger, hooks...)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := cli.NewSignalContext(cmd.Context())
		defer cancel()

		if !jsonOut && tui.IsInteractive() {
			tui.PrintBanner()
		}

		state, err := engine.Run(ctx, args[0], threadID)
		if err != nil {
			return fmt.Errorf("ask aborted: %w", err)
		}

		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(state)
		}

		render := tui.NewRenderer()
		out, err := render(state.FinalResponse)
		if err != nil {
			out = state.FinalResponse
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("thread", "t", "", "Conversation thread ID for multi-turn continuity")
	askCmd.Flags().Bool("json", false, "Print the full execution state as JSON")
}
