package main

import (
	"github.com/spf13/cobra"

	veritor "github.com/attestra/veritor"
	"github.com/attestra/veritor/internal/cli"
	mcpadapter "github.com/attestra/veritor/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Model Context Protocol server",
	Long: `Exposes the engine as an MCP server so agent clients can call the
ask tool. By default it speaks JSON-RPC over stdio; --port switches to SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			return err
		}
		// Stdio carries the protocol; logs must stay on stderr.
		logger := cli.CreateLogger(cfg.LogLevel, debug)

		engine, cleanup, err := cli.BuildEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		server := mcpadapter.NewServer(engine, veritor.Version, logger)

		if port > 0 {
			ctx, cancel := cli.NewSignalContext(cmd.Context())
			defer cancel()
			return server.ServeSSE(ctx, port)
		}
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().IntP("port", "p", 0, "Serve over SSE on this port instead of stdio")
}
