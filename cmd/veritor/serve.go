package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/attestra/veritor/internal/cli"
	httpadapter "github.com/attestra/veritor/pkg/adapters/http"
	"github.com/attestra/veritor/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the engine in server mode, exposing the query API and metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		listen, _ := cmd.Flags().GetString("listen")

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if listen != "" {
			cfg.Listen = listen
		}
		logger := cli.CreateLogger(cfg.LogLevel, debug)

		reg := prometheus.NewRegistry()
		engine, cleanup, err := cli.BuildEngine(cfg, logger, observability.New(reg).Hooks())
		if err != nil {
			return err
		}
		defer cleanup()

		srv := &http.Server{
			Addr: cfg.Listen,
			Handler: httpadapter.NewHandler(engine,
				httpadapter.WithLogger(logger),
				httpadapter.WithMetrics(reg)),
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting veritor server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Println("veritor server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides config)")
}
