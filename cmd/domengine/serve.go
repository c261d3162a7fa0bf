package main

import (
	"github.com/spf13/cobra"

	"dom-engine/internal/adapter/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	container, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	cfg := container.Config
	addr := cfg.HTTP.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	container.Logger.Info("Starting service",
		"addr", addr,
		"max_sessions", cfg.Browser.MaxSessions,
		"viewport", cfg.Browser.Viewport,
		"cache", container.Cache.Status(ctx),
	)

	srv := httpapi.NewServer(addr, container.HTTPHandler(), cfg.HTTP.ShutdownTimeout, container.Logger)
	if err := srv.Run(ctx); err != nil {
		container.Logger.Error("Service stopped with error", "error", err)
		return err
	}

	container.Logger.Info("Service stopped")
	return nil
}
