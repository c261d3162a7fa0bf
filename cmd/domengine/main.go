package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dom-engine/internal/di"
	"dom-engine/internal/infrastructure/config"
	"dom-engine/internal/infrastructure/env"
)

var rootCmd = &cobra.Command{
	Use:           "domengine",
	Short:         "Edit, inspect and capture HTML documents in a headless browser",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration from .env files, the optional YAML file and
// the environment, and wires the container.
func bootstrap(ctx context.Context) (*di.Container, error) {
	envService := env.NewEnvService()

	cfg, err := config.Load(envService)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(envService.Loaded) > 0 {
		container.Logger.Debug("Loaded env files", "files", envService.Loaded)
	}
	return container, nil
}
