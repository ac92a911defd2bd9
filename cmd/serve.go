package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/bootstrap"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve cohort layers and the synchronized comparison workspace",
		Long: `Analyzes every configured cohort, then serves GeoJSON layers, view sync
and layer state over HTTP with an optional server-sent event stream.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return fmt.Errorf("validate config: %w", validationErr)
	}

	log, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveErr := bootstrap.Serve(ctx, cfg, log); serveErr != nil {
		log.Error("Server stopped with error", infralogger.Error(serveErr))
		return serveErr
	}

	log.Info("Server stopped")
	return nil
}
