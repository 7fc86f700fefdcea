package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cvtailor/internal/observability"
	"cvtailor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, logger, err := loadConfigAndLogger()
		if err != nil {
			return err
		}

		manager := observability.NewManager(observability.Config{
			Enabled:        cfg.Observability.Enabled,
			ServiceName:    "cvtailor",
			ServiceVersion: Version,
			TraceExporter:  cfg.Observability.TraceExporter,
			MetricExporter: cfg.Observability.MetricExporter,
			OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
			MetricsAddr:    cfg.Observability.MetricsAddr,
		}, logger)
		if err := manager.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := manager.Shutdown(shutdownCtx); err != nil {
				logger.LogError(err, "observability shutdown failed")
			}
		}()

		app, err := buildApp(ctx, cfg, logger, manager.Metrics)
		if err != nil {
			return err
		}

		// Prompt and schema override files reload on change while serving.
		if err := app.library.Watch(ctx); err != nil {
			return err
		}

		srv := server.New(cfg.Server, app.svc, logger, manager.Metrics)
		return srv.Run(ctx)
	},
}
