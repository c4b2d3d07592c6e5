package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/cli"
	httpAdapter "github.com/aretw0/simflow/pkg/adapters/http"
	"github.com/aretw0/simflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve <form>",
	Short: "Serve the session API over HTTP",
	Long:  `Exposes sessions of a form as a JSON API, with Server-Sent Events and Prometheus metrics.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		logger := newLogger(cfg)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		backend, err := cli.OpenBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		form, err := cli.LoadForm(args[0])
		if err != nil {
			return err
		}
		hooks := observability.Chain(observability.LogHooks(logger), metrics.Hooks(form))
		engine, err := cli.NewEngine(form, backend, cfg, logger, simflow.WithLifecycleHooks(hooks))
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr: cfg.Addr,
			Handler: httpAdapter.NewHandler(engine,
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("simflow server listening", "address", srv.Addr, "form", engine.Form().ID, "store", cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info("shutting down", "signal", ctx.Signal())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (env SIMFLOW_ADDR, default :8080)")
}
