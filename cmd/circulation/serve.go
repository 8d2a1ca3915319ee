package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/internal/httpapi"
)

const readHeaderTimeout = 5 * time.Second

func newServeCommand(c *cli) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the circulation HTTP API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.serve(ctx, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the events table before serving")

	return cmd
}

func (c *cli) serve(ctx context.Context, migrate bool) error {
	svc, err := c.openService(ctx)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
		defer cancel()

		if closeErr := svc.close(shutdownCtx); closeErr != nil {
			c.logger.Warn("closing service failed", "error", closeErr.Error())
		}
	}()

	if migrate {
		if err = svc.store.CreateSchema(ctx); err != nil {
			return err
		}
	}

	api := &http.Server{
		Addr: c.cfg.HTTPListen,
		Handler: httpapi.NewHandler(httpapi.Config{
			CORSOrigins: c.cfg.HTTPCORSOrigins,
			Tracing:     true,
			Logger:      c.logger,
		}, svc.commands, svc.queries),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", svc.telemetry.MetricsHandler())
	metrics := &http.Server{
		Addr:              c.cfg.MetricsListen,
		Handler:           metricsMux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErrs := make(chan error, 2)
	for _, server := range []*http.Server{api, metrics} {
		go func() {
			c.logger.Info("listening", "addr", server.Addr)
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				serveErrs <- serveErr
			}
		}()
	}

	select {
	case <-ctx.Done():
		c.logger.Info("shutting down")
	case err = <-serveErrs:
		c.logger.Error("server failed", "error", err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
	defer cancel()

	return errors.Join(err, api.Shutdown(shutdownCtx), metrics.Shutdown(shutdownCtx))
}
