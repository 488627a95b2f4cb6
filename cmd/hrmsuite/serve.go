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
	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/api"
	"github.com/testforge/hrm-e2e/internal/runner"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest report and metrics, and accept run triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			cfg, logger := a.cfg, a.logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.buildSuite(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			router := api.NewRouter(api.RouterConfig{
				Context:       ctx,
				Runs:          s.runner,
				Catalog:       runner.Catalog(),
				Checks:        s.checks,
				Metrics:       a.metrics,
				Logger:        logger,
				Token:         cfg.Server.Token,
				CORSOrigins:   cfg.Server.CORSOrigins,
				RunsPerMinute: cfg.Server.RunsPerMinute,
			})

			server := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("Report server listening", zap.String("addr", cfg.Server.Addr))
				serverErrors <- server.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				logger.Info("Shutdown signal received")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
					_ = server.Close()
				}
			}

			// a triggered run sees the cancelled context and stops early
			router.Runs.Wait()
			logger.Info("Server stopped gracefully")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HRM_SERVER_ADDR)")
	return cmd
}
