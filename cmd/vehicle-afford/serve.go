package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/vehicle-afford/internal/config"
	"github.com/iwvelando/vehicle-afford/internal/server"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var serverConfigPath string
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the affordability HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srvCfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				srvCfg.Address = address
			}

			logger := a.logger
			if srvCfg.Logging != (config.LoggingConfig{}) {
				logger, err = initializeLogger(mergeLogging(a.cfg.Logging, srvCfg.Logging), a.logLevel)
				if err != nil {
					return fmt.Errorf("failed to initialize server logger: %w", err)
				}
				defer func() { _ = logger.Sync() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, logger, srvCfg)
		},
	}
	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file (defaults are used when missing)")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight requests.
func (a *app) serve(ctx context.Context, logger *zap.Logger, srvCfg *server.Config) error {
	opts, err := srvCfg.HandlerOptions(logger, version)
	if err != nil {
		return err
	}
	opts.ForecastYears = a.cfg.Forecast.Years
	if opts.RateLimiter != nil {
		defer opts.RateLimiter.Stop()
	}
	if closer, ok := opts.Cache.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	httpServer := &http.Server{
		Addr:         srvCfg.Address,
		Handler:      server.NewHandler(logger, a.tables, opts),
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main.serve"),
			zap.String("address", srvCfg.Address),
			zap.Int64("max_body_bytes", srvCfg.BodySizeBytes()),
			zap.Bool("cache", opts.Cache != nil),
			zap.Bool("rate_limit", opts.RateLimiter != nil),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server", zap.String("op", "main.serve"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server exited", zap.String("op", "main.serve"))
	return nil
}
