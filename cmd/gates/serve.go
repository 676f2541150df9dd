package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gates-backend/internal/config"
	"gates-backend/internal/di"
	"gates-backend/internal/infrastructure/persistence/dynamodb"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		container, cleanup, err := di.InitializeContainer(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer cleanup()

		if cfg.Database.CreateTable && cfg.Database.IsLocal() {
			if _, err := dynamodb.EnsureTable(ctx, container.Clients.DynamoDB, cfg.Database.TableName, time.Minute, logger); err != nil {
				return err
			}
		}

		if cfg.Source() != "" {
			watcher, err := config.NewWatcher(cfg, logger)
			if err != nil {
				return err
			}
			defer watcher.Stop()
			watcher.OnChange(container.ApplyConfig)
		}

		srv := &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      container.Router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server",
				zap.String("address", srv.Addr),
				zap.String("environment", string(cfg.Environment)),
				zap.Bool("demo_mode", cfg.DemoMode),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}
