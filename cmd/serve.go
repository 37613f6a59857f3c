package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"resolver/internal/config"
	"resolver/internal/ops"
	"resolver/internal/resolver"
	"resolver/internal/worker"
	"resolver/pkg/archive"
	"resolver/pkg/logger"
	"resolver/pkg/registry/handelsregister"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config) func(ctx context.Context) {
	server, err := ops.NewServer(ops.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts background workers and the operational HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			stopWebserver := setupServer(ctx, cfg)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			registryClient := handelsregister.New(&http.Client{
				Timeout: cfg.Registry.RequestTimeout,
			}, handelsregister.Options{
				BaseURL:        cfg.Registry.BaseURL,
				SearchAttempts: cfg.Registry.SearchAttempts,
				RetryDelay:     cfg.Registry.RetryDelay,
			})

			var arc *archive.Archive
			if cfg.Archive.Dir != "" {
				arc = archive.New(cfg.Archive.Dir)
			}

			svc := resolver.New(strg, registryClient, arc, resolver.Options{
				ViabilityFloor: cfg.Resolver.ViabilityFloor,
				ResultTTL:      cfg.Resolver.ResultTTL,
				MaxAttempts:    cfg.Resolver.MaxAttempts,
				DocumentTypes:  documentTypes(cfg),
			})

			riverClient, err := worker.Start(ctx, strg.Pool, svc, worker.Options{
				MaxWorkers:  cfg.Worker.MaxWorkers,
				MaxAttempts: cfg.Resolver.MaxAttempts,
				SnoozeDelay: cfg.Registry.RetryDelay,
			})
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			logger.Info(shutdownCtx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop workers", zap.Error(err))
			}

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
