package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/adapters/notification"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/core/services"
	"github.com/SscSPs/shared_ledger_app/internal/handlers"
	"github.com/SscSPs/shared_ledger_app/internal/platform/config"
	"github.com/SscSPs/shared_ledger_app/internal/platform/metrics"
	"github.com/SscSPs/shared_ledger_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/shared_ledger_app/internal/repositories/memory"
	"github.com/SscSPs/shared_ledger_app/pkg/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(logger *slog.Logger) *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, cfg, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", true, "apply migrations before serving (postgres backend only)")
	return cmd
}

// buildRepositories selects the storage backend. The returned cleanup closes it.
func buildRepositories(ctx context.Context, logger *slog.Logger, cfg *config.Config, migrateFirst bool) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageBackend == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return portsrepo.RepositoryProvider{Store: memory.NewStore()}, func() {}, nil
	}

	if migrateFirst {
		if err := database.RunMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// buildNotifier publishes to Redis when it is configured and reachable and logs otherwise.
func buildNotifier(ctx context.Context, cfg *config.Config) (portssvc.CommitNotifier, func()) {
	client := notification.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if client == nil {
		return notification.LogNotifier{}, func() {}
	}
	return notification.NewRedisNotifier(client, cfg.CommitEventsChannel), func() { _ = client.Close() }
}

func serve(ctx context.Context, logger *slog.Logger, cfg *config.Config, migrateFirst bool) error {
	repos, closeRepos, err := buildRepositories(ctx, logger, cfg, migrateFirst)
	if err != nil {
		return err
	}
	defer closeRepos()

	notifier, closeNotifier := buildNotifier(ctx, cfg)
	defer closeNotifier()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	container := services.NewServiceContainer(cfg.Ledger, repos,
		services.WithCommitNotifier(notifier),
		services.WithMetrics(metrics.New(registry)),
	)

	router, err := handlers.NewRouter(logger, cfg, container, registry)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
