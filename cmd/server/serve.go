package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/infrastructure/redis"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/router"
	"github.com/yukikurage/taskhub-api/internal/token"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not run migrations on startup")
	return cmd
}

func runServe(ctx context.Context, skipMigrations bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	if !skipMigrations {
		if err := database.Migrate(db, logger); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
		}
	}

	blacklist, closeBlacklist, err := newBlacklist(ctx, cfg, db)
	if err != nil {
		return oops.Code("BLACKLIST_INIT_FAILED").With("backend", cfg.Auth.BlacklistBackend).Wrap(err)
	}
	defer closeBlacklist()

	gin.SetMode(cfg.GinMode)
	engine := router.New(router.Dependencies{
		Config:    cfg,
		DB:        db,
		Blacklist: blacklist,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("addr", srv.Addr), slog.String("blacklist", cfg.Auth.BlacklistBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// newBlacklist selects the token blacklist backend from configuration.
func newBlacklist(ctx context.Context, cfg *config.Config, db *gorm.DB) (token.Blacklist, func(), error) {
	switch cfg.Auth.BlacklistBackend {
	case config.BlacklistRedis:
		rdb, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewBlacklist(rdb), func() { _ = rdb.Close() }, nil
	case config.BlacklistMemory:
		return token.NewMemoryBlacklist(), func() {}, nil
	default:
		return repository.NewBlacklistRepository(db), func() {}, nil
	}
}
