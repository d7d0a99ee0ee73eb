package main

import (
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/logging"
	"gorm.io/gorm"
)

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskhub",
		Short:         "Task and team management API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		NewServeCmd(),
		NewMigrateCmd(),
		NewFlushExpiredTokensCmd(),
	)
	return root
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	logger := logging.New(cfg.AppEnv, os.Stdout)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, nil, nil, oops.Code("DB_CONNECT_FAILED").With("driver", cfg.DB.Driver).Wrap(err)
	}
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close database", slog.Any("error", err))
	}
}
