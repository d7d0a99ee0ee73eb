package main

import (
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskhub-api/internal/repository"
)

// NewFlushExpiredTokensCmd creates the flush-expired-tokens subcommand.
// Redis and memory blacklists expire entries on their own.
func NewFlushExpiredTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush-expired-tokens",
		Short: "Delete blacklist entries for tokens that have already expired",
		RunE:  runFlushExpiredTokens,
	}
}

func runFlushExpiredTokens(cmd *cobra.Command, _ []string) error {
	_, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	removed, err := repository.NewBlacklistRepository(db).DeleteExpired(cmd.Context(), time.Now())
	if err != nil {
		return oops.Code("FLUSH_FAILED").With("operation", "delete expired tokens").Wrap(err)
	}

	cmd.Printf("Removed %d expired blacklist entries\n", removed)
	return nil
}
