package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/adminguard/adminguard/internal/auth/usecase"
)

// RunCleanExpiredCredentials deletes refresh credentials that are past their
// expiry. Intended to run periodically from cron.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredCredentials(
	ctx context.Context,
	auth authUseCase.AuthUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("cleaning expired refresh credentials")

	count, err := auth.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge expired credentials: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"count": count}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Deleted %d expired credential(s)\n", count)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))
	return nil
}
