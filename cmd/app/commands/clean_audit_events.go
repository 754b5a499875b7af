package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
)

// RunCleanAuditEvents deletes audit events older than the specified number of
// days. Retention is a compliance decision; the command refuses windows under
// one day so a typo cannot wipe the trail.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditEvents(
	ctx context.Context,
	trailUseCase auditUseCase.TrailUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 1 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning audit events", slog.Int("days", days))

	retention := time.Duration(days) * 24 * time.Hour
	count, err := trailUseCase.Purge(ctx, retention)
	if err != nil {
		return fmt.Errorf("failed to delete audit events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"count": count, "days": days}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d audit event(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	return nil
}
