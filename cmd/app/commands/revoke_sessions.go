package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authUseCase "github.com/adminguard/adminguard/internal/auth/usecase"
)

// RunRevokeSessions revokes every live refresh credential of an operator,
// forcing a fresh login on all devices. Used when a credential is suspected
// stolen or an operator leaves.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeSessions(
	ctx context.Context,
	auth authUseCase.AuthUseCase,
	logger *slog.Logger,
	writer io.Writer,
	operatorID string,
) error {
	id, err := uuid.Parse(operatorID)
	if err != nil {
		return fmt.Errorf("invalid operator ID: %w", err)
	}

	logger.Info("revoking operator sessions", slog.String("operator_id", id.String()))

	revoked, err := auth.RevokeOperatorSessions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Revoked %d session(s) for operator %s\n", revoked, id.String())

	logger.Info("sessions revoked",
		slog.String("operator_id", id.String()),
		slog.Int64("count", revoked),
	)
	return nil
}
