package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	identityUseCase "github.com/adminguard/adminguard/internal/identity/usecase"
)

// RunUnlockOperator clears the brute-force lockout state of an operator,
// allowing immediate login attempts again.
//
// Requirements: Database must be migrated and accessible.
func RunUnlockOperator(
	ctx context.Context,
	operatorUseCase identityUseCase.OperatorUseCase,
	logger *slog.Logger,
	writer io.Writer,
	operatorID string,
) error {
	id, err := uuid.Parse(operatorID)
	if err != nil {
		return fmt.Errorf("invalid operator ID: %w", err)
	}

	logger.Info("unlocking operator", slog.String("operator_id", id.String()))

	if err := operatorUseCase.Unlock(ctx, id); err != nil {
		return fmt.Errorf("failed to unlock operator: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Operator %s unlocked\n", id.String())

	logger.Info("operator unlocked", slog.String("operator_id", id.String()))
	return nil
}
