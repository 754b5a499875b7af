// Package repository implements data persistence for refresh credentials.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). Rotation uses compare-and-set updates so two concurrent
// refreshes of the same credential cannot both win.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	"github.com/adminguard/adminguard/internal/database"
	apperrors "github.com/adminguard/adminguard/internal/errors"
)

// PostgreSQLCredentialRepository implements RefreshCredential persistence for PostgreSQL.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

const credentialColumns = `id, token_hash, operator_id, expires_at, revoked_at, replaced_by_id, created_at`

// Create inserts a new RefreshCredential.
func (p *PostgreSQLCredentialRepository) Create(
	ctx context.Context,
	credential *authDomain.RefreshCredential,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO refresh_credentials (` + credentialColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.TokenHash,
		credential.OperatorID,
		credential.ExpiresAt,
		credential.RevokedAt,
		credential.ReplacedByID,
		credential.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create refresh credential")
	}
	return nil
}

// GetByTokenHash retrieves a credential by its token hash.
// Returns ErrCredentialNotFound if no credential matches.
func (p *PostgreSQLCredentialRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.RefreshCredential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + ` FROM refresh_credentials WHERE token_hash = $1`

	var credential authDomain.RefreshCredential
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&credential.ID,
		&credential.TokenHash,
		&credential.OperatorID,
		&credential.ExpiresAt,
		&credential.RevokedAt,
		&credential.ReplacedByID,
		&credential.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get refresh credential")
	}

	return &credential, nil
}

// MarkReplaced links the credential to its successor if and only if it is
// still live. The WHERE clause is the compare-and-set: a credential that was
// already rotated or revoked matches zero rows, and the caller sees
// ErrCredentialRevoked instead of a silent double rotation.
func (p *PostgreSQLCredentialRepository) MarkReplaced(
	ctx context.Context,
	credentialID, replacedByID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_credentials
			  SET replaced_by_id = $1
			  WHERE id = $2 AND replaced_by_id IS NULL AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, replacedByID, credentialID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark refresh credential replaced")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return authDomain.ErrCredentialRevoked
	}
	return nil
}

// Revoke marks one credential revoked. Idempotent: revoking an already
// revoked credential is a no-op.
func (p *PostgreSQLCredentialRepository) Revoke(ctx context.Context, credentialID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_credentials
			  SET revoked_at = $1
			  WHERE id = $2 AND revoked_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), credentialID); err != nil {
		return apperrors.Wrap(err, "failed to revoke refresh credential")
	}
	return nil
}

// RevokeAllForOperator revokes every unrevoked credential the operator
// holds. Returns how many were revoked.
func (p *PostgreSQLCredentialRepository) RevokeAllForOperator(
	ctx context.Context,
	operatorID uuid.UUID,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_credentials
			  SET revoked_at = $1
			  WHERE operator_id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), operatorID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to revoke operator credentials")
	}

	revoked, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return revoked, nil
}

// DeleteExpired removes credentials that expired before the cutoff. Expired
// rows are useless for reuse detection, so they are safe to reclaim.
func (p *PostgreSQLCredentialRepository) DeleteExpired(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM refresh_credentials WHERE expires_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired credentials")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return deleted, nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL RefreshCredential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
