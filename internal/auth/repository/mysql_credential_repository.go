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

// MySQLCredentialRepository implements RefreshCredential persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new RefreshCredential.
func (m *MySQLCredentialRepository) Create(
	ctx context.Context,
	credential *authDomain.RefreshCredential,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	operatorID, err := credential.OperatorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal operator id")
	}

	var replacedByID []byte
	if credential.ReplacedByID != nil {
		replacedByID, err = credential.ReplacedByID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal replaced-by id")
		}
	}

	query := `INSERT INTO refresh_credentials
			  (id, token_hash, operator_id, expires_at, revoked_at, replaced_by_id, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		credential.TokenHash,
		operatorID,
		credential.ExpiresAt,
		credential.RevokedAt,
		replacedByID,
		credential.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create refresh credential")
	}
	return nil
}

// GetByTokenHash retrieves a credential by its token hash.
// Returns ErrCredentialNotFound if no credential matches.
func (m *MySQLCredentialRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.RefreshCredential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, token_hash, operator_id, expires_at, revoked_at, replaced_by_id, created_at
			  FROM refresh_credentials WHERE token_hash = ?`

	var credential authDomain.RefreshCredential
	var idBytes, operatorIDBytes, replacedByIDBytes []byte

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&idBytes,
		&credential.TokenHash,
		&operatorIDBytes,
		&credential.ExpiresAt,
		&credential.RevokedAt,
		&replacedByIDBytes,
		&credential.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get refresh credential")
	}

	credential.ID, err = uuid.FromBytes(idBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse credential id")
	}
	credential.OperatorID, err = uuid.FromBytes(operatorIDBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse operator id")
	}
	if replacedByIDBytes != nil {
		replacedByID, err := uuid.FromBytes(replacedByIDBytes)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse replaced-by id")
		}
		credential.ReplacedByID = &replacedByID
	}

	return &credential, nil
}

// MarkReplaced links the credential to its successor if and only if it is
// still live, via a compare-and-set update on the live predicate.
func (m *MySQLCredentialRepository) MarkReplaced(
	ctx context.Context,
	credentialID, replacedByID uuid.UUID,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credentialID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	successor, err := replacedByID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal replaced-by id")
	}

	query := `UPDATE refresh_credentials
			  SET replaced_by_id = ?
			  WHERE id = ? AND replaced_by_id IS NULL AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, successor, id)
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

// Revoke marks one credential revoked. Idempotent.
func (m *MySQLCredentialRepository) Revoke(ctx context.Context, credentialID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credentialID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE refresh_credentials
			  SET revoked_at = ?
			  WHERE id = ? AND revoked_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to revoke refresh credential")
	}
	return nil
}

// RevokeAllForOperator revokes every unrevoked credential the operator
// holds. Returns how many were revoked.
func (m *MySQLCredentialRepository) RevokeAllForOperator(
	ctx context.Context,
	operatorID uuid.UUID,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := operatorID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `UPDATE refresh_credentials
			  SET revoked_at = ?
			  WHERE operator_id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to revoke operator credentials")
	}

	revoked, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return revoked, nil
}

// DeleteExpired removes credentials that expired before the cutoff.
func (m *MySQLCredentialRepository) DeleteExpired(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM refresh_credentials WHERE expires_at < ?`,
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

// NewMySQLCredentialRepository creates a new MySQL RefreshCredential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
