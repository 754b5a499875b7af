// Package repository implements data persistence for identity entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/adminguard/adminguard/internal/database"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// PostgreSQLOperatorRepository implements Operator persistence for PostgreSQL.
type PostgreSQLOperatorRepository struct {
	db *sql.DB
}

// Create inserts a new Operator into the PostgreSQL database.
func (p *PostgreSQLOperatorRepository) Create(ctx context.Context, operator *identityDomain.Operator) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO operators
			  (id, email, name, password_hash, role_name, failed_attempts, locked_until, lock_episodes, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		operator.ID,
		operator.Email,
		operator.Name,
		operator.PasswordHash,
		operator.RoleName,
		operator.FailedAttempts,
		operator.LockedUntil,
		operator.LockEpisodes,
		operator.IsActive,
		operator.CreatedAt,
		operator.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create operator")
	}
	return nil
}

// Update modifies an existing Operator in the PostgreSQL database.
// Lockout counters are excluded; they change only through UpdateLockState
// and IncrementFailedAttempts so concurrent logins cannot clobber them.
func (p *PostgreSQLOperatorRepository) Update(ctx context.Context, operator *identityDomain.Operator) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE operators
			  SET email = $1,
				  name = $2,
				  password_hash = $3,
				  role_name = $4,
				  is_active = $5,
				  updated_at = $6
			  WHERE id = $7`

	_, err := querier.ExecContext(
		ctx,
		query,
		operator.Email,
		operator.Name,
		operator.PasswordHash,
		operator.RoleName,
		operator.IsActive,
		operator.UpdatedAt,
		operator.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update operator")
	}
	return nil
}

const operatorColumns = `id, email, name, password_hash, role_name, failed_attempts, locked_until, lock_episodes, is_active, created_at, updated_at`

// Get retrieves an Operator by ID. Returns ErrOperatorNotFound if absent.
func (p *PostgreSQLOperatorRepository) Get(
	ctx context.Context,
	operatorID uuid.UUID,
) (*identityDomain.Operator, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = $1`
	return p.scanOperator(querier.QueryRowContext(ctx, query, operatorID))
}

// GetByEmail retrieves an Operator by email, case-insensitively.
// Returns ErrOperatorNotFound if absent.
func (p *PostgreSQLOperatorRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*identityDomain.Operator, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + operatorColumns + ` FROM operators WHERE email = $1`
	return p.scanOperator(querier.QueryRowContext(ctx, query, identityDomain.NormalizeEmail(email)))
}

// List retrieves operators ordered by ID descending with pagination.
func (p *PostgreSQLOperatorRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*identityDomain.Operator, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + operatorColumns + ` FROM operators ORDER BY id DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list operators")
	}
	defer func() {
		_ = rows.Close()
	}()

	operators := make([]*identityDomain.Operator, 0)
	for rows.Next() {
		var operator identityDomain.Operator
		err := rows.Scan(
			&operator.ID,
			&operator.Email,
			&operator.Name,
			&operator.PasswordHash,
			&operator.RoleName,
			&operator.FailedAttempts,
			&operator.LockedUntil,
			&operator.LockEpisodes,
			&operator.IsActive,
			&operator.CreatedAt,
			&operator.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan operator")
		}
		operators = append(operators, &operator)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate operators")
	}

	return operators, nil
}

// UpdatePassword replaces the stored password hash for an operator.
func (p *PostgreSQLOperatorRepository) UpdatePassword(
	ctx context.Context,
	operatorID uuid.UUID,
	passwordHash string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE operators SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	_, err := querier.ExecContext(ctx, query, passwordHash, operatorID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update operator password")
	}
	return nil
}

// UpdateLockState atomically sets the failure counter, lock expiry, and
// episode count in a single statement.
func (p *PostgreSQLOperatorRepository) UpdateLockState(
	ctx context.Context,
	operatorID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
	lockEpisodes int,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE operators SET failed_attempts = $1, locked_until = $2, lock_episodes = $3 WHERE id = $4`
	_, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, lockEpisodes, operatorID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update operator lock state")
	}
	return nil
}

// IncrementFailedAttempts atomically bumps the failure counter and returns
// the new value. Uses RETURNING so two concurrent failures each observe a
// distinct count.
func (p *PostgreSQLOperatorRepository) IncrementFailedAttempts(
	ctx context.Context,
	operatorID uuid.UUID,
) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE operators SET failed_attempts = failed_attempts + 1 WHERE id = $1 RETURNING failed_attempts`

	var failedAttempts int
	if err := querier.QueryRowContext(ctx, query, operatorID).Scan(&failedAttempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, identityDomain.ErrOperatorNotFound
		}
		return 0, apperrors.Wrap(err, "failed to increment operator failed attempts")
	}
	return failedAttempts, nil
}

// scanOperator scans a single operator row.
func (p *PostgreSQLOperatorRepository) scanOperator(row *sql.Row) (*identityDomain.Operator, error) {
	var operator identityDomain.Operator

	err := row.Scan(
		&operator.ID,
		&operator.Email,
		&operator.Name,
		&operator.PasswordHash,
		&operator.RoleName,
		&operator.FailedAttempts,
		&operator.LockedUntil,
		&operator.LockEpisodes,
		&operator.IsActive,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrOperatorNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get operator")
	}

	return &operator, nil
}

// NewPostgreSQLOperatorRepository creates a new PostgreSQL Operator repository.
func NewPostgreSQLOperatorRepository(db *sql.DB) *PostgreSQLOperatorRepository {
	return &PostgreSQLOperatorRepository{db: db}
}
