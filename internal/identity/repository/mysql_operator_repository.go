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

// MySQLOperatorRepository implements Operator persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLOperatorRepository struct {
	db *sql.DB
}

// Create inserts a new Operator into the MySQL database.
func (m *MySQLOperatorRepository) Create(ctx context.Context, operator *identityDomain.Operator) error {
	querier := database.GetTx(ctx, m.db)

	id, err := operator.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `INSERT INTO operators
			  (id, email, name, password_hash, role_name, failed_attempts, locked_until, lock_episodes, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Update modifies an existing Operator in the MySQL database.
// Lockout counters are excluded; they change only through UpdateLockState
// and IncrementFailedAttempts.
func (m *MySQLOperatorRepository) Update(ctx context.Context, operator *identityDomain.Operator) error {
	querier := database.GetTx(ctx, m.db)

	id, err := operator.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `UPDATE operators
			  SET email = ?,
				  name = ?,
				  password_hash = ?,
				  role_name = ?,
				  is_active = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		operator.Email,
		operator.Name,
		operator.PasswordHash,
		operator.RoleName,
		operator.IsActive,
		operator.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update operator")
	}
	return nil
}

// Get retrieves an Operator by ID. Returns ErrOperatorNotFound if absent.
func (m *MySQLOperatorRepository) Get(
	ctx context.Context,
	operatorID uuid.UUID,
) (*identityDomain.Operator, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := operatorID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = ?`
	return m.scanOperator(querier.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves an Operator by email, case-insensitively.
func (m *MySQLOperatorRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*identityDomain.Operator, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + operatorColumns + ` FROM operators WHERE email = ?`
	return m.scanOperator(querier.QueryRowContext(ctx, query, identityDomain.NormalizeEmail(email)))
}

// List retrieves operators ordered by ID descending with pagination.
func (m *MySQLOperatorRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*identityDomain.Operator, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + operatorColumns + ` FROM operators ORDER BY id DESC LIMIT ? OFFSET ?`

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
		var id []byte
		err := rows.Scan(
			&id,
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
		if operator.ID, err = uuid.FromBytes(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse operator id")
		}
		operators = append(operators, &operator)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate operators")
	}

	return operators, nil
}

// UpdatePassword replaces the stored password hash for an operator.
func (m *MySQLOperatorRepository) UpdatePassword(
	ctx context.Context,
	operatorID uuid.UUID,
	passwordHash string,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := operatorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `UPDATE operators SET password_hash = ?, updated_at = NOW() WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, passwordHash, id); err != nil {
		return apperrors.Wrap(err, "failed to update operator password")
	}
	return nil
}

// UpdateLockState atomically sets the failure counter, lock expiry, and
// episode count in a single statement.
func (m *MySQLOperatorRepository) UpdateLockState(
	ctx context.Context,
	operatorID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
	lockEpisodes int,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := operatorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `UPDATE operators SET failed_attempts = ?, locked_until = ?, lock_episodes = ? WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, lockEpisodes, id); err != nil {
		return apperrors.Wrap(err, "failed to update operator lock state")
	}
	return nil
}

// IncrementFailedAttempts atomically bumps the failure counter and returns
// the new value. MySQL has no RETURNING, so LAST_INSERT_ID carries the new
// counter through the same connection.
func (m *MySQLOperatorRepository) IncrementFailedAttempts(
	ctx context.Context,
	operatorID uuid.UUID,
) (int, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := operatorID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `UPDATE operators
			  SET failed_attempts = LAST_INSERT_ID(failed_attempts + 1)
			  WHERE id = ?`
	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to increment operator failed attempts")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return 0, identityDomain.ErrOperatorNotFound
	}

	newValue, err := result.LastInsertId()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read incremented failed attempts")
	}
	return int(newValue), nil
}

// scanOperator scans a single operator row.
func (m *MySQLOperatorRepository) scanOperator(row *sql.Row) (*identityDomain.Operator, error) {
	var operator identityDomain.Operator
	var id []byte

	err := row.Scan(
		&id,
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

	if operator.ID, err = uuid.FromBytes(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse operator id")
	}

	return &operator, nil
}

// NewMySQLOperatorRepository creates a new MySQL Operator repository.
func NewMySQLOperatorRepository(db *sql.DB) *MySQLOperatorRepository {
	return &MySQLOperatorRepository{db: db}
}
