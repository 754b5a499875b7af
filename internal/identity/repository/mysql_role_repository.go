package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/adminguard/adminguard/internal/database"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// MySQLRoleRepository implements Role persistence for MySQL.
// Grants are stored as a JSON document keyed by the role name.
type MySQLRoleRepository struct {
	db *sql.DB
}

// Create inserts a new Role into the MySQL database.
func (m *MySQLRoleRepository) Create(ctx context.Context, role *identityDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	grantsJSON, err := json.Marshal(role.Grants)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role grants")
	}

	query := `INSERT INTO roles (name, level, can_create_subordinates, bypass_ownership, grants, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.Name,
		role.Level,
		role.CanCreateSubordinates,
		role.BypassOwnership,
		grantsJSON,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update modifies an existing Role in the MySQL database.
func (m *MySQLRoleRepository) Update(ctx context.Context, role *identityDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	grantsJSON, err := json.Marshal(role.Grants)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role grants")
	}

	query := `UPDATE roles
			  SET level = ?,
				  can_create_subordinates = ?,
				  bypass_ownership = ?,
				  grants = ?,
				  updated_at = ?
			  WHERE name = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.Level,
		role.CanCreateSubordinates,
		role.BypassOwnership,
		grantsJSON,
		role.UpdatedAt,
		role.Name,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update role")
	}
	return nil
}

// GetByName retrieves a Role by name. Returns ErrRoleNotFound if absent.
func (m *MySQLRoleRepository) GetByName(
	ctx context.Context,
	name string,
) (*identityDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT name, level, can_create_subordinates, bypass_ownership, grants, created_at, updated_at
			  FROM roles WHERE name = ?`

	var role identityDomain.Role
	var grantsJSON []byte

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&role.Name,
		&role.Level,
		&role.CanCreateSubordinates,
		&role.BypassOwnership,
		&grantsJSON,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}

	if grantsJSON != nil {
		if err := json.Unmarshal(grantsJSON, &role.Grants); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal role grants")
		}
	}

	return &role, nil
}

// List retrieves all roles ordered by level ascending (most privileged first).
func (m *MySQLRoleRepository) List(ctx context.Context) ([]*identityDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT name, level, can_create_subordinates, bypass_ownership, grants, created_at, updated_at
			  FROM roles ORDER BY level ASC, name ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() {
		_ = rows.Close()
	}()

	roles := make([]*identityDomain.Role, 0)
	for rows.Next() {
		var role identityDomain.Role
		var grantsJSON []byte

		err := rows.Scan(
			&role.Name,
			&role.Level,
			&role.CanCreateSubordinates,
			&role.BypassOwnership,
			&grantsJSON,
			&role.CreatedAt,
			&role.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}

		if grantsJSON != nil {
			if err := json.Unmarshal(grantsJSON, &role.Grants); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal role grants")
			}
		}

		roles = append(roles, &role)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate roles")
	}

	return roles, nil
}

// NewMySQLRoleRepository creates a new MySQL Role repository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}
