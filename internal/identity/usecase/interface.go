// Package usecase defines business logic interfaces for identity management.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// OperatorRepository defines persistence operations for administrative operators.
// Implementations must support transaction-aware operations via context propagation.
type OperatorRepository interface {
	// Create stores a new operator in the repository.
	Create(ctx context.Context, operator *identityDomain.Operator) error

	// Update modifies an existing operator. Lockout counters are excluded.
	Update(ctx context.Context, operator *identityDomain.Operator) error

	// Get retrieves an operator by ID. Returns ErrOperatorNotFound if absent.
	Get(ctx context.Context, operatorID uuid.UUID) (*identityDomain.Operator, error)

	// GetByEmail retrieves an operator by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*identityDomain.Operator, error)

	// List retrieves operators ordered by ID descending with pagination.
	List(ctx context.Context, offset, limit int) ([]*identityDomain.Operator, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, operatorID uuid.UUID, passwordHash string) error

	// UpdateLockState atomically sets failure counter, lock expiry, and episode count.
	UpdateLockState(
		ctx context.Context,
		operatorID uuid.UUID,
		failedAttempts int,
		lockedUntil *time.Time,
		lockEpisodes int,
	) error

	// IncrementFailedAttempts atomically bumps the failure counter and
	// returns the new value.
	IncrementFailedAttempts(ctx context.Context, operatorID uuid.UUID) (int, error)
}

// RoleRepository defines persistence operations for the role catalog.
type RoleRepository interface {
	// Create stores a new role definition.
	Create(ctx context.Context, role *identityDomain.Role) error

	// Update modifies an existing role definition.
	Update(ctx context.Context, role *identityDomain.Role) error

	// GetByName retrieves a role by name. Returns ErrRoleNotFound if absent.
	GetByName(ctx context.Context, name string) (*identityDomain.Role, error)

	// List retrieves all roles ordered by level (most privileged first).
	List(ctx context.Context) ([]*identityDomain.Role, error)
}

// PasswordHasher abstracts the password hashing service used during
// operator provisioning and password changes.
type PasswordHasher interface {
	// HashPassword hashes a plain text password for storage.
	HashPassword(plainPassword string) (string, error)
}

// OperatorUseCase defines business logic operations for operator lifecycle.
type OperatorUseCase interface {
	// Create provisions a new operator with a hashed password. The supplied
	// password must satisfy the strength policy and the role must exist.
	Create(
		ctx context.Context,
		createOperatorInput *identityDomain.CreateOperatorInput,
	) (*identityDomain.Operator, error)

	// Update modifies name, role, and active status of an operator.
	Update(
		ctx context.Context,
		operatorID uuid.UUID,
		updateOperatorInput *identityDomain.UpdateOperatorInput,
	) error

	// Get retrieves an operator by ID.
	Get(ctx context.Context, operatorID uuid.UUID) (*identityDomain.Operator, error)

	// List retrieves operators with pagination.
	List(ctx context.Context, offset, limit int) ([]*identityDomain.Operator, error)

	// Disable performs a soft delete by setting IsActive to false. Operator
	// records are never physically deleted so audit events keep a valid
	// identity reference.
	Disable(ctx context.Context, operatorID uuid.UUID) error

	// Unlock clears the lockout state, resetting failed attempts, lock
	// expiry, and lock episodes.
	Unlock(ctx context.Context, operatorID uuid.UUID) error
}

// RoleUseCase defines business logic operations for the role catalog.
type RoleUseCase interface {
	// Create validates and stores a new role definition.
	Create(ctx context.Context, createRoleInput *identityDomain.CreateRoleInput) (*identityDomain.Role, error)

	// Update validates and modifies an existing role definition.
	Update(ctx context.Context, name string, updateRoleInput *identityDomain.UpdateRoleInput) error

	// Get retrieves a role by name.
	Get(ctx context.Context, name string) (*identityDomain.Role, error)

	// List retrieves all roles ordered by level.
	List(ctx context.Context) ([]*identityDomain.Role, error)
}
