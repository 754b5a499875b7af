// Package usecase implements business logic orchestration for identity management.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adminguard/adminguard/internal/config"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
	"github.com/adminguard/adminguard/internal/validation"
)

// operatorUseCase implements OperatorUseCase for managing operator accounts.
type operatorUseCase struct {
	config         *config.Config
	operatorRepo   OperatorRepository
	roleRepo       RoleRepository
	passwordHasher PasswordHasher
}

// Create provisions a new operator account.
// The email is normalized to lowercase, the password is checked against the
// strength policy before hashing, and the role must exist in the catalog.
func (o *operatorUseCase) Create(
	ctx context.Context,
	createOperatorInput *identityDomain.CreateOperatorInput,
) (*identityDomain.Operator, error) {
	// Enforce the password strength policy before touching the store
	policy := validation.PasswordStrength{
		MinLength:     o.config.PasswordMinLength,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}
	if err := policy.Validate(createOperatorInput.Password); err != nil {
		return nil, validation.WrapValidationError(err)
	}

	// The assigned role must exist
	if _, err := o.roleRepo.GetByName(ctx, createOperatorInput.RoleName); err != nil {
		return nil, err
	}

	// Reject duplicate emails up front; the unique index is the backstop
	email := identityDomain.NormalizeEmail(createOperatorInput.Email)
	if _, err := o.operatorRepo.GetByEmail(ctx, email); err == nil {
		return nil, identityDomain.ErrOperatorAlreadyExists
	}

	passwordHash, err := o.passwordHasher.HashPassword(createOperatorInput.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	operator := &identityDomain.Operator{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		Name:         createOperatorInput.Name,
		PasswordHash: passwordHash,
		RoleName:     createOperatorInput.RoleName,
		IsActive:     createOperatorInput.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := o.operatorRepo.Create(ctx, operator); err != nil {
		return nil, err
	}

	return operator, nil
}

// Update modifies name, role, and active status of an existing operator.
func (o *operatorUseCase) Update(
	ctx context.Context,
	operatorID uuid.UUID,
	updateOperatorInput *identityDomain.UpdateOperatorInput,
) error {
	operator, err := o.operatorRepo.Get(ctx, operatorID)
	if err != nil {
		return err
	}

	if _, err := o.roleRepo.GetByName(ctx, updateOperatorInput.RoleName); err != nil {
		return err
	}

	operator.Name = updateOperatorInput.Name
	operator.RoleName = updateOperatorInput.RoleName
	operator.IsActive = updateOperatorInput.IsActive
	operator.UpdatedAt = time.Now().UTC()

	return o.operatorRepo.Update(ctx, operator)
}

// Get retrieves an operator by ID.
func (o *operatorUseCase) Get(
	ctx context.Context,
	operatorID uuid.UUID,
) (*identityDomain.Operator, error) {
	return o.operatorRepo.Get(ctx, operatorID)
}

// List retrieves operators with pagination.
func (o *operatorUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*identityDomain.Operator, error) {
	return o.operatorRepo.List(ctx, offset, limit)
}

// Disable performs a soft delete by deactivating the operator.
func (o *operatorUseCase) Disable(ctx context.Context, operatorID uuid.UUID) error {
	operator, err := o.operatorRepo.Get(ctx, operatorID)
	if err != nil {
		return err
	}

	operator.IsActive = false
	operator.UpdatedAt = time.Now().UTC()

	return o.operatorRepo.Update(ctx, operator)
}

// Unlock clears the lockout state for an operator.
func (o *operatorUseCase) Unlock(ctx context.Context, operatorID uuid.UUID) error {
	if _, err := o.operatorRepo.Get(ctx, operatorID); err != nil {
		return err
	}
	return o.operatorRepo.UpdateLockState(ctx, operatorID, 0, nil, 0)
}

// NewOperatorUseCase creates a new OperatorUseCase with the provided dependencies.
func NewOperatorUseCase(
	config *config.Config,
	operatorRepo OperatorRepository,
	roleRepo RoleRepository,
	passwordHasher PasswordHasher,
) OperatorUseCase {
	return &operatorUseCase{
		config:         config,
		operatorRepo:   operatorRepo,
		roleRepo:       roleRepo,
		passwordHasher: passwordHasher,
	}
}
