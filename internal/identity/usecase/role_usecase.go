package usecase

import (
	"context"
	"time"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// roleUseCase implements RoleUseCase for managing the role catalog.
type roleUseCase struct {
	roleRepo RoleRepository
}

// Create validates and stores a new role definition.
// Unknown condition operators are rejected here, at configuration time, so
// the authorization engine never evaluates a malformed predicate.
func (r *roleUseCase) Create(
	ctx context.Context,
	createRoleInput *identityDomain.CreateRoleInput,
) (*identityDomain.Role, error) {
	now := time.Now().UTC()
	role := &identityDomain.Role{
		Name:                  createRoleInput.Name,
		Level:                 createRoleInput.Level,
		CanCreateSubordinates: createRoleInput.CanCreateSubordinates,
		BypassOwnership:       createRoleInput.BypassOwnership,
		Grants:                createRoleInput.Grants,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := role.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.roleRepo.GetByName(ctx, role.Name); err == nil {
		return nil, identityDomain.ErrRoleAlreadyExists
	}

	if err := r.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

// Update validates and modifies an existing role definition.
func (r *roleUseCase) Update(
	ctx context.Context,
	name string,
	updateRoleInput *identityDomain.UpdateRoleInput,
) error {
	role, err := r.roleRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}

	role.Level = updateRoleInput.Level
	role.CanCreateSubordinates = updateRoleInput.CanCreateSubordinates
	role.BypassOwnership = updateRoleInput.BypassOwnership
	role.Grants = updateRoleInput.Grants
	role.UpdatedAt = time.Now().UTC()

	if err := role.Validate(); err != nil {
		return err
	}

	return r.roleRepo.Update(ctx, role)
}

// Get retrieves a role by name.
func (r *roleUseCase) Get(ctx context.Context, name string) (*identityDomain.Role, error) {
	return r.roleRepo.GetByName(ctx, name)
}

// List retrieves all roles ordered by level.
func (r *roleUseCase) List(ctx context.Context) ([]*identityDomain.Role, error) {
	return r.roleRepo.List(ctx)
}

// NewRoleUseCase creates a new RoleUseCase with the provided dependencies.
func NewRoleUseCase(roleRepo RoleRepository) RoleUseCase {
	return &roleUseCase{
		roleRepo: roleRepo,
	}
}
