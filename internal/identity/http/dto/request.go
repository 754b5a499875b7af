// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// CreateOperatorRequest contains the parameters for provisioning an operator.
type CreateOperatorRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	IsActive bool   `json:"is_active"`
}

// Validate checks if the create operator request is valid.
// Password strength is enforced by the use case policy, not here.
func (r *CreateOperatorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			is.Email,
			validation.Length(1, 255),
		),
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
		),
		validation.Field(&r.Role,
			validation.Required,
			validation.Length(1, 100),
		),
	)
}

// UpdateOperatorRequest contains the mutable fields of an operator.
// Email, password, and lockout state change through dedicated operations.
type UpdateOperatorRequest struct {
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	IsActive bool   `json:"is_active"`
}

// Validate checks if the update operator request is valid.
func (r *UpdateOperatorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 255),
		),
		validation.Field(&r.Role,
			validation.Required,
			validation.Length(1, 100),
		),
	)
}

// CreateRoleRequest contains the parameters for creating a role. Grants use
// the domain representation directly; the definition is fully validated by
// the role use case, including condition operators.
type CreateRoleRequest struct {
	Name                  string                 `json:"name" binding:"required"`
	Level                 int                    `json:"level" binding:"required"`
	CanCreateSubordinates bool                   `json:"can_create_subordinates"`
	BypassOwnership       bool                   `json:"bypass_ownership"`
	Grants                []identityDomain.Grant `json:"grants"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 100),
		),
		validation.Field(&r.Level,
			validation.Required,
			validation.Min(identityDomain.SuperAdminLevel),
		),
	)
}

// UpdateRoleRequest contains the mutable fields of a role definition.
type UpdateRoleRequest struct {
	Level                 int                    `json:"level" binding:"required"`
	CanCreateSubordinates bool                   `json:"can_create_subordinates"`
	BypassOwnership       bool                   `json:"bypass_ownership"`
	Grants                []identityDomain.Grant `json:"grants"`
}

// Validate checks if the update role request is valid.
func (r *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Level,
			validation.Required,
			validation.Min(identityDomain.SuperAdminLevel),
		),
	)
}
