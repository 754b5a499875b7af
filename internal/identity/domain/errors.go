package domain

import (
	"github.com/adminguard/adminguard/internal/errors"
)

// Identity domain errors.
var (
	// ErrOperatorNotFound indicates an operator with the specified ID or email was not found.
	ErrOperatorNotFound = errors.Wrap(errors.ErrNotFound, "operator not found")

	// ErrOperatorAlreadyExists indicates an operator with the same email already exists.
	ErrOperatorAlreadyExists = errors.Wrap(errors.ErrConflict, "operator already exists")

	// ErrRoleNotFound indicates a role with the specified name was not found.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrRoleAlreadyExists indicates a role with the same name already exists.
	ErrRoleAlreadyExists = errors.Wrap(errors.ErrConflict, "role already exists")

	// ErrRoleNameRequired indicates a role definition without a name.
	ErrRoleNameRequired = errors.Wrap(errors.ErrInvalidInput, "role name is required")

	// ErrInvalidRoleLevel indicates a role level above the super-admin precedence.
	ErrInvalidRoleLevel = errors.Wrap(errors.ErrInvalidInput, "role level must be >= 1")

	// ErrInvalidGrant indicates a grant without a resource or actions.
	ErrInvalidGrant = errors.Wrap(errors.ErrInvalidInput, "grant requires a resource and at least one action")

	// ErrConditionFieldRequired indicates a condition without a field name.
	ErrConditionFieldRequired = errors.Wrap(errors.ErrInvalidInput, "condition field is required")

	// ErrConditionValueRequired indicates a condition without a comparison value.
	ErrConditionValueRequired = errors.Wrap(errors.ErrInvalidInput, "condition value is required")

	// ErrUnknownConditionOperator indicates a condition operator outside the supported set.
	ErrUnknownConditionOperator = errors.Wrap(errors.ErrInvalidInput, "unknown condition operator")
)
