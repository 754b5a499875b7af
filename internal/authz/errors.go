package authz

import (
	"github.com/adminguard/adminguard/internal/errors"
)

// Authorization deny errors. All wrap ErrForbidden so the HTTP layer maps
// them to 403 without knowing which rule denied.
var (
	// ErrPermissionDenied indicates no explicit grant covers the action, or a
	// grant condition failed.
	ErrPermissionDenied = errors.Wrap(errors.ErrForbidden, "permission denied")

	// ErrNotOwner indicates a resource-scoped grant where the actor does not
	// own the target resource.
	ErrNotOwner = errors.Wrap(errors.ErrForbidden, "not the resource owner")

	// ErrHierarchyViolation indicates the actor's role level does not strictly
	// outrank the target's.
	ErrHierarchyViolation = errors.Wrap(errors.ErrForbidden, "role hierarchy violation")

	// ErrBulkLimitExceeded indicates the operation touches more items than the
	// actor's role level permits.
	ErrBulkLimitExceeded = errors.Wrap(errors.ErrForbidden, "bulk operation limit exceeded")
)
