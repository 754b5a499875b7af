package domain

import (
	"slices"
	"time"
)

// SuperAdminLevel is the most privileged role level. A role at this level
// passes every authorization check unconditionally.
const SuperAdminLevel = 1

// Grant explicitly allows a set of actions on one resource, optionally
// narrowed by conditions and an ownership requirement.
type Grant struct {
	Resource   string      `json:"resource"`
	Actions    []string    `json:"actions"`
	Conditions []Condition `json:"conditions,omitempty"`
	// OwnerField names the target resource attribute holding the owner
	// identity. When set, the action is resource-scoped: the actor must own
	// the target unless its role bypasses ownership.
	OwnerField string `json:"owner_field,omitempty"`
}

// Allows reports whether the grant covers the given action.
func (g *Grant) Allows(action string) bool {
	return slices.Contains(g.Actions, action)
}

// Role defines a named privilege tier with explicit resource grants.
// Levels form a total order: lower value = more privileged, level 1 = super
// admin, unbounded higher levels = least privileged.
type Role struct {
	Name                  string
	Level                 int
	CanCreateSubordinates bool
	// BypassOwnership exempts the role from resource-scoped ownership checks.
	BypassOwnership bool
	Grants          []Grant
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsSuperAdmin reports whether the role sits at the most privileged level.
func (r *Role) IsSuperAdmin() bool {
	return r.Level == SuperAdminLevel
}

// MorePrivilegedThan reports whether the role outranks the given level.
// Equal levels are NOT more privileged; hierarchy-sensitive operations
// require strict precedence.
func (r *Role) MorePrivilegedThan(level int) bool {
	return r.Level < level
}

// FindGrant returns the first grant covering (resource, action).
// Returns (nil, false) when no explicit grant matches.
func (r *Role) FindGrant(resource, action string) (*Grant, bool) {
	for i := range r.Grants {
		grant := &r.Grants[i]
		if grant.Resource == resource && grant.Allows(action) {
			return grant, true
		}
	}
	return nil, false
}

// Validate checks the role definition, including every grant condition.
// Roles are configuration-time entities, so unknown condition operators are
// rejected here instead of at evaluation time.
func (r *Role) Validate() error {
	if r.Name == "" {
		return ErrRoleNameRequired
	}
	if r.Level < SuperAdminLevel {
		return ErrInvalidRoleLevel
	}
	for i := range r.Grants {
		grant := &r.Grants[i]
		if grant.Resource == "" || len(grant.Actions) == 0 {
			return ErrInvalidGrant
		}
		for j := range grant.Conditions {
			if err := grant.Conditions[j].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateRoleInput contains the parameters for creating a new role.
type CreateRoleInput struct {
	Name                  string
	Level                 int
	CanCreateSubordinates bool
	BypassOwnership       bool
	Grants                []Grant
}

// UpdateRoleInput contains the mutable fields for updating a role.
type UpdateRoleInput struct {
	Level                 int
	CanCreateSubordinates bool
	BypassOwnership       bool
	Grants                []Grant
}
