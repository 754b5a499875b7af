package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_FindGrant(t *testing.T) {
	role := &Role{
		Name:  "support",
		Level: 4,
		Grants: []Grant{
			{Resource: "orders", Actions: []string{"read", "update"}},
			{Resource: "products", Actions: []string{"read"}},
		},
	}

	t.Run("MatchingResourceAndAction", func(t *testing.T) {
		grant, ok := role.FindGrant("orders", "update")
		assert.True(t, ok)
		assert.Equal(t, "orders", grant.Resource)
	})

	t.Run("MatchingResourceMissingAction", func(t *testing.T) {
		_, ok := role.FindGrant("products", "delete")
		assert.False(t, ok)
	})

	t.Run("UnknownResource", func(t *testing.T) {
		_, ok := role.FindGrant("invoices", "read")
		assert.False(t, ok)
	})
}

func TestRole_Hierarchy(t *testing.T) {
	superAdmin := &Role{Name: "super_admin", Level: SuperAdminLevel}
	manager := &Role{Name: "manager", Level: 3}

	assert.True(t, superAdmin.IsSuperAdmin())
	assert.False(t, manager.IsSuperAdmin())

	// Strict precedence: equal levels are not more privileged.
	assert.True(t, manager.MorePrivilegedThan(4))
	assert.False(t, manager.MorePrivilegedThan(3))
	assert.False(t, manager.MorePrivilegedThan(2))
}

func TestRole_Validate(t *testing.T) {
	t.Run("ValidRole", func(t *testing.T) {
		role := &Role{
			Name:  "editor",
			Level: 3,
			Grants: []Grant{
				{
					Resource: "products",
					Actions:  []string{"update"},
					Conditions: []Condition{
						{Field: "category", Operator: OperatorEquals, Value: "books"},
					},
				},
			},
		}
		assert.NoError(t, role.Validate())
	})

	t.Run("MissingName", func(t *testing.T) {
		role := &Role{Level: 2}
		assert.ErrorIs(t, role.Validate(), ErrRoleNameRequired)
	})

	t.Run("LevelBelowSuperAdmin", func(t *testing.T) {
		role := &Role{Name: "broken", Level: 0}
		assert.ErrorIs(t, role.Validate(), ErrInvalidRoleLevel)
	})

	t.Run("GrantWithoutActions", func(t *testing.T) {
		role := &Role{
			Name:   "broken",
			Level:  2,
			Grants: []Grant{{Resource: "orders"}},
		}
		assert.ErrorIs(t, role.Validate(), ErrInvalidGrant)
	})

	t.Run("UnknownConditionOperator", func(t *testing.T) {
		role := &Role{
			Name:  "broken",
			Level: 2,
			Grants: []Grant{
				{
					Resource: "orders",
					Actions:  []string{"read"},
					Conditions: []Condition{
						{Field: "status", Operator: "matches", Value: "open"},
					},
				},
			},
		}
		assert.ErrorIs(t, role.Validate(), ErrUnknownConditionOperator)
	})
}
