package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adminguard/adminguard/internal/authz"
)

// AuthzEngine returns the authorization engine instance.
func (c *Container) AuthzEngine() (*authz.Engine, error) {
	var err error
	c.engineInit.Do(func() {
		c.engine, err = c.initAuthzEngine()
		if err != nil {
			c.initErrors["engine"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["engine"]; exists {
		return nil, storedErr
	}
	return c.engine, nil
}

// initAuthzEngine creates the authorization engine with its owner accessors.
func (c *Container) initAuthzEngine() (*authz.Engine, error) {
	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for authorization engine: %w", err)
	}

	// An operator record is owned by the operator it describes, which lets
	// resource-scoped grants express self-service actions.
	ownerAccessors := map[string]authz.OwnerAccessor{
		"operators": func(_ context.Context, resourceID string) (uuid.UUID, error) {
			operatorID, err := uuid.Parse(resourceID)
			if err != nil {
				return uuid.Nil, fmt.Errorf("invalid operator id %q: %w", resourceID, err)
			}
			return operatorID, nil
		},
	}

	return authz.NewEngine(
		ownerAccessors,
		recorder,
		authz.BulkLimits{
			StandardLimit:   c.config.BulkStandardLimit,
			ElevatedLimit:   c.config.BulkElevatedLimit,
			AdminLevelFloor: c.config.BulkAdminLevelFloor,
		},
		c.Logger(),
	), nil
}
