package app

import (
	"fmt"

	identityHTTP "github.com/adminguard/adminguard/internal/identity/http"
	identityRepository "github.com/adminguard/adminguard/internal/identity/repository"
	identityUseCase "github.com/adminguard/adminguard/internal/identity/usecase"
)

// OperatorRepository returns the operator repository instance.
func (c *Container) OperatorRepository() (identityUseCase.OperatorRepository, error) {
	var err error
	c.operatorRepoInit.Do(func() {
		c.operatorRepo, err = c.initOperatorRepository()
		if err != nil {
			c.initErrors["operatorRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["operatorRepo"]; exists {
		return nil, storedErr
	}
	return c.operatorRepo, nil
}

// RoleRepository returns the role repository instance.
func (c *Container) RoleRepository() (identityUseCase.RoleRepository, error) {
	var err error
	c.roleRepoInit.Do(func() {
		c.roleRepo, err = c.initRoleRepository()
		if err != nil {
			c.initErrors["roleRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleRepo"]; exists {
		return nil, storedErr
	}
	return c.roleRepo, nil
}

// OperatorUseCase returns the operator use case instance.
func (c *Container) OperatorUseCase() (identityUseCase.OperatorUseCase, error) {
	var err error
	c.operatorUseCaseInit.Do(func() {
		c.operatorUC, err = c.initOperatorUseCase()
		if err != nil {
			c.initErrors["operatorUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["operatorUseCase"]; exists {
		return nil, storedErr
	}
	return c.operatorUC, nil
}

// RoleUseCase returns the role use case instance.
func (c *Container) RoleUseCase() (identityUseCase.RoleUseCase, error) {
	var err error
	c.roleUseCaseInit.Do(func() {
		c.roleUC, err = c.initRoleUseCase()
		if err != nil {
			c.initErrors["roleUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleUseCase"]; exists {
		return nil, storedErr
	}
	return c.roleUC, nil
}

// OperatorHandler returns the operator HTTP handler instance.
func (c *Container) OperatorHandler() (*identityHTTP.OperatorHandler, error) {
	var err error
	c.operatorHandlerInit.Do(func() {
		c.operatorHandler, err = c.initOperatorHandler()
		if err != nil {
			c.initErrors["operatorHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["operatorHandler"]; exists {
		return nil, storedErr
	}
	return c.operatorHandler, nil
}

// RoleHandler returns the role HTTP handler instance.
func (c *Container) RoleHandler() (*identityHTTP.RoleHandler, error) {
	var err error
	c.roleHandlerInit.Do(func() {
		c.roleHandler, err = c.initRoleHandler()
		if err != nil {
			c.initErrors["roleHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleHandler"]; exists {
		return nil, storedErr
	}
	return c.roleHandler, nil
}

// initOperatorRepository creates the operator repository based on the database driver.
func (c *Container) initOperatorRepository() (identityUseCase.OperatorRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for operator repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLOperatorRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLOperatorRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRoleRepository creates the role repository based on the database driver.
func (c *Container) initRoleRepository() (identityUseCase.RoleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for role repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLRoleRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLRoleRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOperatorUseCase creates the operator use case with all its dependencies.
func (c *Container) initOperatorUseCase() (identityUseCase.OperatorUseCase, error) {
	operatorRepo, err := c.OperatorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get operator repository for operator use case: %w", err)
	}

	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for operator use case: %w", err)
	}

	baseUseCase := identityUseCase.NewOperatorUseCase(
		c.config,
		operatorRepo,
		roleRepo,
		c.PasswordService(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for operator use case: %w", err)
		}
		return identityUseCase.NewOperatorUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRoleUseCase creates the role use case with all its dependencies.
func (c *Container) initRoleUseCase() (identityUseCase.RoleUseCase, error) {
	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for role use case: %w", err)
	}

	baseUseCase := identityUseCase.NewRoleUseCase(roleRepo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for role use case: %w", err)
		}
		return identityUseCase.NewRoleUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initOperatorHandler creates the operator HTTP handler.
func (c *Container) initOperatorHandler() (*identityHTTP.OperatorHandler, error) {
	operatorUC, err := c.OperatorUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get operator use case for operator handler: %w", err)
	}

	roleUC, err := c.RoleUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get role use case for operator handler: %w", err)
	}

	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for operator handler: %w", err)
	}

	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for operator handler: %w", err)
	}

	engine, err := c.AuthzEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization engine for operator handler: %w", err)
	}

	return identityHTTP.NewOperatorHandler(operatorUC, roleUC, authUC, recorder, engine, c.Logger()), nil
}

// initRoleHandler creates the role HTTP handler.
func (c *Container) initRoleHandler() (*identityHTTP.RoleHandler, error) {
	roleUC, err := c.RoleUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get role use case for role handler: %w", err)
	}

	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for role handler: %w", err)
	}

	engine, err := c.AuthzEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization engine for role handler: %w", err)
	}

	return identityHTTP.NewRoleHandler(roleUC, recorder, engine, c.Logger()), nil
}
