package app

import (
	"fmt"

	"github.com/adminguard/adminguard/internal/auth/guard"
	authHTTP "github.com/adminguard/adminguard/internal/auth/http"
	authRepository "github.com/adminguard/adminguard/internal/auth/repository"
	authService "github.com/adminguard/adminguard/internal/auth/service"
	authUseCase "github.com/adminguard/adminguard/internal/auth/usecase"
)

// CredentialRepository returns the refresh credential repository instance.
func (c *Container) CredentialRepository() (authUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepoInit.Do(func() {
		c.credentialRepo, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepo"]; exists {
		return nil, storedErr
	}
	return c.credentialRepo, nil
}

// PasswordService returns the password hashing service instance.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// CredentialService returns the refresh token generation service instance.
func (c *Container) CredentialService() authService.CredentialService {
	c.credentialSvcInit.Do(func() {
		c.credentialService = authService.NewCredentialService()
	})
	return c.credentialService
}

// AssertionSigner returns the access assertion signer instance.
func (c *Container) AssertionSigner() (authService.AssertionSigner, error) {
	var err error
	c.assertionSignerInit.Do(func() {
		c.assertionSigner, err = c.initAssertionSigner()
		if err != nil {
			c.initErrors["assertionSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["assertionSigner"]; exists {
		return nil, storedErr
	}
	return c.assertionSigner, nil
}

// BruteForceGuard returns the brute-force guard instance.
func (c *Container) BruteForceGuard() (*guard.Guard, error) {
	var err error
	c.guardInit.Do(func() {
		c.guard, err = c.initBruteForceGuard()
		if err != nil {
			c.initErrors["guard"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["guard"]; exists {
		return nil, storedErr
	}
	return c.guard, nil
}

// AuthUseCase returns the authentication use case instance.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	var err error
	c.authUseCaseInit.Do(func() {
		c.authUC, err = c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUC, nil
}

// AuthHandler returns the authentication HTTP handler instance.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// initCredentialRepository creates the credential repository based on the database driver.
func (c *Container) initCredentialRepository() (authUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLCredentialRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAssertionSigner creates the assertion signer with the keyring signing key.
func (c *Container) initAssertionSigner() (authService.AssertionSigner, error) {
	keys, err := c.Keyring()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring for assertion signer: %w", err)
	}

	return authService.NewAssertionSigner(
		keys.AssertionSigningKey(),
		c.config.AccessTokenExpiration,
	), nil
}

// initBruteForceGuard creates the brute-force guard backed by the operator repository.
func (c *Container) initBruteForceGuard() (*guard.Guard, error) {
	operatorRepo, err := c.OperatorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get operator repository for brute-force guard: %w", err)
	}

	return guard.New(
		operatorRepo,
		c.config.LockoutMaxAttempts,
		c.config.LockoutBaseDuration,
		c.config.LockoutMaxDuration,
		c.config.LockoutOriginMaxAttempts,
		c.config.LockoutOriginWindow,
	), nil
}

// initAuthUseCase creates the authentication use case with all its dependencies.
func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	operatorRepo, err := c.OperatorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get operator repository for auth use case: %w", err)
	}

	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for auth use case: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for auth use case: %w", err)
	}

	assertionSigner, err := c.AssertionSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get assertion signer for auth use case: %w", err)
	}

	bruteForceGuard, err := c.BruteForceGuard()
	if err != nil {
		return nil, fmt.Errorf("failed to get brute-force guard for auth use case: %w", err)
	}

	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for auth use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	baseUseCase := authUseCase.NewAuthUseCase(
		c.config,
		operatorRepo,
		roleRepo,
		credentialRepo,
		c.PasswordService(),
		c.CredentialService(),
		assertionSigner,
		bruteForceGuard,
		recorder,
		txManager,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
		}
		return authUseCase.NewAuthUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthHandler creates the authentication HTTP handler.
func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
	}

	return authHTTP.NewAuthHandler(authUC, c.Logger()), nil
}
