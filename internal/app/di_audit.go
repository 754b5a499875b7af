package app

import (
	"fmt"

	auditHTTP "github.com/adminguard/adminguard/internal/audit/http"
	auditRepository "github.com/adminguard/adminguard/internal/audit/repository"
	auditService "github.com/adminguard/adminguard/internal/audit/service"
	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
)

// EventRepository returns the audit event repository instance.
func (c *Container) EventRepository() (auditUseCase.EventRepository, error) {
	var err error
	c.eventRepoInit.Do(func() {
		c.eventRepo, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// EventSigner returns the audit event signer instance.
func (c *Container) EventSigner() auditService.EventSigner {
	c.eventSignerInit.Do(func() {
		c.eventSigner = auditService.NewEventSigner()
	})
	return c.eventSigner
}

// AuditRecorder returns the audit trail recorder instance.
func (c *Container) AuditRecorder() (auditUseCase.Recorder, error) {
	var err error
	c.recorderInit.Do(func() {
		c.recorder, err = c.initAuditRecorder()
		if err != nil {
			c.initErrors["recorder"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recorder"]; exists {
		return nil, storedErr
	}
	return c.recorder, nil
}

// TrailUseCase returns the audit trail use case instance.
func (c *Container) TrailUseCase() (auditUseCase.TrailUseCase, error) {
	var err error
	c.trailUseCaseInit.Do(func() {
		c.trailUC, err = c.initTrailUseCase()
		if err != nil {
			c.initErrors["trailUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["trailUseCase"]; exists {
		return nil, storedErr
	}
	return c.trailUC, nil
}

// TrailHandler returns the audit trail HTTP handler instance.
func (c *Container) TrailHandler() (*auditHTTP.TrailHandler, error) {
	var err error
	c.trailHandlerInit.Do(func() {
		c.trailHandler, err = c.initTrailHandler()
		if err != nil {
			c.initErrors["trailHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["trailHandler"]; exists {
		return nil, storedErr
	}
	return c.trailHandler, nil
}

// initEventRepository creates the audit event repository based on the database driver.
func (c *Container) initEventRepository() (auditUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLEventRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditRecorder creates the audit recorder with its signing key and queue.
func (c *Container) initAuditRecorder() (auditUseCase.Recorder, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for audit recorder: %w", err)
	}

	keys, err := c.Keyring()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring for audit recorder: %w", err)
	}

	return auditUseCase.NewRecorder(
		eventRepo,
		c.EventSigner(),
		keys.AuditSigningKey(),
		c.config.AuditSensitiveFields,
		c.config.AuditQueueSize,
		c.Logger(),
	), nil
}

// initTrailUseCase creates the audit trail use case with all its dependencies.
func (c *Container) initTrailUseCase() (auditUseCase.TrailUseCase, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for trail use case: %w", err)
	}

	keys, err := c.Keyring()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring for trail use case: %w", err)
	}

	baseUseCase := auditUseCase.NewTrailUseCase(
		eventRepo,
		c.EventSigner(),
		keys.AuditSigningKey(),
		c.config.SuspiciousFailureThreshold,
		c.config.SuspiciousOriginThreshold,
		c.config.SuspiciousDenialThreshold,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for trail use case: %w", err)
		}
		return auditUseCase.NewTrailUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTrailHandler creates the audit trail HTTP handler.
func (c *Container) initTrailHandler() (*auditHTTP.TrailHandler, error) {
	trailUC, err := c.TrailUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get trail use case for trail handler: %w", err)
	}

	return auditHTTP.NewTrailHandler(trailUC, c.Logger()), nil
}
