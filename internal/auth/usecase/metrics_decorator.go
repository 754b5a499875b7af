package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	"github.com/adminguard/adminguard/internal/metrics"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Authenticate records metrics for login operations.
func (a *authUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	email, password string,
	request auditDomain.RequestContext,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := a.next.Authenticate(ctx, email, password, request)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "login", status)
	a.metrics.RecordDuration(ctx, "auth", "login", time.Since(start), status)

	return pair, err
}

// VerifyAccess records metrics for assertion verification.
func (a *authUseCaseWithMetrics) VerifyAccess(
	ctx context.Context,
	assertion string,
) (*authDomain.IdentityContext, error) {
	start := time.Now()
	identity, err := a.next.VerifyAccess(ctx, assertion)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "verify_access", status)
	a.metrics.RecordDuration(ctx, "auth", "verify_access", time.Since(start), status)

	return identity, err
}

// Refresh records metrics for credential rotation.
func (a *authUseCaseWithMetrics) Refresh(
	ctx context.Context,
	plainRefreshToken string,
	request auditDomain.RequestContext,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := a.next.Refresh(ctx, plainRefreshToken, request)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "refresh", status)
	a.metrics.RecordDuration(ctx, "auth", "refresh", time.Since(start), status)

	return pair, err
}

// Revoke records metrics for session revocation.
func (a *authUseCaseWithMetrics) Revoke(
	ctx context.Context,
	plainRefreshToken string,
	scope authDomain.RevocationScope,
	request auditDomain.RequestContext,
) error {
	start := time.Now()
	err := a.next.Revoke(ctx, plainRefreshToken, scope, request)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "revoke", status)
	a.metrics.RecordDuration(ctx, "auth", "revoke", time.Since(start), status)

	return err
}

// RevokeOperatorSessions records metrics for administrative session revocation.
func (a *authUseCaseWithMetrics) RevokeOperatorSessions(
	ctx context.Context,
	operatorID uuid.UUID,
) (int64, error) {
	start := time.Now()
	revoked, err := a.next.RevokeOperatorSessions(ctx, operatorID)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "revoke_operator_sessions", status)
	a.metrics.RecordDuration(ctx, "auth", "revoke_operator_sessions", time.Since(start), status)

	return revoked, err
}

// ChangePassword records metrics for password changes.
func (a *authUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	operatorID uuid.UUID,
	currentPassword, newPassword string,
	request auditDomain.RequestContext,
) error {
	start := time.Now()
	err := a.next.ChangePassword(ctx, operatorID, currentPassword, newPassword, request)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "change_password", status)
	a.metrics.RecordDuration(ctx, "auth", "change_password", time.Since(start), status)

	return err
}

// PurgeExpired records metrics for expired credential cleanup.
func (a *authUseCaseWithMetrics) PurgeExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	purged, err := a.next.PurgeExpired(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "purge_expired", status)
	a.metrics.RecordDuration(ctx, "auth", "purge_expired", time.Since(start), status)

	return purged, err
}
