package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	authService "github.com/adminguard/adminguard/internal/auth/service"
	"github.com/adminguard/adminguard/internal/config"
	"github.com/adminguard/adminguard/internal/database"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
	"github.com/adminguard/adminguard/internal/validation"
)

// authUseCase implements AuthUseCase.
type authUseCase struct {
	config            *config.Config
	operatorRepo      OperatorReader
	roleRepo          RoleReader
	credentialRepo    CredentialRepository
	passwordService   authService.PasswordService
	credentialService authService.CredentialService
	assertionSigner   authService.AssertionSigner
	guard             BruteForceGuard
	recorder          AuditRecorder
	txManager         database.TxManager
}

// Authenticate verifies credentials and issues a token pair.
//
// Failure ordering matters: the origin gate runs before any storage access,
// the lock check before the password comparison (a locked account rejects
// even the correct password), and the unknown-email path burns a dummy hash
// comparison so it costs the same as a wrong password.
func (a *authUseCase) Authenticate(
	ctx context.Context,
	email, password string,
	request auditDomain.RequestContext,
) (*authDomain.TokenPair, error) {
	if a.guard.OriginBlocked(request.Origin) {
		a.auditAuth(ctx, nil, auditDomain.ActionLogin, auditDomain.OutcomeFailed,
			auditDomain.SeverityMedium, request, map[string]any{"reason": "origin blocked"})
		return nil, authDomain.ErrInvalidCredentials
	}

	operator, err := a.operatorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identityDomain.ErrOperatorNotFound) {
			// Equalize timing with the wrong-password path
			a.passwordService.DummyCompare(password)
			a.guard.RecordOriginFailure(request.Origin)
			a.auditAuth(ctx, nil, auditDomain.ActionLogin, auditDomain.OutcomeFailed,
				auditDomain.SeverityMedium, request, map[string]any{"email": email})
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()

	if operator.IsLocked(now) {
		a.auditAuth(ctx, &operator.ID, auditDomain.ActionLogin, auditDomain.OutcomeFailed,
			auditDomain.SeverityMedium, request, map[string]any{"reason": "account locked"})
		return nil, authDomain.ErrAccountLocked
	}

	if !operator.IsActive {
		a.auditAuth(ctx, &operator.ID, auditDomain.ActionLogin, auditDomain.OutcomeFailed,
			auditDomain.SeverityMedium, request, map[string]any{"reason": "account disabled"})
		return nil, authDomain.ErrAccountDisabled
	}

	if !a.passwordService.ComparePassword(password, operator.PasswordHash) {
		locked, lockedUntil, guardErr := a.guard.RecordFailure(ctx, operator, request.Origin)
		if guardErr != nil {
			return nil, guardErr
		}

		a.auditAuth(ctx, &operator.ID, auditDomain.ActionLogin, auditDomain.OutcomeFailed,
			auditDomain.SeverityMedium, request, nil)

		if locked {
			a.auditAuth(ctx, &operator.ID, auditDomain.ActionAccountLocked,
				auditDomain.OutcomeFailed, auditDomain.SeverityHigh, request,
				map[string]any{"locked_until": lockedUntil.Format(time.RFC3339)})
		}

		// The failing attempt itself still reads as bad credentials; the
		// lock surfaces on the next attempt.
		return nil, authDomain.ErrInvalidCredentials
	}

	if err := a.guard.RecordSuccess(ctx, operator); err != nil {
		return nil, err
	}

	pair, err := a.issuePair(ctx, operator)
	if err != nil {
		return nil, err
	}

	a.auditAuth(ctx, &operator.ID, auditDomain.ActionLogin, auditDomain.OutcomeSuccess,
		auditDomain.SeverityLow, request, nil)

	return pair, nil
}

// VerifyAccess validates an access assertion without touching storage.
func (a *authUseCase) VerifyAccess(
	_ context.Context,
	assertion string,
) (*authDomain.IdentityContext, error) {
	return a.assertionSigner.Verify(assertion)
}

// Refresh exchanges a live refresh token for a new pair.
func (a *authUseCase) Refresh(
	ctx context.Context,
	plainRefreshToken string,
	request auditDomain.RequestContext,
) (*authDomain.TokenPair, error) {
	tokenHash := a.credentialService.HashToken(plainRefreshToken)

	credential, err := a.credentialRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if credential.IsReplaced() {
		return nil, a.handleReuse(ctx, credential, request)
	}
	if credential.IsRevoked() {
		return nil, authDomain.ErrCredentialRevoked
	}
	if credential.IsExpired(time.Now().UTC()) {
		return nil, authDomain.ErrCredentialExpired
	}

	operator, err := a.operatorRepo.Get(ctx, credential.OperatorID)
	if err != nil {
		return nil, err
	}
	if !operator.IsActive {
		return nil, authDomain.ErrAccountDisabled
	}
	if operator.IsLocked(time.Now().UTC()) {
		return nil, authDomain.ErrAccountLocked
	}

	role, err := a.roleRepo.GetByName(ctx, operator.RoleName)
	if err != nil {
		return nil, err
	}

	// Rotation: insert the successor and consume the old credential in one
	// transaction. MarkReplaced is the compare-and-set; losing it means a
	// concurrent refresh already rotated this token, which is reuse.
	plainToken, successorHash, err := a.credentialService.GenerateToken()
	if err != nil {
		return nil, err
	}

	successor := a.newCredential(successorHash, operator.ID)

	err = a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := a.credentialRepo.Create(txCtx, successor); err != nil {
			return err
		}
		return a.credentialRepo.MarkReplaced(txCtx, credential.ID, successor.ID)
	})
	if err != nil {
		if errors.Is(err, authDomain.ErrCredentialRevoked) {
			return nil, a.handleReuse(ctx, credential, request)
		}
		return nil, err
	}

	accessToken, accessExpiresAt, err := a.signAssertion(operator, role)
	if err != nil {
		return nil, err
	}

	a.auditAuth(ctx, &operator.ID, auditDomain.ActionTokenRefresh, auditDomain.OutcomeSuccess,
		auditDomain.SeverityLow, request, nil)

	return &authDomain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     plainToken,
		RefreshExpiresAt: successor.ExpiresAt,
	}, nil
}

// Revoke ends the session(s) tied to a refresh token.
func (a *authUseCase) Revoke(
	ctx context.Context,
	plainRefreshToken string,
	scope authDomain.RevocationScope,
	request auditDomain.RequestContext,
) error {
	tokenHash := a.credentialService.HashToken(plainRefreshToken)

	credential, err := a.credentialRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return err
	}

	switch scope {
	case authDomain.RevokeAll:
		if _, err := a.credentialRepo.RevokeAllForOperator(ctx, credential.OperatorID); err != nil {
			return err
		}
	default:
		if err := a.credentialRepo.Revoke(ctx, credential.ID); err != nil {
			return err
		}
	}

	a.auditAuth(ctx, &credential.OperatorID, auditDomain.ActionLogout,
		auditDomain.OutcomeSuccess, auditDomain.SeverityLow, request,
		map[string]any{"scope": string(scope)})

	return nil
}

// RevokeOperatorSessions revokes every live credential of the operator.
func (a *authUseCase) RevokeOperatorSessions(
	ctx context.Context,
	operatorID uuid.UUID,
) (int64, error) {
	return a.credentialRepo.RevokeAllForOperator(ctx, operatorID)
}

// ChangePassword verifies the current password and replaces the hash.
// Every live session is revoked: a password change after suspected
// compromise must cut off the attacker.
func (a *authUseCase) ChangePassword(
	ctx context.Context,
	operatorID uuid.UUID,
	currentPassword, newPassword string,
	request auditDomain.RequestContext,
) error {
	policy := validation.PasswordStrength{
		MinLength:     a.config.PasswordMinLength,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}
	if err := policy.Validate(newPassword); err != nil {
		return authDomain.ErrWeakPassword
	}

	operator, err := a.operatorRepo.Get(ctx, operatorID)
	if err != nil {
		return err
	}

	if !a.passwordService.ComparePassword(currentPassword, operator.PasswordHash) {
		a.auditAuth(ctx, &operator.ID, auditDomain.ActionPasswordChange,
			auditDomain.OutcomeFailed, auditDomain.SeverityMedium, request, nil)
		return authDomain.ErrInvalidCredentials
	}

	passwordHash, err := a.passwordService.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := a.operatorRepo.UpdatePassword(txCtx, operator.ID, passwordHash); err != nil {
			return err
		}
		_, err := a.credentialRepo.RevokeAllForOperator(txCtx, operator.ID)
		return err
	})
	if err != nil {
		return err
	}

	a.auditAuth(ctx, &operator.ID, auditDomain.ActionPasswordChange,
		auditDomain.OutcomeSuccess, auditDomain.SeverityMedium, request, nil)

	return nil
}

// PurgeExpired removes refresh credentials that are past expiry.
func (a *authUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	return a.credentialRepo.DeleteExpired(ctx, time.Now().UTC())
}

// handleReuse is the theft response: a rotated token came back. Revoke every
// session of the operator and persist a critical event before returning;
// this event must never sit in a queue that could be lost.
func (a *authUseCase) handleReuse(
	ctx context.Context,
	credential *authDomain.RefreshCredential,
	request auditDomain.RequestContext,
) error {
	if _, err := a.credentialRepo.RevokeAllForOperator(ctx, credential.OperatorID); err != nil {
		return err
	}

	_ = a.recorder.RecordSync(ctx, auditUseCase.RecordInput{
		OperatorID: &credential.OperatorID,
		Action:     auditDomain.ActionTokenReuseDetected,
		Resource:   "auth",
		ResourceID: credential.ID.String(),
		Outcome:    auditDomain.OutcomeFailed,
		Severity:   auditDomain.SeverityCritical,
		Request:    request,
	})

	return authDomain.ErrCredentialRevoked
}

// issuePair builds the identity snapshot and issues both tokens.
func (a *authUseCase) issuePair(
	ctx context.Context,
	operator *identityDomain.Operator,
) (*authDomain.TokenPair, error) {
	role, err := a.roleRepo.GetByName(ctx, operator.RoleName)
	if err != nil {
		return nil, err
	}

	accessToken, accessExpiresAt, err := a.signAssertion(operator, role)
	if err != nil {
		return nil, err
	}

	plainToken, tokenHash, err := a.credentialService.GenerateToken()
	if err != nil {
		return nil, err
	}

	credential := a.newCredential(tokenHash, operator.ID)
	if err := a.credentialRepo.Create(ctx, credential); err != nil {
		return nil, err
	}

	return &authDomain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     plainToken,
		RefreshExpiresAt: credential.ExpiresAt,
	}, nil
}

func (a *authUseCase) signAssertion(
	operator *identityDomain.Operator,
	role *identityDomain.Role,
) (string, time.Time, error) {
	return a.assertionSigner.Sign(&authDomain.IdentityContext{
		OperatorID:      operator.ID,
		Email:           operator.Email,
		RoleName:        role.Name,
		Level:           role.Level,
		Grants:          role.Grants,
		BypassOwnership: role.BypassOwnership,
	})
}

func (a *authUseCase) newCredential(tokenHash string, operatorID uuid.UUID) *authDomain.RefreshCredential {
	now := time.Now().UTC()
	return &authDomain.RefreshCredential{
		ID:         uuid.Must(uuid.NewV7()),
		TokenHash:  tokenHash,
		OperatorID: operatorID,
		ExpiresAt:  now.Add(a.config.RefreshTokenExpiration),
		CreatedAt:  now,
	}
}

// auditAuth records a non-critical authentication event; recording failures
// are swallowed because the recorder already logs them and an audit hiccup
// must not fail the auth decision.
func (a *authUseCase) auditAuth(
	ctx context.Context,
	operatorID *uuid.UUID,
	action string,
	outcome auditDomain.Outcome,
	severity auditDomain.Severity,
	request auditDomain.RequestContext,
	newValues map[string]any,
) {
	_ = a.recorder.Record(ctx, auditUseCase.RecordInput{
		OperatorID: operatorID,
		Action:     action,
		Resource:   "auth",
		Outcome:    outcome,
		Severity:   severity,
		Request:    request,
		NewValues:  newValues,
	})
}

// NewAuthUseCase creates a new AuthUseCase with the provided dependencies.
func NewAuthUseCase(
	cfg *config.Config,
	operatorRepo OperatorReader,
	roleRepo RoleReader,
	credentialRepo CredentialRepository,
	passwordService authService.PasswordService,
	credentialService authService.CredentialService,
	assertionSigner authService.AssertionSigner,
	bruteForceGuard BruteForceGuard,
	recorder AuditRecorder,
	txManager database.TxManager,
) AuthUseCase {
	return &authUseCase{
		config:            cfg,
		operatorRepo:      operatorRepo,
		roleRepo:          roleRepo,
		credentialRepo:    credentialRepo,
		passwordService:   passwordService,
		credentialService: credentialService,
		assertionSigner:   assertionSigner,
		guard:             bruteForceGuard,
		recorder:          recorder,
		txManager:         txManager,
	}
}
