// Package usecase implements business logic orchestration for authentication:
// login, access verification, refresh rotation, revocation, and password
// changes.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// CredentialRepository defines persistence operations for refresh credentials.
// Implementations must support transaction-aware operations via context propagation.
type CredentialRepository interface {
	// Create stores a new credential.
	Create(ctx context.Context, credential *authDomain.RefreshCredential) error

	// GetByTokenHash retrieves a credential by its token hash.
	// Returns ErrCredentialNotFound if absent.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.RefreshCredential, error)

	// MarkReplaced links a credential to its rotation successor if and only
	// if it is still live. Returns ErrCredentialRevoked when the credential
	// was already rotated or revoked (a concurrent refresh won the race).
	MarkReplaced(ctx context.Context, credentialID, replacedByID uuid.UUID) error

	// Revoke marks one credential revoked. Idempotent.
	Revoke(ctx context.Context, credentialID uuid.UUID) error

	// RevokeAllForOperator revokes every unrevoked credential of the operator.
	RevokeAllForOperator(ctx context.Context, operatorID uuid.UUID) (int64, error)

	// DeleteExpired removes credentials that expired before the cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// OperatorReader is the slice of operator persistence the auth flows need.
type OperatorReader interface {
	// Get retrieves an operator by ID. Returns ErrOperatorNotFound if absent.
	Get(ctx context.Context, operatorID uuid.UUID) (*identityDomain.Operator, error)

	// GetByEmail retrieves an operator by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*identityDomain.Operator, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, operatorID uuid.UUID, passwordHash string) error
}

// RoleReader resolves role definitions for identity snapshots.
type RoleReader interface {
	// GetByName retrieves a role by name. Returns ErrRoleNotFound if absent.
	GetByName(ctx context.Context, name string) (*identityDomain.Role, error)
}

// BruteForceGuard tracks failed attempts and decides lock state.
type BruteForceGuard interface {
	// RecordFailure registers a failed attempt for the identity and origin.
	// Returns the lock deadline when the failure triggered a lock.
	RecordFailure(
		ctx context.Context,
		operator *identityDomain.Operator,
		origin string,
	) (locked bool, lockedUntil time.Time, err error)

	// RecordSuccess resets the identity failure counter.
	RecordSuccess(ctx context.Context, operator *identityDomain.Operator) error

	// RecordOriginFailure registers a failure with no known identity.
	RecordOriginFailure(origin string)

	// OriginBlocked reports whether the origin exceeded its failure budget.
	OriginBlocked(origin string) bool
}

// AuditRecorder is the slice of the audit trail the auth flows emit into.
type AuditRecorder interface {
	// Record signs and enqueues an event.
	Record(ctx context.Context, input auditUseCase.RecordInput) error

	// RecordSync signs and persists an event before returning.
	RecordSync(ctx context.Context, input auditUseCase.RecordInput) error
}

// AuthUseCase defines the authentication pipeline operations.
type AuthUseCase interface {
	// Authenticate verifies credentials and issues a token pair.
	//
	// Returns ErrInvalidCredentials for unknown email and wrong password
	// alike, ErrAccountLocked while a brute-force lock is active, and
	// ErrAccountDisabled for deactivated operators. The unknown-email path
	// burns a dummy password comparison so its timing matches the
	// wrong-password path.
	Authenticate(
		ctx context.Context,
		email, password string,
		request auditDomain.RequestContext,
	) (*authDomain.TokenPair, error)

	// VerifyAccess validates an access assertion. Purely cryptographic:
	// signature, structure, and expiry. No storage lookup.
	VerifyAccess(ctx context.Context, assertion string) (*authDomain.IdentityContext, error)

	// Refresh exchanges a live refresh token for a new pair, rotating the
	// credential. Presenting an already-rotated token is treated as theft:
	// every session of the operator is revoked and a critical event is
	// recorded synchronously before the call returns.
	Refresh(
		ctx context.Context,
		plainRefreshToken string,
		request auditDomain.RequestContext,
	) (*authDomain.TokenPair, error)

	// Revoke ends the session(s) tied to a refresh token: the single
	// credential, or every credential of its operator. Idempotent.
	Revoke(
		ctx context.Context,
		plainRefreshToken string,
		scope authDomain.RevocationScope,
		request auditDomain.RequestContext,
	) error

	// RevokeOperatorSessions revokes every live credential of the operator.
	// Administrative entry point; returns how many credentials were revoked.
	RevokeOperatorSessions(ctx context.Context, operatorID uuid.UUID) (int64, error)

	// ChangePassword verifies the current password, applies the strength
	// policy to the new one, replaces the hash, and revokes all sessions.
	ChangePassword(
		ctx context.Context,
		operatorID uuid.UUID,
		currentPassword, newPassword string,
		request auditDomain.RequestContext,
	) error

	// PurgeExpired removes refresh credentials that are past expiry.
	PurgeExpired(ctx context.Context) (int64, error)
}
