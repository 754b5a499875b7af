// Package domain defines authentication entities: refresh credentials,
// token pairs, and the verified identity context.
package domain

import (
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// RefreshCredential is a stored, revocable long-lived credential. Only the
// SHA-256 hash of the opaque token is persisted; the plain token exists once,
// in the response that issued it.
//
// Rotation links credentials through ReplacedByID: a credential that has been
// rotated keeps its row so that reuse of the old token is detectable.
type RefreshCredential struct {
	ID           uuid.UUID
	TokenHash    string
	OperatorID   uuid.UUID
	ExpiresAt    time.Time
	RevokedAt    *time.Time
	ReplacedByID *uuid.UUID
	CreatedAt    time.Time
}

// IsExpired reports whether the credential expired before now.
func (r *RefreshCredential) IsExpired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// IsRevoked reports whether the credential was explicitly revoked.
func (r *RefreshCredential) IsRevoked() bool {
	return r.RevokedAt != nil
}

// IsReplaced reports whether the credential was consumed by a rotation.
func (r *RefreshCredential) IsReplaced() bool {
	return r.ReplacedByID != nil
}

// IsLive reports whether the credential can still be exchanged: not revoked,
// not expired, and not already rotated.
func (r *RefreshCredential) IsLive(now time.Time) bool {
	return !r.IsRevoked() && !r.IsExpired(now) && !r.IsReplaced()
}

// TokenPair is the result of a successful authentication or refresh: a
// short-lived access assertion plus the next refresh token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// IdentityContext is the verified identity attached to a request after the
// access assertion checks out. It carries everything the authorization
// engine needs, so request handling never goes back to storage.
type IdentityContext struct {
	OperatorID      uuid.UUID
	Email           string
	RoleName        string
	Level           int
	Grants          []identityDomain.Grant
	BypassOwnership bool
	ExpiresAt       time.Time
}

// IsSuperAdmin reports whether the identity holds the most privileged level.
func (i *IdentityContext) IsSuperAdmin() bool {
	return i.Level == identityDomain.SuperAdminLevel
}

// RevocationScope selects which credentials a revoke operation targets.
type RevocationScope string

const (
	// RevokeSingle revokes one credential, identified by its token.
	RevokeSingle RevocationScope = "single"

	// RevokeAll revokes every live credential the operator holds.
	RevokeAll RevocationScope = "all"
)
