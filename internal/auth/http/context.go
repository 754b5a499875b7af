// Package http provides HTTP handlers and middleware for authentication.
package http

import (
	"context"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
)

// identityKey is a context key type for storing verified identities.
type identityKey struct{}

// WithIdentity stores a verified identity in the context.
// This is called by the authentication middleware after assertion verification.
func WithIdentity(ctx context.Context, identity *authDomain.IdentityContext) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the verified identity from the context.
// Returns (identity, true) if present, or (nil, false) if no identity was set.
func GetIdentity(ctx context.Context) (*authDomain.IdentityContext, bool) {
	identity, ok := ctx.Value(identityKey{}).(*authDomain.IdentityContext)
	return identity, ok
}
