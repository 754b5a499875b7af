// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
)

// TokenPairResponse contains the result of a successful login or refresh.
// SECURITY: The refresh token is only returned once and must be saved securely.
type TokenPairResponse struct {
	TokenType        string    `json:"token_type"`
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// MapTokenPairToResponse converts a domain token pair to an API response.
func MapTokenPairToResponse(pair *authDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		TokenType:        "Bearer",
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

// IdentityResponse describes the authenticated operator behind an assertion.
type IdentityResponse struct {
	OperatorID      string    `json:"operator_id"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Level           int       `json:"level"`
	BypassOwnership bool      `json:"bypass_ownership"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// MapIdentityToResponse converts an identity snapshot to an API response.
func MapIdentityToResponse(identity *authDomain.IdentityContext) IdentityResponse {
	return IdentityResponse{
		OperatorID:      identity.OperatorID.String(),
		Email:           identity.Email,
		Role:            identity.RoleName,
		Level:           identity.Level,
		BypassOwnership: identity.BypassOwnership,
		ExpiresAt:       identity.ExpiresAt,
	}
}
