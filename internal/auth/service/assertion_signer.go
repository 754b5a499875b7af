package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// clockSkewTolerance absorbs clock drift between the issuing and verifying
// hosts when checking exp/iat.
const clockSkewTolerance = 30 * time.Second

// assertionClaims is the JWT payload of an access assertion. The identity
// snapshot is embedded so verification never touches storage.
type assertionClaims struct {
	jwt.RegisteredClaims
	Email           string                 `json:"email"`
	RoleName        string                 `json:"role"`
	Level           int                    `json:"level"`
	Grants          []identityDomain.Grant `json:"grants,omitempty"`
	BypassOwnership bool                   `json:"bypass_ownership,omitempty"`
}

// assertionSigner implements AssertionSigner with HMAC-SHA256 (HS256).
type assertionSigner struct {
	signingKey []byte
	expiration time.Duration
}

// Sign issues an access assertion embedding the identity snapshot.
func (a *assertionSigner) Sign(identity *authDomain.IdentityContext) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(a.expiration)

	claims := assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.OperatorID.String(),
			ID:        uuid.Must(uuid.NewV7()).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:           identity.Email,
		RoleName:        identity.RoleName,
		Level:           identity.Level,
		Grants:          identity.Grants,
		BypassOwnership: identity.BypassOwnership,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign access assertion")
	}

	return token, expiresAt, nil
}

// Verify parses and validates an assertion: signature, algorithm, and expiry.
func (a *assertionSigner) Verify(token string) (*authDomain.IdentityContext, error) {
	claims := &assertionClaims{}

	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return a.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkewTolerance),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authDomain.ErrAssertionExpired
		}
		return nil, authDomain.ErrAssertionMalformed
	}
	if !parsed.Valid {
		return nil, authDomain.ErrAssertionMalformed
	}

	operatorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrAssertionMalformed
	}

	return &authDomain.IdentityContext{
		OperatorID:      operatorID,
		Email:           claims.Email,
		RoleName:        claims.RoleName,
		Level:           claims.Level,
		Grants:          claims.Grants,
		BypassOwnership: claims.BypassOwnership,
		ExpiresAt:       claims.ExpiresAt.Time,
	}, nil
}

// NewAssertionSigner creates an HS256 AssertionSigner with the given signing
// key and access-assertion lifetime.
func NewAssertionSigner(signingKey []byte, expiration time.Duration) AssertionSigner {
	return &assertionSigner{
		signingKey: signingKey,
		expiration: expiration,
	}
}
