// Package service provides technical services for authentication operations.
//
// This package implements password hashing, refresh-token generation, and
// access-assertion signing using industry-standard cryptographic practices.
package service

import (
	"time"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
)

// PasswordService defines operations for operator password hashing and
// verification. Implementations must use a memory-hard hashing algorithm
// (e.g., Argon2id).
type PasswordService interface {
	// HashPassword hashes a plain text password for storage.
	HashPassword(plainPassword string) (hashedPassword string, err error)

	// ComparePassword compares a plain text password against a stored hash.
	// Returns true if they match.
	ComparePassword(plainPassword string, hashedPassword string) bool

	// DummyCompare burns the same hashing cost as ComparePassword against a
	// fixed throwaway hash. Called when the operator does not exist so the
	// unknown-email and wrong-password paths take the same time.
	DummyCompare(plainPassword string)
}

// CredentialService defines operations for opaque refresh-token generation
// and hashing. Tokens are high-entropy random values; only their SHA-256
// hash is ever stored.
type CredentialService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// Returns both the plain token (returned to the operator once) and its
	// hash (stored in the database).
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token using SHA-256, for lookups.
	HashToken(plainToken string) string
}

// AssertionSigner signs and verifies self-contained access assertions.
// Verification is pure: signature plus expiry, no storage round-trip.
type AssertionSigner interface {
	// Sign issues an access assertion embedding the identity snapshot.
	// Returns the compact token and its expiry.
	Sign(identity *authDomain.IdentityContext) (token string, expiresAt time.Time, err error)

	// Verify parses and validates an assertion. Returns ErrAssertionExpired
	// when past expiry and ErrAssertionMalformed for every other defect.
	Verify(token string) (*authDomain.IdentityContext, error)
}
