package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/adminguard/adminguard/internal/errors"
)

// dummyPassword feeds the precomputed hash used by DummyCompare.
const dummyPassword = "dummy-password-for-timing-equalization"

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher    *pwdhash.PasswordHasher
	dummyHash string
}

// HashPassword hashes a plain text password using Argon2id.
func (p *passwordService) HashPassword(plainPassword string) (string, error) {
	hashedPassword, err := p.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashedPassword, nil
}

// ComparePassword performs a constant-time comparison between a plain
// password and its hash.
func (p *passwordService) ComparePassword(plainPassword string, hashedPassword string) bool {
	ok, err := p.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}

// DummyCompare runs a full Argon2id verification against a fixed hash and
// discards the result. The unknown-email path must cost the same as the
// wrong-password path.
func (p *passwordService) DummyCompare(plainPassword string) {
	_, _ = p.hasher.Verify([]byte(plainPassword), p.dummyHash)
}

// NewPasswordService creates a new PasswordService using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	dummyHash, err := hasher.Hash([]byte(dummyPassword))
	if err != nil {
		panic(err)
	}

	return &passwordService{
		hasher:    hasher,
		dummyHash: dummyHash,
	}
}
