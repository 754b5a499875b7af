package domain

import (
	"github.com/adminguard/adminguard/internal/errors"
)

// Authentication domain errors.
var (
	// ErrInvalidCredentials covers unknown email, wrong password, and
	// invalid refresh tokens alike so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrAccountLocked indicates the operator is under a brute-force lock.
	ErrAccountLocked = errors.Wrap(errors.ErrLocked, "account locked")

	// ErrAccountDisabled indicates the operator was deactivated.
	ErrAccountDisabled = errors.Wrap(errors.ErrForbidden, "account disabled")

	// ErrWeakPassword indicates the new password fails the strength policy.
	ErrWeakPassword = errors.Wrap(errors.ErrInvalidInput, "password does not meet the strength policy")

	// ErrAssertionExpired indicates the access assertion is past its expiry.
	ErrAssertionExpired = errors.Wrap(errors.ErrUnauthorized, "access assertion expired")

	// ErrAssertionMalformed indicates the access assertion failed parsing or
	// signature verification.
	ErrAssertionMalformed = errors.Wrap(errors.ErrUnauthorized, "access assertion malformed")

	// ErrCredentialNotFound indicates no refresh credential matches the token.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "refresh credential not found")

	// ErrCredentialExpired indicates the refresh credential is past its expiry.
	ErrCredentialExpired = errors.Wrap(errors.ErrUnauthorized, "refresh credential expired")

	// ErrCredentialRevoked indicates the refresh credential was revoked or
	// already consumed by a rotation.
	ErrCredentialRevoked = errors.Wrap(errors.ErrUnauthorized, "refresh credential revoked")
)
