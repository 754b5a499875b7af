package keyring

import (
	"github.com/adminguard/adminguard/internal/errors"
)

// Keyring loading errors. All are fatal at startup: the service must not run
// with missing or malformed signing keys.
var (
	// ErrSigningKeyNotSet indicates a required signing key is not configured.
	ErrSigningKeyNotSet = errors.New("signing key is not set")

	// ErrInvalidSigningKeyBase64 indicates a signing key is not valid base64.
	ErrInvalidSigningKeyBase64 = errors.New("signing key is not valid base64")

	// ErrInvalidSigningKeySize indicates a signing key is shorter than 32 bytes.
	ErrInvalidSigningKeySize = errors.New("signing key must be at least 32 bytes")
)
