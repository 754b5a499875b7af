package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/adminguard/adminguard/internal/errors"
)

// credentialService implements CredentialService using SHA-256 for token hashing.
type credentialService struct{}

// GenerateToken creates a new cryptographically secure 32-byte random token.
// The token is base64 URL-encoded for easy transmission and storage.
// Returns the plain token and its SHA-256 hash.
func (c *credentialService) GenerateToken() (string, string, error) {
	// Generate 32 random bytes (256 bits)
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	// Encode to base64 URL-safe string for text representation
	plainToken := base64.URLEncoding.EncodeToString(randomBytes)

	return plainToken, c.HashToken(plainToken), nil
}

// HashToken hashes a plain token using SHA-256.
// Returns the hash as a hexadecimal string.
func (c *credentialService) HashToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}

// NewCredentialService creates a new CredentialService instance.
func NewCredentialService() CredentialService {
	return &credentialService{}
}
