// Package keyring loads the signing keys the service needs at runtime: the
// access-assertion HMAC key and the audit-event HMAC key. Keys are
// base64-encoded environment values, optionally wrapped by a KMS keeper.
package keyring

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	"github.com/adminguard/adminguard/internal/config"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// minKeySize is the smallest acceptable HMAC key, matching the SHA-256
// block-derived recommendation.
const minKeySize = 32

// Keyring holds the decoded signing keys. Key material never appears in
// configuration structs or logs once loaded.
type Keyring struct {
	assertionKey []byte
	auditKey     []byte
}

// AssertionSigningKey returns the HMAC key for access assertions.
func (k *Keyring) AssertionSigningKey() []byte {
	return k.assertionKey
}

// AuditSigningKey returns the HMAC key for audit event signatures.
func (k *Keyring) AuditSigningKey() []byte {
	return k.auditKey
}

// Close overwrites the key material. The keyring is unusable afterwards.
func (k *Keyring) Close() {
	zero(k.assertionKey)
	zero(k.auditKey)
	k.assertionKey = nil
	k.auditKey = nil
}

// Load decodes the configured signing keys. When a KMS key URI is configured
// the env values are treated as KMS-wrapped ciphertext and unwrapped through
// a gocloud.dev secrets keeper (gcpkms://, awskms://, azurekeyvault://,
// hashivault://, base64key://); otherwise they are the raw keys.
//
// Any failure here is fatal for the caller: a service without signing keys
// can neither issue assertions nor write a verifiable audit trail.
func Load(ctx context.Context, cfg *config.Config) (*Keyring, error) {
	var keeper *secrets.Keeper
	if cfg.KMSKeyURI != "" {
		var err error
		keeper, err = secrets.OpenKeeper(ctx, cfg.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			_ = keeper.Close()
		}()
	}

	assertionKey, err := loadKey(ctx, keeper, "ASSERTION_SIGNING_KEY", cfg.AssertionSigningKey)
	if err != nil {
		return nil, err
	}

	auditKey, err := loadKey(ctx, keeper, "AUDIT_SIGNING_KEY", cfg.AuditSigningKey)
	if err != nil {
		zero(assertionKey)
		return nil, err
	}

	return &Keyring{
		assertionKey: assertionKey,
		auditKey:     auditKey,
	}, nil
}

// loadKey decodes one key value and unwraps it when a keeper is configured.
func loadKey(
	ctx context.Context,
	keeper *secrets.Keeper,
	name, value string,
) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: %s", ErrSigningKeyNotSet, name)
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSigningKeyBase64, name, err)
	}

	key := decoded
	if keeper != nil {
		key, err = keeper.Decrypt(ctx, decoded)
		zero(decoded)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap %s: %w", name, err)
		}
	}

	if len(key) < minKeySize {
		zero(key)
		return nil, fmt.Errorf("%w: %s holds %d bytes", ErrInvalidSigningKeySize, name, len(key))
	}

	return key, nil
}

// zero securely overwrites a byte slice to clear sensitive data from memory.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
