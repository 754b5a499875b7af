package keyring

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	"github.com/adminguard/adminguard/internal/config"
)

func randomKey(t *testing.T, size int) []byte {
	t.Helper()
	key := make([]byte, size)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PlainEnvKeys", func(t *testing.T) {
		assertionKey := randomKey(t, 32)
		auditKey := randomKey(t, 48)

		cfg := &config.Config{
			AssertionSigningKey: base64.StdEncoding.EncodeToString(assertionKey),
			AuditSigningKey:     base64.StdEncoding.EncodeToString(auditKey),
		}

		ring, err := Load(ctx, cfg)
		require.NoError(t, err)
		defer ring.Close()

		assert.Equal(t, assertionKey, ring.AssertionSigningKey())
		assert.Equal(t, auditKey, ring.AuditSigningKey())
	})

	t.Run("Success_KMSWrappedKeys", func(t *testing.T) {
		wrappingKey := randomKey(t, 32)
		keeperURI := "base64key://" + base64.URLEncoding.EncodeToString(wrappingKey)

		keeper, err := secrets.OpenKeeper(ctx, keeperURI)
		require.NoError(t, err)
		defer func() {
			_ = keeper.Close()
		}()

		assertionKey := randomKey(t, 32)
		auditKey := randomKey(t, 32)

		wrappedAssertion, err := keeper.Encrypt(ctx, assertionKey)
		require.NoError(t, err)
		wrappedAudit, err := keeper.Encrypt(ctx, auditKey)
		require.NoError(t, err)

		cfg := &config.Config{
			AssertionSigningKey: base64.StdEncoding.EncodeToString(wrappedAssertion),
			AuditSigningKey:     base64.StdEncoding.EncodeToString(wrappedAudit),
			KMSKeyURI:           keeperURI,
		}

		ring, err := Load(ctx, cfg)
		require.NoError(t, err)
		defer ring.Close()

		assert.Equal(t, assertionKey, ring.AssertionSigningKey())
		assert.Equal(t, auditKey, ring.AuditSigningKey())
	})

	t.Run("Error_MissingAssertionKey", func(t *testing.T) {
		cfg := &config.Config{
			AuditSigningKey: base64.StdEncoding.EncodeToString(randomKey(t, 32)),
		}

		ring, err := Load(ctx, cfg)
		assert.Nil(t, ring)
		assert.ErrorIs(t, err, ErrSigningKeyNotSet)
	})

	t.Run("Error_MissingAuditKey", func(t *testing.T) {
		cfg := &config.Config{
			AssertionSigningKey: base64.StdEncoding.EncodeToString(randomKey(t, 32)),
		}

		ring, err := Load(ctx, cfg)
		assert.Nil(t, ring)
		assert.ErrorIs(t, err, ErrSigningKeyNotSet)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		cfg := &config.Config{
			AssertionSigningKey: "not base64!!!",
			AuditSigningKey:     base64.StdEncoding.EncodeToString(randomKey(t, 32)),
		}

		ring, err := Load(ctx, cfg)
		assert.Nil(t, ring)
		assert.ErrorIs(t, err, ErrInvalidSigningKeyBase64)
	})

	t.Run("Error_KeyTooShort", func(t *testing.T) {
		cfg := &config.Config{
			AssertionSigningKey: base64.StdEncoding.EncodeToString(randomKey(t, 16)),
			AuditSigningKey:     base64.StdEncoding.EncodeToString(randomKey(t, 32)),
		}

		ring, err := Load(ctx, cfg)
		assert.Nil(t, ring)
		assert.ErrorIs(t, err, ErrInvalidSigningKeySize)
	})

	t.Run("Error_WrongWrappingKey", func(t *testing.T) {
		rightURI := "base64key://" + base64.URLEncoding.EncodeToString(randomKey(t, 32))
		wrongURI := "base64key://" + base64.URLEncoding.EncodeToString(randomKey(t, 32))

		keeper, err := secrets.OpenKeeper(ctx, rightURI)
		require.NoError(t, err)
		defer func() {
			_ = keeper.Close()
		}()

		wrapped, err := keeper.Encrypt(ctx, randomKey(t, 32))
		require.NoError(t, err)

		cfg := &config.Config{
			AssertionSigningKey: base64.StdEncoding.EncodeToString(wrapped),
			AuditSigningKey:     base64.StdEncoding.EncodeToString(wrapped),
			KMSKeyURI:           wrongURI,
		}

		ring, err := Load(ctx, cfg)
		assert.Nil(t, ring)
		assert.Error(t, err)
	})
}

func TestKeyring_Close(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{
		AssertionSigningKey: base64.StdEncoding.EncodeToString(randomKey(t, 32)),
		AuditSigningKey:     base64.StdEncoding.EncodeToString(randomKey(t, 32)),
	}

	ring, err := Load(ctx, cfg)
	require.NoError(t, err)

	ring.Close()

	assert.Nil(t, ring.AssertionSigningKey())
	assert.Nil(t, ring.AuditSigningKey())
}
