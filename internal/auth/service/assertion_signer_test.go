package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

var signerTestKey = []byte("assertion-signer-test-key-material")

func testIdentity() *authDomain.IdentityContext {
	return &authDomain.IdentityContext{
		OperatorID: uuid.Must(uuid.NewV7()),
		Email:      "admin@example.com",
		RoleName:   "auditor",
		Level:      3,
		Grants: []identityDomain.Grant{
			{Resource: "reports", Actions: []string{"read"}},
		},
		BypassOwnership: false,
	}
}

func TestAssertionSigner_SignAndVerify(t *testing.T) {
	signer := NewAssertionSigner(signerTestKey, 15*time.Minute)
	identity := testIdentity()

	token, expiresAt, err := signer.Sign(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), expiresAt, time.Second)

	verified, err := signer.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, identity.OperatorID, verified.OperatorID)
	assert.Equal(t, identity.Email, verified.Email)
	assert.Equal(t, identity.RoleName, verified.RoleName)
	assert.Equal(t, identity.Level, verified.Level)
	assert.Equal(t, identity.Grants, verified.Grants)
	assert.Equal(t, identity.BypassOwnership, verified.BypassOwnership)
	assert.WithinDuration(t, expiresAt, verified.ExpiresAt, time.Second)
}

func TestAssertionSigner_Expired(t *testing.T) {
	// Negative lifetime beyond the clock-skew tolerance
	signer := NewAssertionSigner(signerTestKey, -time.Hour)
	token, _, err := signer.Sign(testIdentity())
	require.NoError(t, err)

	verified, err := signer.Verify(token)
	assert.Nil(t, verified)
	assert.ErrorIs(t, err, authDomain.ErrAssertionExpired)
}

func TestAssertionSigner_WithinClockSkew(t *testing.T) {
	// Expired, but inside the tolerance window
	signer := NewAssertionSigner(signerTestKey, -10*time.Second)
	token, _, err := signer.Sign(testIdentity())
	require.NoError(t, err)

	verified, err := signer.Verify(token)
	require.NoError(t, err)
	assert.NotNil(t, verified)
}

func TestAssertionSigner_WrongKey(t *testing.T) {
	signer := NewAssertionSigner(signerTestKey, 15*time.Minute)
	token, _, err := signer.Sign(testIdentity())
	require.NoError(t, err)

	other := NewAssertionSigner([]byte("a-different-signing-key"), 15*time.Minute)
	verified, err := other.Verify(token)
	assert.Nil(t, verified)
	assert.ErrorIs(t, err, authDomain.ErrAssertionMalformed)
}

func TestAssertionSigner_Malformed(t *testing.T) {
	signer := NewAssertionSigner(signerTestKey, 15*time.Minute)

	for _, token := range []string{
		"",
		"not-a-jwt",
		"aaaa.bbbb.cccc",
	} {
		verified, err := signer.Verify(token)
		assert.Nil(t, verified)
		assert.ErrorIs(t, err, authDomain.ErrAssertionMalformed)
	}
}

func TestAssertionSigner_TamperedPayload(t *testing.T) {
	signer := NewAssertionSigner(signerTestKey, 15*time.Minute)
	token, _, err := signer.Sign(testIdentity())
	require.NoError(t, err)

	// Flip a character in the payload segment
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	verified, err := signer.Verify(string(tampered))
	assert.Nil(t, verified)
	assert.ErrorIs(t, err, authDomain.ErrAssertionMalformed)
}
