package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRefreshCredential_IsLive(t *testing.T) {
	now := time.Now().UTC()
	revokedAt := now.Add(-time.Minute)
	replacedBy := uuid.Must(uuid.NewV7())

	tests := []struct {
		name       string
		credential RefreshCredential
		wantLive   bool
	}{
		{
			name: "live credential",
			credential: RefreshCredential{
				ExpiresAt: now.Add(time.Hour),
			},
			wantLive: true,
		},
		{
			name: "expired credential",
			credential: RefreshCredential{
				ExpiresAt: now.Add(-time.Minute),
			},
			wantLive: false,
		},
		{
			name: "revoked credential",
			credential: RefreshCredential{
				ExpiresAt: now.Add(time.Hour),
				RevokedAt: &revokedAt,
			},
			wantLive: false,
		},
		{
			name: "rotated credential",
			credential: RefreshCredential{
				ExpiresAt:    now.Add(time.Hour),
				ReplacedByID: &replacedBy,
			},
			wantLive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLive, tt.credential.IsLive(now))
		})
	}
}

func TestIdentityContext_IsSuperAdmin(t *testing.T) {
	assert.True(t, (&IdentityContext{Level: 1}).IsSuperAdmin())
	assert.False(t, (&IdentityContext{Level: 2}).IsSuperAdmin())
}
