package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationList_Revoke(t *testing.T) {
	list := NewMemoryRevocationList()
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationList_Expiry(t *testing.T) {
	list := NewMemoryRevocationList()
	ctx := context.Background()
	now := time.Now()
	list.now = func() time.Time { return now }

	require.NoError(t, list.Revoke(ctx, "short", time.Minute))
	list.now = func() time.Time { return now.Add(2 * time.Minute) }

	revoked, err := list.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, list.tokens, "expired entries are dropped")
}

func TestMemoryRevocationList_NonPositiveTTLIsNoop(t *testing.T) {
	list := NewMemoryRevocationList()
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "gone", 0))
	revoked, err := list.IsRevoked(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationList_RevokeUser(t *testing.T) {
	list := NewMemoryRevocationList()
	ctx := context.Background()
	cutoff := time.Now().Truncate(time.Second)

	require.NoError(t, list.RevokeUser(ctx, "user-1", cutoff, time.Hour))

	tests := []struct {
		name     string
		userID   string
		issuedAt time.Time
		revoked  bool
	}{
		{"issued before cut-off", "user-1", cutoff.Add(-time.Minute), true},
		{"issued in the cut-off second", "user-1", cutoff.Add(500 * time.Millisecond), false},
		{"issued after cut-off", "user-1", cutoff.Add(time.Minute), false},
		{"other user", "user-2", cutoff.Add(-time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revoked, err := list.IsUserRevoked(ctx, tt.userID, tt.issuedAt)
			require.NoError(t, err)
			assert.Equal(t, tt.revoked, revoked)
		})
	}
}
