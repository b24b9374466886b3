package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/pkg/platform/sentinel"
)

func TestInMemoryTRL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	trl := NewInMemoryTRL(WithInMemoryClock(func() time.Time { return now }))

	revoked, err := trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err = trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry outlived the token")

	require.NoError(t, trl.RevokeToken(ctx, "jti-2", time.Minute))
	trl.mu.RLock()
	_, stale := trl.revoked["jti-1"]
	trl.mu.RUnlock()
	assert.False(t, stale, "expired entries are swept on write")
}

func TestInMemoryTRL_RejectsNonPositiveTTL(t *testing.T) {
	trl := NewInMemoryTRL()
	err := trl.RevokeToken(context.Background(), "jti", 0)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	assert.NoError(t, trl.RevokeToken(context.Background(), "", 0), "empty jti is ignored")
}
