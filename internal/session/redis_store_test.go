package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-web/internal/testutil"
)

func TestRedisRevoker(t *testing.T) {
	addr := testutil.StartRedis(t)
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	revoker := NewRedisRevoker(client)

	revoked, err := revoker.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "abc", time.Now().Add(time.Hour)))
	revoked, err = revoker.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, revokedPrefix+"abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	// Token yang sudah kedaluwarsa tidak perlu disimpan.
	require.NoError(t, revoker.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	revoked, err = revoker.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "forever", time.Time{}))
	ttl, err = client.TTL(ctx, revokedPrefix+"forever").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)

	m := NewManager([]byte("secret"), time.Hour, false, revoker)
	raw, claims, err := m.Issue(3)
	require.NoError(t, err)
	require.NoError(t, revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time))
	_, err = m.Parse(ctx, raw)
	assert.ErrorIs(t, err, ErrRevoked)
}
