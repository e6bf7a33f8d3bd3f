package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevokeToken_IsTokenRevoked(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	SetBlacklistClient(client)
	defer SetBlacklistClient(nil)
	require.True(t, Enabled())

	ctx := context.Background()
	jti := "6f1c9a52-0d1e-4f55-9d4a-0a0c1f7e2b11"
	require.NoError(t, RevokeToken(ctx, jti, 2*time.Second))

	ok, err := IsTokenRevoked(ctx, jti)
	require.NoError(t, err)
	require.True(t, ok)

	other, err := IsTokenRevoked(ctx, "another-id")
	require.NoError(t, err)
	require.False(t, other)

	// advance past TTL
	m.FastForward(3 * time.Second)

	ok2, err := IsTokenRevoked(ctx, jti)
	require.NoError(t, err)
	require.False(t, ok2)
}

func TestRevokeToken_RedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer SetBlacklistClient(nil)
	m.Close()

	_, err = IsTokenRevoked(context.Background(), "x")
	require.Error(t, err)
}

// Ensure revocation functions are no-ops when no Redis client configured
func TestBlacklist_NoClient_Noop(t *testing.T) {
	SetBlacklistClient(nil)
	ctx := context.Background()
	require.False(t, Enabled())
	require.NoError(t, RevokeToken(ctx, "no-client-token", time.Second))
	ok, err := IsTokenRevoked(ctx, "no-client-token")
	require.NoError(t, err)
	require.False(t, ok)
}
