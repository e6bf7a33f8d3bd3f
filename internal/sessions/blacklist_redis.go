package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// package-level Redis client used for the admin token revocation list (optional)
var blacklistClient *redis.Client

const revokedPrefix = "blacklist:admin:"

// SetBlacklistClient configures the Redis client used for revocation checks.
// Safe to call with nil to disable revocation.
func SetBlacklistClient(c *redis.Client) {
	blacklistClient = c
}

// Enabled reports whether revocation is backed by Redis.
func Enabled() bool { return blacklistClient != nil }

// RevokeToken records the token id (jti) as revoked until ttl elapses.
// If no Redis client is configured, this is a no-op and returns nil.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if blacklistClient == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return blacklistClient.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

// IsTokenRevoked returns true when the token id is in the revocation list.
// If no Redis client is configured, returns (false, nil).
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if blacklistClient == nil {
		return false, nil
	}
	exists, err := blacklistClient.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
