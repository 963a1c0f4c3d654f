package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "blacklist:"

// RedisBlacklist keeps revoked token ids as keys that expire with the token.
type RedisBlacklist struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewRedisBlacklist(client redis.UniversalClient, timeout time.Duration) *RedisBlacklist {
	return &RedisBlacklist{client: client, timeout: timeout}
}

func (r *RedisBlacklist) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *RedisBlacklist) Add(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.client.Set(timeoutCtx, blacklistKeyPrefix+jti, userID, ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (r *RedisBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.client.Get(timeoutCtx, blacklistKeyPrefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check blacklist: %w", err)
	}
}

// CleanupExpired is a no-op: Redis evicts entries on their TTL.
func (r *RedisBlacklist) CleanupExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
