package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only when it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// refreshScript extends the lock TTL only when it still holds the caller's token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// LockRepository provides a Redis-backed mutual exclusion lock across instances.
// A nil client turns every operation into a successful no-op.
type LockRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewLockRepository constructs a lock repository.
func NewLockRepository(client *redis.Client, logger *zap.Logger) *LockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockRepository{client: client, logger: logger}
}

// TryAcquire sets key to token if it is unset and reports whether the lock was taken.
func (r *LockRepository) TryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// Refresh resets the TTL of a lock owned by token. It reports false when the
// lock expired or was taken by another owner.
func (r *LockRepository) Refresh(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	extended, err := refreshScript.Run(ctx, r.client, []string{key}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis refresh %s: %w", key, err)
	}
	return extended == 1, nil
}

// Release drops the lock when token still owns it.
func (r *LockRepository) Release(ctx context.Context, key, token string) error {
	if r.client == nil {
		return nil
	}
	released, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	if released == 0 {
		r.logger.Warn("lock expired before release", zap.String("key", key))
	}
	return nil
}
