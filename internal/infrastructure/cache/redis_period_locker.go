package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const periodLockPrefix = "lock:"

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPeriodLocker implements the payroll generation lock with SET NX PX.
// It is shared by every API instance pointing at the same Redis.
type RedisPeriodLocker struct {
	client   redis.UniversalClient
	newToken func() string
}

// NewRedisPeriodLocker creates a locker backed by client
func NewRedisPeriodLocker(client redis.UniversalClient) *RedisPeriodLocker {
	return &RedisPeriodLocker{
		client:   client,
		newToken: uuid.NewString,
	}
}

// Acquire sets the lock key if absent under a fresh token. It returns false
// when another holder owns it.
func (l *RedisPeriodLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, periodLockPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lock if it is still held under token
func (l *RedisPeriodLocker) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{periodLockPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
