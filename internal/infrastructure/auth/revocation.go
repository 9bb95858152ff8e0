package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RevocationList reports tokens revoked before they expire. The identity
// service writes the entries; payroll only reads them.
type RevocationList interface {
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

const defaultRevocationPrefix = "token:blacklist:"

// RedisRevocationList reads revocations from Redis. A token is revoked when
// its JTI key exists, or when the user's invalidation timestamp (unix
// seconds) is at or after the token's issued-at time.
type RedisRevocationList struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisRevocationList creates a RedisRevocationList using the shared key layout
func NewRedisRevocationList(client redis.Cmdable) *RedisRevocationList {
	return &RedisRevocationList{client: client, keyPrefix: defaultRevocationPrefix}
}

// IsRevoked checks both the token and the user-wide invalidation entry
func (r *RedisRevocationList) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims.ID != "" {
		n, err := r.client.Exists(ctx, r.keyPrefix+"jti:"+claims.ID).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if n > 0 {
			return true, nil
		}
	}

	raw, err := r.client.Get(ctx, r.keyPrefix+"user:"+claims.UserID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}
	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return claims.IssuedAtTime().Unix() <= invalidatedAt, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)
