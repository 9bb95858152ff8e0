package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/repairshop/erp/internal/infrastructure/config"
	"go.uber.org/zap"
)

// PeriodLocker is the lock contract shared by the Redis and in-memory lockers.
// Each successful Acquire returns the token Release must present.
type PeriodLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// LockerFactoryOption configures NewPeriodLocker
type LockerFactoryOption func(*lockerFactory)

type lockerFactory struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error)
}

// WithLogger sets the logger used to report the chosen locker
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *lockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory locker. Defaults to true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *lockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPeriodLocker picks the Redis locker when Redis is enabled and reachable.
// The returned client is nil when the in-memory locker was chosen.
func NewPeriodLocker(ctx context.Context, cfg config.RedisConfig, opts ...LockerFactoryOption) (PeriodLocker, *redis.Client, error) {
	f := &lockerFactory{
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect:               NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}

	if !cfg.Enabled {
		f.logger.Info("Redis disabled, using in-memory payroll generation lock")
		return NewInMemoryPeriodLocker(), nil, nil
	}

	client, err := f.connect(ctx, cfg)
	if err == nil {
		f.logger.Info("Using Redis payroll generation lock", zap.String("addr", cfg.Addr()))
		return NewRedisPeriodLocker(client), client, nil
	}
	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for payroll generation lock: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory payroll generation lock. "+
		"Concurrent generation across instances is not prevented.",
		zap.Error(err),
	)
	return NewInMemoryPeriodLocker(), nil, nil
}
