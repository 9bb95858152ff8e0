package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/repairshop/erp/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testLockKey = "payroll:generate:tenant-1:2024-03"

func newTestRedisLocker(client redis.UniversalClient, tokens ...string) *RedisPeriodLocker {
	locker := NewRedisPeriodLocker(client)
	next := 0
	locker.newToken = func() string {
		token := tokens[next]
		next++
		return token
	}
	return locker
}

func TestRedisPeriodLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire sets the key with a fresh token", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		locker := newTestRedisLocker(client, "run-1")
		mock.ExpectSetNX("lock:"+testLockKey, "run-1", time.Minute).SetVal(true)

		token, ok, err := locker.Acquire(ctx, testLockKey, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "run-1", token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held lock is reported", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		locker := newTestRedisLocker(client, "run-1")
		mock.ExpectSetNX("lock:"+testLockKey, "run-1", time.Minute).SetVal(false)

		token, ok, err := locker.Acquire(ctx, testLockKey, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("redis errors are wrapped", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		locker := newTestRedisLocker(client, "run-1")
		mock.ExpectSetNX("lock:"+testLockKey, "run-1", time.Minute).SetErr(errors.New("READONLY"))

		_, _, err := locker.Acquire(ctx, testLockKey, time.Minute)
		assert.ErrorContains(t, err, "failed to acquire lock "+testLockKey)
	})

	t.Run("each acquisition gets its own token", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		locker := newTestRedisLocker(client, "run-1", "run-2")
		mock.ExpectSetNX("lock:"+testLockKey, "run-1", time.Minute).SetVal(true)
		mock.ExpectSetNX("lock:"+testLockKey, "run-2", time.Minute).SetVal(true)
		// the first run outlived its TTL; its release must present its own token
		mock.ExpectEvalSha(releaseScript.Hash(), []string{"lock:" + testLockKey}, "run-1").SetVal(int64(0))

		first, _, err := locker.Acquire(ctx, testLockKey, time.Minute)
		require.NoError(t, err)
		second, _, err := locker.Acquire(ctx, testLockKey, time.Minute)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		require.NoError(t, locker.Release(ctx, testLockKey, first))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release runs the compare and delete script", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		locker := NewRedisPeriodLocker(client)
		mock.ExpectEvalSha(releaseScript.Hash(), []string{"lock:" + testLockKey}, "run-1").SetVal(int64(1))

		require.NoError(t, locker.Release(ctx, testLockKey, "run-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release failure is wrapped", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		locker := NewRedisPeriodLocker(client)
		mock.ExpectEvalSha(releaseScript.Hash(), []string{"lock:" + testLockKey}, "run-1").SetErr(errors.New("connection reset"))

		assert.ErrorContains(t, locker.Release(ctx, testLockKey, "run-1"), "connection reset")
	})

	t.Run("default tokens are unique", func(t *testing.T) {
		client, _ := redismock.NewClientMock()
		locker := NewRedisPeriodLocker(client)
		assert.NotEqual(t, locker.newToken(), locker.newToken())
	})
}

func TestInMemoryPeriodLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)
	locker := NewInMemoryPeriodLocker()
	locker.now = func() time.Time { return now }

	first, ok, err := locker.Acquire(ctx, testLockKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, first)

	_, ok, err = locker.Acquire(ctx, testLockKey, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must wait")

	_, ok, _ = locker.Acquire(ctx, "payroll:generate:tenant-1:2024-04", time.Minute)
	assert.True(t, ok, "other periods are independent")

	now = now.Add(2 * time.Minute)
	second, ok, _ := locker.Acquire(ctx, testLockKey, time.Minute)
	assert.True(t, ok, "expired lock can be taken over")

	require.NoError(t, locker.Release(ctx, testLockKey, first))
	_, ok, _ = locker.Acquire(ctx, testLockKey, time.Minute)
	assert.False(t, ok, "a stale token must not free the new holder's lock")

	require.NoError(t, locker.Release(ctx, testLockKey, second))
	require.NoError(t, locker.Release(ctx, "never-locked", "x"))
	_, ok, _ = locker.Acquire(ctx, testLockKey, time.Minute)
	assert.True(t, ok)
}

func TestNewPeriodLocker(t *testing.T) {
	ctx := context.Background()
	unreachable := func(context.Context, config.RedisConfig) (*redis.Client, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	withConnect := func(connect func(context.Context, config.RedisConfig) (*redis.Client, error)) LockerFactoryOption {
		return func(f *lockerFactory) { f.connect = connect }
	}

	t.Run("disabled redis uses memory", func(t *testing.T) {
		locker, client, err := NewPeriodLocker(ctx, config.RedisConfig{Enabled: false})
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.IsType(t, &InMemoryPeriodLocker{}, locker)
	})

	t.Run("reachable redis is used", func(t *testing.T) {
		mockClient, _ := redismock.NewClientMock()
		locker, client, err := NewPeriodLocker(ctx, config.RedisConfig{Enabled: true, Host: "redis", Port: 6379},
			withConnect(func(context.Context, config.RedisConfig) (*redis.Client, error) { return mockClient, nil }))
		require.NoError(t, err)
		assert.Same(t, mockClient, client)
		assert.IsType(t, &RedisPeriodLocker{}, locker)
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		locker, _, err := NewPeriodLocker(ctx, config.RedisConfig{Enabled: true},
			withConnect(unreachable), WithLogger(zap.New(core)))
		require.NoError(t, err)
		assert.IsType(t, &InMemoryPeriodLocker{}, locker)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("fallback can be disabled", func(t *testing.T) {
		_, _, err := NewPeriodLocker(ctx, config.RedisConfig{Enabled: true},
			withConnect(unreachable), WithInMemoryFallback(false))
		assert.ErrorContains(t, err, "redis required")
	})
}
