package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type heldLock struct {
	token     string
	expiresAt time.Time
}

// InMemoryPeriodLocker is the single-instance fallback when Redis is disabled.
// Locks do not coordinate across processes.
type InMemoryPeriodLocker struct {
	mu    sync.Mutex
	locks map[string]heldLock
	now   func() time.Time
}

// NewInMemoryPeriodLocker creates an empty locker
func NewInMemoryPeriodLocker() *InMemoryPeriodLocker {
	return &InMemoryPeriodLocker{
		locks: make(map[string]heldLock),
		now:   time.Now,
	}
}

// Acquire takes the lock unless an unexpired holder exists
func (l *InMemoryPeriodLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.locks[key]; ok && now.Before(held.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.locks[key] = heldLock{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees the lock if it is still held under token. Unknown keys and
// stale tokens are ignored.
func (l *InMemoryPeriodLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if held, ok := l.locks[key]; ok && held.token == token {
		delete(l.locks, key)
	}
	return nil
}
