package repository

import (
	"context"
	"time"
)

// Locker is a best-effort distributed lock. TryLock returns domain.ErrLockNotAcquired
// when another owner holds the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}
