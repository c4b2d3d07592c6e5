package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes mutations of one session across processes
// that share a StateStore. The session Manager takes the lock around every
// load/mutate/save cycle.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx ends. The lock expires after ttl
	// if the holder never releases it. The returned UnlockFunc must be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
