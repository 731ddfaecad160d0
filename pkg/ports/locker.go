package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises the processing of one conversation across bot replicas.
// The engine itself never locks; the host wraps each inbound update in a lock.
type DistributedLocker interface {
	// Lock blocks until the lock for key (a conversation id) is held or ctx is done.
	// The lock expires after ttl even if UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
