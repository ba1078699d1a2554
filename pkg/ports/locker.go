package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns for one conversation across replicas.
// The engine core never locks; the session manager takes this lock around a turn.
type DistributedLocker interface {
	// Lock blocks until the lock for key (a conversation ID) is held or ctx is done.
	// ttl bounds how long a crashed holder can keep the lock.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
