// Package keylock serializes work per key. Keys are spread over a fixed set of
// mutex shards so unrelated keys rarely contend and memory stays bounded.
package keylock

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "surety/pkg/domain-errors"
)

// NumShards is the number of mutexes keys are hashed onto.
const NumShards = 128

// DefaultTimeout bounds a locked section when the caller set no deadline.
const DefaultTimeout = 5 * time.Second

// Sharded runs callbacks under a per-key lock.
type Sharded struct {
	shards  [NumShards]sync.Mutex
	timeout time.Duration
}

// New returns a Sharded lock. A zero timeout selects DefaultTimeout.
func New(timeout time.Duration) *Sharded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sharded{timeout: timeout}
}

// WithKey runs fn while holding the shard for key. The context is checked
// before and after acquiring the lock so a cancelled request never mutates.
func (s *Sharded) WithKey(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	mu := &s.shards[Shard(key)]
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted: context cancelled")
	}
	return fn(ctx)
}

// Shard returns the shard index for key (FNV-1a).
func Shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % NumShards)
}
