// internal/pkg/lock/redis_lock.go
package lock

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is held by another owner.
var ErrNotAcquired = fmt.Errorf("lock not acquired")

// releaseScript deletes the key only if it still holds our fencing value, so
// an expired lock re-acquired by another owner is never released by us.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker serializes allocation commits per subscription using a Redis
// SET NX PX lock. The database's conditional decrement stays authoritative;
// the lock only keeps well-behaved callers from interleaving the
// read-validate-commit sequence.
type Locker struct {
	client  *redis.Client
	entropy *ulid.MonotonicEntropy
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{
		client:  client,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Acquire takes the named lock for at most ttl and returns a release
// function. It fails with ErrNotAcquired if another owner holds the lock.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	value := ulid.MustNew(ulid.Timestamp(time.Now()), l.entropy).String()

	ok, err := l.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		l.client.Eval(releaseCtx, releaseScript, []string{key}, value)
	}
	return release, nil
}

// AcquireWait retries Acquire until the lock is free or ctx is done.
func (l *Locker) AcquireWait(ctx context.Context, key string, ttl, retryEvery time.Duration) (func(), error) {
	for {
		release, err := l.Acquire(ctx, key, ttl)
		if err == nil {
			return release, nil
		}
		if err != ErrNotAcquired {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryEvery):
		}
	}
}
