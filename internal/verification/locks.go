package verification

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker serializes state transitions per partner. Two concurrent decisions
// on the same partner must not both run: the second either waits and is then
// rejected by the state guard, or fails with ConcurrencyConflictError.
// Transitions on different partners proceed in parallel.
type Locker interface {
	Acquire(ctx context.Context, partnerID uuid.UUID) (release func(), err error)
}

// KeyedLocker is the in-process Locker used by a single-instance deployment
// and by tests. It blocks until the partner's lock is free.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*partnerLock
}

type partnerLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker creates an in-process per-partner locker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[uuid.UUID]*partnerLock)}
}

// Acquire takes the lock for one partner, creating it on first use and
// dropping it once the last holder releases.
func (l *KeyedLocker) Acquire(ctx context.Context, partnerID uuid.UUID) (func(), error) {
	l.mu.Lock()
	pl, ok := l.locks[partnerID]
	if !ok {
		pl = &partnerLock{}
		l.locks[partnerID] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	released := false
	return func() {
		if released {
			return
		}
		released = true
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, partnerID)
		}
		l.mu.Unlock()
	}, nil
}

// RedisLocker serializes partner transitions across instances with a
// SET NX lease. Contention is reported as ConcurrencyConflictError rather
// than blocking indefinitely; the caller re-fetches and retries.
type RedisLocker struct {
	client   *redis.Client
	lease    time.Duration
	retries  int
	backoff  time.Duration
}

// NewRedisLocker creates a redis-backed per-partner locker
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:  client,
		lease:   10 * time.Second,
		retries: 3,
		backoff: 100 * time.Millisecond,
	}
}

const lockKeyPrefix = "verification:lock:"

// Acquire takes the partner lease, retrying briefly before giving up with
// ConcurrencyConflictError.
func (l *RedisLocker) Acquire(ctx context.Context, partnerID uuid.UUID) (func(), error) {
	key := lockKeyPrefix + partnerID.String()
	token := uuid.New().String()

	for attempt := 0; attempt <= l.retries; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return nil, &UpstreamUnavailableError{Upstream: "redis", Err: err}
		}
		if ok {
			return func() {
				// Release only our own lease; an expired lease may have
				// been taken over by another holder.
				current, err := l.client.Get(context.Background(), key).Result()
				if err == nil && current == token {
					l.client.Del(context.Background(), key)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}

	return nil, &ConcurrencyConflictError{PartnerID: partnerID.String()}
}
