package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

const (
	defaultLockTTL     = 10 * time.Second
	defaultLockRetries = 3
	lockRetryBackoff   = 100 * time.Millisecond
)

// Locker serializes work on a key. The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// InventoryLockKey is the lock key of one (tenant, property, supply) triple.
func InventoryLockKey(tenantID, propertyID, supplyID string) string {
	return fmt.Sprintf("lock:inventory:%s:%s:%s", tenantID, propertyID, supplyID)
}

// NewLocker returns a Redis lock when client is set, otherwise a keyed mutex
// local to this process.
func NewLocker(client *redis.Client, ttl time.Duration, retries int) Locker {
	if client == nil {
		return NewLocalLocker()
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if retries <= 0 {
		retries = defaultLockRetries
	}
	return &redisLocker{client: client, ttl: ttl, retries: retries}
}

type redisLocker struct {
	client  *redis.Client
	ttl     time.Duration
	retries int
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	for attempt := 1; attempt <= l.retries; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock failed: %w", err)
		}
		if ok {
			return func() {
				// ctx may already be cancelled here
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
				}
			}, nil
		}

		if attempt == l.retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * lockRetryBackoff):
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
}

type localLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocalLocker() Locker {
	return &localLocker{entries: make(map[string]*lockEntry)}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}, nil
}
