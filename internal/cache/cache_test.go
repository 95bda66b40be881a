package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestShoppingListCacheRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewShoppingListCache(client, time.Minute)

	_, found, err := c.Get(ctx, "t1", "p1", 21)
	require.NoError(t, err)
	assert.False(t, found)

	list := &domain.ShoppingList{
		TenantID: "t1", PropertyID: "p1", HorizonDays: 21,
		Items:      []domain.Recommendation{{SupplyID: "s1", RecommendedBuy: 3, Priority: domain.PriorityHigh}},
		TotalItems: 1, HighPriorityItems: 1,
	}
	require.NoError(t, c.Set(ctx, list))
	require.NoError(t, c.Set(ctx, &domain.ShoppingList{TenantID: "t1", PropertyID: "p1", HorizonDays: 7}))
	require.NoError(t, c.Set(ctx, &domain.ShoppingList{TenantID: "t1", PropertyID: "p2", HorizonDays: 21}))

	got, found, err := c.Get(ctx, "t1", "p1", 21)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, got.HighPriorityItems)
	assert.Equal(t, "s1", got.Items[0].SupplyID)

	key := buildShoppingListKey("t1", "p1", 21)
	assert.Equal(t, time.Minute, mr.TTL(key))

	require.NoError(t, c.Invalidate(ctx, "t1", "p1"))

	_, found, _ = c.Get(ctx, "t1", "p1", 21)
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "t1", "p1", 7)
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "t1", "p2", 21)
	assert.True(t, found, "other properties keep their entries")
}

func TestShoppingListCacheNilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	c := NewShoppingListCache(nil, 0)

	require.NoError(t, c.Set(ctx, &domain.ShoppingList{TenantID: "t1", PropertyID: "p1"}))
	_, found, err := c.Get(ctx, "t1", "p1", 0)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate(ctx, "t1", "p1"))
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	locker := NewLocker(client, 5*time.Second, 2)
	key := InventoryLockKey("t1", "p1", "s1")

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	_, err = locker.Lock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	unlock()
	assert.False(t, mr.Exists(key))

	unlock, err = locker.Lock(ctx, key)
	require.NoError(t, err)
	unlock()
}

func TestRedisLockerReleaseKeepsForeignLock(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	locker := NewLocker(client, time.Second, 1)
	key := InventoryLockKey("t1", "p1", "s1")

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	// lock expired and was taken by someone else
	require.NoError(t, mr.Set(key, "someone-else"))
	unlock()

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestLocalLockerSerializes(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "k")
			if err != nil {
				return
			}
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Empty(t, locker.(*localLocker).entries)
}

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Equal(t, defaultCacheTTL, ShoppingListTTL(config.CacheConfig{}))
}

func TestNewRedisClientFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}
