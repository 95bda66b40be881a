package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

const (
	shoppingListKeyPrefix = "shopping_list"
	shoppingListBatchSize = 100
)

type ShoppingListCache interface {
	Get(ctx context.Context, tenantID, propertyID string, horizonDays int) (*domain.ShoppingList, bool, error)
	Set(ctx context.Context, list *domain.ShoppingList) error
	// Invalidate drops every cached horizon of a property.
	Invalidate(ctx context.Context, tenantID, propertyID string) error
}

type redisShoppingListCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopShoppingListCache struct{}

// NewShoppingListCache returns a Redis-backed cache, or a noop cache when
// client is nil.
func NewShoppingListCache(client *redis.Client, ttl time.Duration) ShoppingListCache {
	if client == nil {
		return &noopShoppingListCache{}
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisShoppingListCache{client: client, ttl: ttl}
}

func NewNoopShoppingListCache() ShoppingListCache {
	return &noopShoppingListCache{}
}

func (c *redisShoppingListCache) Get(ctx context.Context, tenantID, propertyID string, horizonDays int) (*domain.ShoppingList, bool, error) {
	key := buildShoppingListKey(tenantID, propertyID, horizonDays)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var list domain.ShoppingList
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, false, fmt.Errorf("decode shopping list cache: %w", err)
	}
	return &list, true, nil
}

func (c *redisShoppingListCache) Set(ctx context.Context, list *domain.ShoppingList) error {
	key := buildShoppingListKey(list.TenantID, list.PropertyID, list.HorizonDays)
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode shopping list cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisShoppingListCache) Invalidate(ctx context.Context, tenantID, propertyID string) error {
	return deleteKeysWithPrefix(ctx, c.client, shoppingListPropertyPrefix(tenantID, propertyID), shoppingListBatchSize)
}

func (n *noopShoppingListCache) Get(ctx context.Context, tenantID, propertyID string, horizonDays int) (*domain.ShoppingList, bool, error) {
	return nil, false, nil
}

func (n *noopShoppingListCache) Set(ctx context.Context, list *domain.ShoppingList) error {
	return nil
}

func (n *noopShoppingListCache) Invalidate(ctx context.Context, tenantID, propertyID string) error {
	return nil
}

func buildShoppingListKey(tenantID, propertyID string, horizonDays int) string {
	return fmt.Sprintf("%s%d", shoppingListPropertyPrefix(tenantID, propertyID), horizonDays)
}

// shoppingListPropertyPrefix hashes the ids so arbitrary tenant/property
// strings cannot collide with the key separators or glob characters.
func shoppingListPropertyPrefix(tenantID, propertyID string) string {
	sum := sha1.Sum([]byte(tenantID + "\x00" + propertyID))
	return fmt.Sprintf("%s:%s:", shoppingListKeyPrefix, hex.EncodeToString(sum[:]))
}
