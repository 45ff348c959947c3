// internal/app/system/modules/cache.go
package modules

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
)

// StorageKey is the base cache key for module maps.
const StorageKey = "eduflow-modules-config"

// CacheKey namespaces base by organization. With no organization the base key
// is used as is.
func CacheKey(base, orgID string) string {
	if orgID == "" {
		return base
	}
	return base + ":" + orgID
}

// Cache is the local key-value store a Service reads before the remote
// document answers. It is never treated as a source of truth.
type Cache interface {
	Get(ctx context.Context, key string) (State, bool, error)
	Set(ctx context.Context, key string, st State) error
	Remove(ctx context.Context, key string) error
}

// MemoryCache keeps module maps in process memory.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (State, bool, error) {
	c.mu.RLock()
	raw, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return decodeState(raw)
}

func (c *MemoryCache) Set(_ context.Context, key string, st State) error {
	raw, err := json.Marshal(st.Map())
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// RedisCache shares module maps between processes through Redis. Values are
// the JSON form of State.Map.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (State, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return decodeState(raw)
}

func (c *RedisCache) Set(ctx context.Context, key string, st State) error {
	raw, err := json.Marshal(st.Map())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	return c.rdb.Set(ctx, key, raw, 0).Err()
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	return c.rdb.Del(ctx, key).Err()
}

func decodeState(raw []byte) (State, bool, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false, err
	}
	st, _ := Normalize(m)
	return st, true, nil
}
