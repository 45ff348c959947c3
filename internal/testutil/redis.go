// internal/testutil/redis.go
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisAddr is used when EDUFLOW_TEST_REDIS_ADDR is unset.
const DefaultRedisAddr = "localhost:6379"

// SetupTestRedis returns a client for a scratch Redis database. Keys written
// under prefix are deleted when the test ends. The test is skipped when Redis
// is unreachable.
func SetupTestRedis(t *testing.T, prefix string) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis test in short mode")
	}

	addr := os.Getenv("EDUFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		addr = DefaultRedisAddr
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15, DialTimeout: 2 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("Redis unavailable: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if keys, err := rdb.Keys(ctx, prefix+"*").Result(); err == nil && len(keys) > 0 {
			_ = rdb.Del(ctx, keys...).Err()
		}
		_ = rdb.Close()
	})
	return rdb
}
