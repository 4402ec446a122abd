package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTestRedisAddr = "localhost:56379"

// RedisFixture is a live Redis client plus a key prefix unique to one test.
// Everything under Prefix is deleted when the test ends.
type RedisFixture struct {
	Client *redis.Client
	Prefix string
}

// TestRedisAddr resolves the Redis address for tests: REDIS_ADDR when set,
// else the docker-compose test port.
func TestRedisAddr() string {
	return getEnvOrDefault("REDIS_ADDR", defaultTestRedisAddr)
}

// SetupTestRedis connects to the test Redis, skipping the test when it is
// unreachable unless TEST_REQUIRE_REDIS is set.
func SetupTestRedis(t TestingTB) RedisFixture {
	t.Helper()

	addr := TestRedisAddr()
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		skipOrFail(t, "REDIS", "redis not available at %s: %v", addr, err)
		return RedisFixture{}
	}

	fx := RedisFixture{Client: client, Prefix: "test:" + randomSuffix() + ":"}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := deleteByPrefix(ctx, client, fx.Prefix); err != nil {
			t.Logf("warning: cleanup redis prefix %s: %v", fx.Prefix, err)
		}
		if err := client.Close(); err != nil {
			t.Logf("warning: close redis client: %v", err)
		}
	})
	return fx
}

func deleteByPrefix(ctx context.Context, client *redis.Client, prefix string) error {
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

func randomSuffix() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("150405.000000000")
	}
	return hex.EncodeToString(b)
}
