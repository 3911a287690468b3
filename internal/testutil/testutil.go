// Package testutil provides utilities for integration testing
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTestRedisURL is the default Redis URL for integration tests
const DefaultTestRedisURL = "redis://localhost:6380/15"

// GetTestRedisURL returns the test Redis URL from environment or default
func GetTestRedisURL() string {
	if url := os.Getenv("TEST_REDIS_URL"); url != "" {
		return url
	}
	return DefaultTestRedisURL
}

// TestRedis wraps a Redis client for testing
type TestRedis struct {
	URL    string
	Client *redis.Client
	prefix string
}

// SetupTestRedis connects to the test Redis instance.
// Skip test if Redis is not available
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := GetTestRedisURL()
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Skipf("skipping test: invalid redis URL: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping test: could not ping redis: %v", err)
	}

	return &TestRedis{URL: url, Client: client, prefix: "lantern:"}
}

// Cleanup removes every key the tests may have written
func (r *TestRedis) Cleanup(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	iter := r.Client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.Client.Del(ctx, iter.Val()).Err(); err != nil {
			t.Logf("warning: failed to delete %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		t.Logf("warning: failed to scan keys: %v", err)
	}
}

// Close closes the test Redis connection
func (r *TestRedis) Close() {
	if r.Client != nil {
		r.Client.Close()
	}
}

// TTL returns the remaining lifetime of key
func (r *TestRedis) TTL(t *testing.T, key string) time.Duration {
	t.Helper()
	ttl, err := r.Client.TTL(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("failed to read ttl for %s: %v", key, err)
	}
	return ttl
}

// String is for test logs; it never includes credentials
func (r *TestRedis) String() string {
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return "redis"
	}
	return fmt.Sprintf("redis %s db %d", opts.Addr, opts.DB)
}
