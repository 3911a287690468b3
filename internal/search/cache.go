package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/config"
)

// Cache stores search results by query key
type Cache interface {
	Get(ctx context.Context, key string) ([]Result, bool)
	Set(ctx context.Context, key string, results []Result, ttl time.Duration) error
	Stats() CacheStats
}

// CacheStats holds cache statistics
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int64 `json:"size"`
}

// CacheKey derives a stable key from a query, ignoring case and spacing
func CacheKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

func keyPreview(key string) string {
	if len(key) > 16 {
		return key[:16] + "..."
	}
	return key
}

// MemoryCache is a bounded in-process cache with per-entry expiry
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
	stats   CacheStats
	stop    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	results   []Result
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache. Call Close to stop its
// cleanup goroutine.
func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 500
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	cache := &MemoryCache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Size = int64(len(c.entries))
		return nil, false
	}

	c.stats.Hits++
	log.Debug().Str("key", keyPreview(key)).Msg("search cache hit")
	return entry.results, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, results []Result, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		results:   results,
		expiresAt: time.Now().Add(ttl),
	}
	c.stats.Size = int64(len(c.entries))

	log.Debug().Str("key", keyPreview(key)).Dur("ttl", ttl).Msg("cached search results")
	return nil
}

func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// evictOldest removes the entry closest to expiry
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.stats.Size = int64(len(c.entries))
			c.mu.Unlock()
		}
	}
}

const redisKeyPrefix = "lantern:search:"

// RedisCache shares search results across server instances
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCache connects to redisURL and verifies the connection
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	log.Info().Str("addr", opts.Addr).Msg("search cache connected to redis")

	return &RedisCache{
		client: client,
		prefix: redisKeyPrefix,
		ttl:    ttl,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Result, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", keyPreview(key)).Msg("redis get failed")
		}
		c.misses.Add(1)
		return nil, false
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		log.Warn().Err(err).Str("key", keyPreview(key)).Msg("dropping unreadable cached results")
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return results, true
}

func (c *RedisCache) Set(ctx context.Context, key string, results []Result, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Stats reports hit and miss counts; Size is not tracked for a shared store
func (c *RedisCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NullCache is a no-op cache for when caching is disabled
type NullCache struct{}

func (c *NullCache) Get(ctx context.Context, key string) ([]Result, bool) {
	return nil, false
}

func (c *NullCache) Set(ctx context.Context, key string, results []Result, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Stats() CacheStats {
	return CacheStats{}
}

// CreateCache builds the cache selected by configuration
func CreateCache(ctx context.Context, cfg *config.Config) (Cache, error) {
	switch cfg.Search.CacheType {
	case "memory":
		return NewMemoryCache(cfg.Search.CacheSize, cfg.Search.CacheTTL), nil
	case "redis":
		cache, err := NewRedisCache(ctx, cfg.RedisURL, cfg.Search.CacheTTL)
		if err != nil {
			return nil, err
		}
		return cache, nil
	case "none", "":
		return &NullCache{}, nil
	default:
		return nil, fmt.Errorf("unknown search cache type %q", cfg.Search.CacheType)
	}
}
