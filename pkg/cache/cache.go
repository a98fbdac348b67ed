// Package cache implements the Look-Up response cache: a content-addressed
// Redis-backed store with an in-process fallback used when Redis errors
// (not when it merely misses). Delete removes from both backends
// unconditionally.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/lookupengine/lookupengine/pkg/config"
)

// Stats is the advisory counter set returned by Stats; it need not be
// consistent under concurrency.
type Stats struct {
	Backend       string `json:"backend"`
	TTL           string `json:"ttl"`
	KeyPrefix     string `json:"key_prefix"`
	MemoryEntries int    `json:"memory_entries"`
	Hits          int64  `json:"hits"`
	Misses        int64  `json:"misses"`
	Sets          int64  `json:"sets"`
	FallbackHits  int64  `json:"fallback_hits"`
}

// Cache is the response cache's public surface: get/set/delete/clear_pattern
// /warmup/stats/cleanup_expired from spec §4.3.
type Cache struct {
	cfg   *config.CacheConfig
	redis *redis.Client
	local *gocache.Cache

	mu     sync.Mutex
	hits   int64
	misses int64
	sets   int64
	fbHits int64
}

// New builds a Cache from cfg. The Redis client is constructed but not
// pinged here; Redis errors are discovered lazily on first use and trigger
// fallback, per spec §4.3's "errors, not misses" rule.
func New(cfg *config.CacheConfig) *Cache {
	return &Cache{
		cfg: cfg,
		redis: redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}),
		local: gocache.New(cfg.FallbackTTL, cfg.CleanupInterval),
	}
}

// Key derives the cache key for a resolved prompt and its reference data,
// per spec §4.3: "{prefix}{sha256(resolved_prompt ‖ reference_data)}".
func (c *Cache) Key(resolvedPrompt, referenceData string) string {
	h := sha256.Sum256([]byte(resolvedPrompt + referenceData))
	return c.cfg.KeyPrefix + hex.EncodeToString(h[:])
}

// Get returns the cached value for key, trying Redis first and falling back
// to the in-process cache only when Redis errors.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.recordHit()
		return val, true
	case errors.Is(err, redis.Nil):
		c.recordMiss()
		return "", false
	default:
		slog.WarnContext(ctx, "cache: redis get failed, trying fallback", "key", key, "error", err)
		if v, ok := c.local.Get(key); ok {
			c.recordFallbackHit()
			return v.(string), true
		}
		c.recordMiss()
		return "", false
	}
}

// Set stores value under key with ttl (or the configured default TTL when
// ttl is zero) in both Redis and the in-process fallback, so a later Redis
// outage can still be served from the fallback. The write is idempotent on
// retry: a duplicate set for the same key simply overwrites the prior value.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.TTL
	}
	if err := c.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache: redis set failed, value kept in fallback only", "key", key, "error", err)
	}
	c.local.Set(key, value, ttl)
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
}

// Delete removes key from both backends unconditionally, matching the
// original's dual-delete discipline.
func (c *Cache) Delete(ctx context.Context, key string) error {
	var errs []error
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		errs = append(errs, fmt.Errorf("redis delete: %w", err))
	}
	c.local.Delete(key)
	return errors.Join(errs...)
}

// ClearPattern deletes every Redis key matching glob; best-effort and
// non-atomic (a SCAN cursor walk, not a single command).
func (c *Cache) ClearPattern(ctx context.Context, glob string) error {
	iter := c.redis.Scan(ctx, 0, glob, 0).Iterator()
	var errs []error
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			errs = append(errs, err)
		}
		c.local.Delete(iter.Val())
	}
	if err := iter.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Warmup pre-populates the cache for a project's precomputed key/value map,
// used to seed responses ahead of a bulk execution run.
func (c *Cache) Warmup(ctx context.Context, projectID string, entries map[string]string) {
	for k, v := range entries {
		c.Set(ctx, k, v, c.cfg.TTL)
	}
	slog.InfoContext(ctx, "cache: warmup complete", "project_id", projectID, "entries", len(entries))
}

// CleanupExpired sweeps the in-process fallback of expired entries; a no-op
// for Redis, which expires keys on its own.
func (c *Cache) CleanupExpired() {
	c.local.DeleteExpired()
}

// Stats reports the advisory counters and backend configuration.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Backend:       string(c.cfg.Backend),
		TTL:           c.cfg.TTL.String(),
		KeyPrefix:     c.cfg.KeyPrefix,
		MemoryEntries: c.local.ItemCount(),
		Hits:          c.hits,
		Misses:        c.misses,
		Sets:          c.sets,
		FallbackHits:  c.fbHits,
	}
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *Cache) recordFallbackHit() {
	c.mu.Lock()
	c.hits++
	c.fbHits++
	c.mu.Unlock()
}
