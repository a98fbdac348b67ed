package config

import "time"

// CacheConfig configures the Response Cache (spec §4.3): a durable Redis
// store with an in-process fallback, keyed by KeyPrefix plus the SHA-256
// fingerprint of the resolved prompt followed by the reference data.
//
type CacheConfig struct {
	Backend         CacheBackend  `yaml:"backend"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisDB         int           `yaml:"redis_db"`
	KeyPrefix       string        `yaml:"key_prefix"`
	TTL             time.Duration `yaml:"ttl"`
	FallbackTTL     time.Duration `yaml:"fallback_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultCacheConfig returns a Redis-backed cache with a 24h entry TTL, a
// 5-minute in-process fallback TTL, and a 10-minute expired-entry sweep.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:         CacheBackendRedis,
		RedisAddr:       "localhost:6379",
		RedisDB:         0,
		KeyPrefix:       "lookup:llm:",
		TTL:             24 * time.Hour,
		FallbackTTL:     5 * time.Minute,
		CleanupInterval: 10 * time.Minute,
	}
}
