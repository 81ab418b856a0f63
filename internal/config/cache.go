package config

import "time"

// CacheConfig configures the Redis response cache in front of the excursion
// search and details.  Availability is never cached.  With Enabled false,
// or without a Redis client, every catalog request goes to the backend.
// Responses larger than MaxBodyBytes are served but not stored.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "catalog"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.Enabled = false
    }
    return cfg
}
