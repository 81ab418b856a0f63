package config

import "time"

// RateLimitConfig configures the Redis token bucket placed in front of the
// booking and cancellation endpoints.  The bucket holds Capacity tokens and
// regains RefillTokens every RefillInterval.  It protects the backend from
// a visitor hammering the submit button; it is not a duplicate-booking
// guard, every request that passes still reaches the backend.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    Prefix         string
}

func LoadRateLimitConfig() RateLimitConfig {
    def := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
        def.Capacity = b
    }
    if def.Capacity < 1 {
        def.Capacity = 1
    }
    if def.RefillTokens < 1 {
        def.RefillTokens = 1
    }
    if def.RefillInterval <= 0 {
        def.RefillInterval = time.Second
    }
    if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
        def.TTL = minTTL
    }
    return def
}
