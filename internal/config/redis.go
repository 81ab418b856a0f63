package config

// This file defines the Redis client constructor.  Redis holds the
// persisted session tokens, the catalog response cache and the booking
// rate-limit buckets.  If the server cannot be reached at startup the
// constructor returns nil and callers degrade gracefully: sessions fall back
// to process memory, caching and rate limiting are switched off.

import (
    "context"
    "crypto/tls"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand (host/port win when both are set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
// The returned client is nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    var tlsConf *tls.Config
    if tlsEnv := os.Getenv("REDIS_TLS"); strings.EqualFold(tlsEnv, "true") || tlsEnv == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        envInt("REDIS_DB", 0),
        TLSConfig: tlsConf,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
