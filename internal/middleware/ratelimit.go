package middleware

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/excursion-storefront/internal/config"
    "github.com/iliyamo/excursion-storefront/internal/session"
)

const msgTooManyRequests = "Слишком много запросов. Попробуйте ещё раз немного позже."

// bucketScript takes one token from the bucket at KEYS[1] after crediting
// the whole refill intervals elapsed since the last refill.
//
//  ARGV:    now_ms, capacity, refill_tokens, interval_ms, ttl_s
//  returns: {allowed (0|1), tokens_left, retry_after_ms}
var bucketScript = redis.NewScript(`
local now, cap, refill, interval, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens, ts = tonumber(state[1]), tonumber(state[2])
if tokens == nil or ts == nil then
    tokens, ts = cap, now
end

local steps = math.floor(math.max(0, now - ts) / interval)
if steps > 0 then
    tokens = math.min(cap, tokens + steps * refill)
    ts = ts + steps * interval
end

local allowed, wait = 0, 0
if tokens > 0 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, interval - (now - ts))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket throttles the booking submit and cancel routes with a
// token bucket kept in Redis, so every storefront instance shares one
// budget per visitor and route.  Every request that passes still reaches
// the backend; this is not a duplicate-booking guard.  Redis errors fail
// open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    interval := cfg.RefillInterval
    if interval <= 0 {
        interval = time.Second
    }
    ttl := int64(cfg.TTL / time.Second)
    if ttl < 1 {
        ttl = 1
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg.Prefix, c)
            res, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens, interval.Milliseconds(), ttl).Int64Slice()
            if err != nil || len(res) != 3 {
                c.Logger().Warnf("rate limit %s unavailable, request let through: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
            if res[0] == 1 {
                return next(c)
            }
            secs := (res[2] + 999) / 1000
            h.Set("Retry-After", strconv.FormatInt(secs, 10))
            return c.JSON(http.StatusTooManyRequests, echo.Map{"error": msgTooManyRequests, "retry_after": secs})
        }
    }
}

// rateKey names the bucket of the visitor on the matched route, so submit
// and cancel have separate budgets.
func rateKey(prefix string, c echo.Context) string {
    return prefix + ":" + visitorKey(c) + ":" + c.Request().Method + " " + c.Path()
}

// visitorKey identifies a signed-in visitor by user id, so one account
// shares its budget across devices, and an anonymous one by session id.
func visitorKey(c echo.Context) string {
    st, ok := c.Get(sessionKey).(*session.Store)
    if !ok {
        return "anon"
    }
    if u := st.User(); u != nil {
        return "u" + strconv.FormatInt(u.ID, 10)
    }
    return "s" + st.ID()
}
