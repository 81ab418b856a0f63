package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/excursion-storefront/internal/config"
)

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// cachedResponse is what a catalog cache entry holds.  Only the content
// type is kept from the headers; cookies and the session header of the
// visitor who filled the entry must never reach another visitor.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

func (cr *cachedResponse) writeTo(c echo.Context) error {
    c.Response().Header().Set("X-Cache", "HIT")
    return c.Blob(cr.Status, cr.ContentType, cr.Body)
}

// responseRecorder forwards the response to the client and keeps a copy of
// the body.  Once the body outgrows limit the copy is dropped and the
// response is not cached.
type responseRecorder struct {
    http.ResponseWriter
    status   int
    body     bytes.Buffer
    limit    int
    overflow bool
}

func (r *responseRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && r.body.Len()+len(b) > r.limit {
            r.overflow = true
            r.body.Reset()
        } else {
            r.body.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// catalogKey names the entry of a catalog request: the prefix and a digest
// of the request path with its query in canonical (sorted) order.
func catalogKey(prefix string, r *http.Request) string {
    sum := sha1.Sum([]byte(r.URL.Path + "?" + r.URL.Query().Encode()))
    return prefix + ":" + hex.EncodeToString(sum[:])
}

func loadCached(ctx context.Context, rdb *redis.Client, key string) (*cachedResponse, bool) {
    bs, err := rdb.Get(ctx, key).Bytes()
    if err != nil {
        return nil, false
    }
    var cr cachedResponse
    if err := json.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
        return nil, false
    }
    return &cr, true
}

// NewRedisCache caches successful GET responses of the excursion catalog
// (search and details) in Redis for cfg.TTL.  A request sent with
// "Cache-Control: no-cache" skips the lookup and refreshes the entry.
// Without Redis the middleware does nothing.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if req.Method != http.MethodGet {
                return next(c)
            }
            ctx := req.Context()
            key := catalogKey(cfg.Prefix, req)

            if !strings.Contains(strings.ToLower(req.Header.Get("Cache-Control")), "no-cache") {
                if cr, ok := loadCached(ctx, rdb, key); ok {
                    return cr.writeTo(c)
                }
            }

            rec := &responseRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            bs, err := json.Marshal(cachedResponse{
                Status:      rec.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        rec.body.Bytes(),
            })
            if err == nil {
                err = rdb.Set(context.WithoutCancel(ctx), key, bs, ttl).Err()
            }
            if err != nil {
                c.Logger().Warnf("catalog cache: store %s: %v", key, err)
            }
            return nil
        }
    }
}

// InvalidateCache drops every cached catalog response.  It is called after a
// guide or an admin changed an excursion so visitors do not keep seeing the
// old version until the TTL runs out.
func InvalidateCache(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client) error {
    if rdb == nil {
        return nil
    }
    const batch = 200
    iter := rdb.Scan(ctx, 0, cfg.Prefix+":*", batch).Iterator()
    keys := make([]string, 0, batch)
    for iter.Next(ctx) {
        if keys = append(keys, iter.Val()); len(keys) < batch {
            continue
        }
        if err := rdb.Del(ctx, keys...).Err(); err != nil {
            return err
        }
        keys = keys[:0]
    }
    if err := iter.Err(); err != nil {
        return err
    }
    if len(keys) == 0 {
        return nil
    }
    return rdb.Del(ctx, keys...).Err()
}
