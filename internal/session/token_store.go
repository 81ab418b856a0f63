package session

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps tokens in Redis under "<prefix>:<sid>:authToken"
// with a sliding TTL, so a visitor stays signed in across storefront
// restarts and across storefront instances.
type RedisTokenStore struct {
    rdb    *redis.Client
    prefix string
    ttl    time.Duration
}

// NewRedisTokenStore builds a store.  A zero ttl keeps tokens until logout.
func NewRedisTokenStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisTokenStore {
    if prefix == "" {
        prefix = "session"
    }
    return &RedisTokenStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisTokenStore) key(sid string) string {
    return r.prefix + ":" + sid + ":" + TokenKey
}

// Load returns the stored token and refreshes its TTL.
func (r *RedisTokenStore) Load(ctx context.Context, sid string) (string, error) {
    tok, err := r.rdb.Get(ctx, r.key(sid)).Result()
    if errors.Is(err, redis.Nil) {
        return "", nil
    }
    if err != nil {
        return "", err
    }
    if r.ttl > 0 {
        _ = r.rdb.Expire(ctx, r.key(sid), r.ttl).Err()
    }
    return tok, nil
}

func (r *RedisTokenStore) Save(ctx context.Context, sid, token string) error {
    return r.rdb.Set(ctx, r.key(sid), token, r.ttl).Err()
}

func (r *RedisTokenStore) Delete(ctx context.Context, sid string) error {
    return r.rdb.Del(ctx, r.key(sid)).Err()
}

// MemoryTokenStore is the fallback used when Redis is unreachable; tokens
// then live only as long as the process.
type MemoryTokenStore struct {
    mu     sync.Mutex
    tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
    return &MemoryTokenStore{tokens: map[string]string{}}
}

func (m *MemoryTokenStore) Load(_ context.Context, sid string) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.tokens[sid], nil
}

func (m *MemoryTokenStore) Save(_ context.Context, sid, token string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.tokens[sid] = token
    return nil
}

func (m *MemoryTokenStore) Delete(_ context.Context, sid string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.tokens, sid)
    return nil
}
