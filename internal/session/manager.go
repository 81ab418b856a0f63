package session

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"
)

// Manager keeps the live Store of every visitor session in this process and
// restores persisted sessions on first use.
type Manager struct {
    tokens   TokenStore
    resolver UserResolver

    mu     sync.Mutex
    stores map[string]*managed
}

// managed is a Store plus a channel closed once its first Restore returned.
type managed struct {
    store    *Store
    restored chan struct{}
}

func NewManager(tokens TokenStore, resolver UserResolver) *Manager {
    return &Manager{tokens: tokens, resolver: resolver, stores: map[string]*managed{}}
}

// NewID returns a fresh session id.
func NewID() string { return uuid.NewString() }

// Open returns the Store for sid, creating and restoring it when this
// process has not seen the session yet.  Concurrent requests on a session
// that is still being restored wait for the restore (or for their own ctx),
// so none of them observes a signed-out session that is about to sign in.
// A restore failure is not fatal: the session simply starts logged out.
func (m *Manager) Open(ctx context.Context, sid string) *Store {
    m.mu.Lock()
    if e, ok := m.stores[sid]; ok {
        m.mu.Unlock()
        select {
        case <-e.restored:
        case <-ctx.Done():
        }
        return e.store
    }
    e := &managed{store: New(sid, m.tokens, m.resolver), restored: make(chan struct{})}
    m.stores[sid] = e
    m.mu.Unlock()

    _ = e.store.Restore(ctx)
    close(e.restored)
    return e.store
}

// Close logs the session out and forgets it.
func (m *Manager) Close(ctx context.Context, sid string) error {
    m.mu.Lock()
    e, ok := m.stores[sid]
    delete(m.stores, sid)
    m.mu.Unlock()
    if !ok {
        return m.tokens.Delete(ctx, sid)
    }
    return e.store.Logout(ctx)
}

// Sweep drops in-memory sessions idle for longer than maxIdle.  Persisted
// tokens are kept, so a returning visitor is restored by the next Open.
// Sessions still being restored are left alone.
func (m *Manager) Sweep(maxIdle time.Duration) int {
    cutoff := time.Now().Add(-maxIdle)
    m.mu.Lock()
    defer m.mu.Unlock()
    n := 0
    for sid, e := range m.stores {
        select {
        case <-e.restored:
        default:
            continue
        }
        if e.store.idleSince().Before(cutoff) {
            delete(m.stores, sid)
            n++
        }
    }
    return n
}
