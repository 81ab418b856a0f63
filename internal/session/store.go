// Package session holds the per-visitor authentication state: the backend
// access token and the user it resolves to.  A Store is created explicitly
// for each visitor session and passed to whoever needs it; there is no
// package-level session.
package session

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/labstack/gommon/log"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// TokenKey is the fixed name the token is persisted under.
const TokenKey = "authToken"

var (
    // ErrSuperseded is returned when the token changed while its identity
    // was being resolved; the late result was discarded.
    ErrSuperseded = errors.New("session: token changed during resolution")
    // ErrTokenExpired is returned when the token's exp claim is in the past.
    ErrTokenExpired = errors.New("session: token expired")
    // ErrNoToken is returned by Refresh on a logged-out session.
    ErrNoToken = errors.New("session: no token")
)

// TokenStore persists one token per session id beyond process lifetime.
// Load returns "" and no error when nothing is stored.
type TokenStore interface {
    Load(ctx context.Context, sid string) (string, error)
    Save(ctx context.Context, sid, token string) error
    Delete(ctx context.Context, sid string) error
}

// UserResolver resolves a token to the current user (GET /users/me).
type UserResolver interface {
    CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// Store is the session of one visitor.  All methods are safe for concurrent
// use.  Every token change bumps a generation counter; an identity resolution
// applies its result only if the generation it started under is still
// current, so a slow response can never overwrite newer state.
type Store struct {
    sid      string
    tokens   TokenStore
    resolver UserResolver
    now      func() time.Time

    mu       sync.Mutex
    token    string
    user     *model.User
    loading  bool
    gen      uint64
    lastSeen time.Time
}

// New builds an empty (logged-out) session.  Call Restore to pick up a
// persisted token.
func New(sid string, tokens TokenStore, resolver UserResolver) *Store {
    return &Store{sid: sid, tokens: tokens, resolver: resolver, now: time.Now, lastSeen: time.Now()}
}

// ID returns the session id.
func (s *Store) ID() string { return s.sid }

// Token returns the current token or "".
func (s *Store) Token() string {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.lastSeen = s.now()
    return s.token
}

// User returns the resolved user or nil.  The returned value is a copy.
func (s *Store) User() *model.User {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.user == nil {
        return nil
    }
    u := *s.user
    return &u
}

// Loading reports whether an identity resolution is in flight.
func (s *Store) Loading() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.loading
}

// Authenticated reports whether both token and user are present.
func (s *Store) Authenticated() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.token != "" && s.user != nil
}

// Restore reads the persisted token at startup and resolves it.  A missing
// token leaves the session logged out without error.
func (s *Store) Restore(ctx context.Context) error {
    tok, err := s.tokens.Load(ctx, s.sid)
    if err != nil {
        return fmt.Errorf("load token: %w", err)
    }
    if tok == "" {
        return nil
    }
    gen := s.setToken(tok)
    _, err = s.resolve(ctx, gen, tok)
    return err
}

// Login stores token, persists it and resolves the identity behind it.  On
// resolution failure the session falls back to logged out and the error is
// returned for display.
func (s *Store) Login(ctx context.Context, token string) (*model.User, error) {
    if err := s.tokens.Save(ctx, s.sid, token); err != nil {
        return nil, fmt.Errorf("persist token: %w", err)
    }
    gen := s.setToken(token)
    return s.resolve(ctx, gen, token)
}

// Refresh re-resolves the current token, e.g. after the backend reported 401.
func (s *Store) Refresh(ctx context.Context) (*model.User, error) {
    s.mu.Lock()
    tok, gen := s.token, s.gen
    s.mu.Unlock()
    if tok == "" {
        return nil, ErrNoToken
    }
    return s.resolve(ctx, gen, tok)
}

// Logout clears token and user immediately and removes the persisted token.
// Any resolution still in flight is invalidated.
func (s *Store) Logout(ctx context.Context) error {
    s.mu.Lock()
    s.gen++
    s.token = ""
    s.user = nil
    s.loading = false
    s.mu.Unlock()
    return s.tokens.Delete(ctx, s.sid)
}

// SetUser replaces the user wholesale, e.g. with the body returned by a
// profile update.  It is ignored on a logged-out session.
func (s *Store) SetUser(u *model.User) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.token == "" || u == nil {
        return
    }
    cp := *u
    s.user = &cp
}

func (s *Store) setToken(token string) uint64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.gen++
    s.token = token
    s.user = nil
    s.lastSeen = s.now()
    return s.gen
}

func (s *Store) resolve(ctx context.Context, gen uint64, token string) (*model.User, error) {
    if exp, ok := TokenExpiry(token); ok && !exp.After(s.now()) {
        s.heal(ctx, gen)
        return nil, ErrTokenExpired
    }

    s.mu.Lock()
    s.loading = true
    s.mu.Unlock()

    u, err := s.resolver.CurrentUser(ctx, token)

    s.mu.Lock()
    if s.gen != gen {
        s.mu.Unlock()
        return nil, ErrSuperseded
    }
    s.loading = false
    if err == nil {
        s.user = u
        s.mu.Unlock()
        return s.User(), nil
    }
    s.mu.Unlock()

    if errors.Is(err, context.Canceled) {
        return nil, err
    }
    log.Warnf("session %s: identity resolution failed, logging out: %v", s.sid, err)
    s.heal(ctx, gen)
    return nil, err
}

// heal forces the logged-out state after a failed resolution, unless the
// token has already moved on.
func (s *Store) heal(ctx context.Context, gen uint64) {
    s.mu.Lock()
    if s.gen != gen {
        s.mu.Unlock()
        return
    }
    s.gen++
    s.token = ""
    s.user = nil
    s.loading = false
    s.mu.Unlock()
    if err := s.tokens.Delete(context.WithoutCancel(ctx), s.sid); err != nil {
        log.Warnf("session %s: clear persisted token: %v", s.sid, err)
    }
}

func (s *Store) idleSince() time.Time {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.lastSeen
}
