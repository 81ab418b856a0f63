package session

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// fakeResolver answers CurrentUser from a table and can be made to block
// until released, to simulate a slow /users/me.
type fakeResolver struct {
    mu      sync.Mutex
    users   map[string]*model.User
    calls   int
    gate    chan struct{}
    started chan struct{}
}

func (f *fakeResolver) CurrentUser(ctx context.Context, token string) (*model.User, error) {
    f.mu.Lock()
    f.calls++
    gate, started := f.gate, f.started
    u, ok := f.users[token]
    f.mu.Unlock()
    if started != nil {
        started <- struct{}{}
    }
    if gate != nil {
        <-gate
    }
    if !ok {
        return nil, errors.New("401")
    }
    return u, nil
}

func signed(t *testing.T, exp time.Time) string {
    t.Helper()
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "exp": exp.Unix()})
    s, err := tok.SignedString([]byte("not-the-backend-key"))
    if err != nil {
        t.Fatalf("sign: %v", err)
    }
    return s
}

func TestLogin_ResolvesAndPersists(t *testing.T) {
    tokens := NewMemoryTokenStore()
    res := &fakeResolver{users: map[string]*model.User{"tok-a": {ID: 1, Email: "a@example.com"}}}
    s := New("sid-1", tokens, res)

    u, err := s.Login(context.Background(), "tok-a")
    if err != nil {
        t.Fatalf("login: %v", err)
    }
    if u == nil || u.ID != 1 {
        t.Fatalf("expected user 1, got %+v", u)
    }
    if !s.Authenticated() {
        t.Fatalf("expected authenticated session")
    }
    if got, _ := tokens.Load(context.Background(), "sid-1"); got != "tok-a" {
        t.Fatalf("expected persisted token tok-a, got %q", got)
    }
}

func TestRestore_SurvivesRestart(t *testing.T) {
    tokens := NewMemoryTokenStore()
    res := &fakeResolver{users: map[string]*model.User{"tok-a": {ID: 7}}}
    _ = tokens.Save(context.Background(), "sid-1", "tok-a")

    s := New("sid-1", tokens, res)
    if err := s.Restore(context.Background()); err != nil {
        t.Fatalf("restore: %v", err)
    }
    if u := s.User(); u == nil || u.ID != 7 {
        t.Fatalf("expected restored user 7, got %+v", u)
    }
}

func TestRestore_NothingPersisted(t *testing.T) {
    res := &fakeResolver{}
    s := New("sid-1", NewMemoryTokenStore(), res)
    if err := s.Restore(context.Background()); err != nil {
        t.Fatalf("restore: %v", err)
    }
    if s.Token() != "" || s.User() != nil || res.calls != 0 {
        t.Fatalf("expected logged-out session and no resolver call")
    }
}

func TestLogin_InvalidTokenSelfHeals(t *testing.T) {
    tokens := NewMemoryTokenStore()
    s := New("sid-1", tokens, &fakeResolver{})

    if _, err := s.Login(context.Background(), "bogus"); err == nil {
        t.Fatalf("expected resolution error")
    }
    if s.Token() != "" || s.User() != nil {
        t.Fatalf("expected logged-out state after failed resolution")
    }
    if got, _ := tokens.Load(context.Background(), "sid-1"); got != "" {
        t.Fatalf("expected persisted token removed, got %q", got)
    }
}

func TestLogin_ExpiredJWTSkipsNetwork(t *testing.T) {
    res := &fakeResolver{}
    s := New("sid-1", NewMemoryTokenStore(), res)

    _, err := s.Login(context.Background(), signed(t, time.Now().Add(-time.Hour)))
    if !errors.Is(err, ErrTokenExpired) {
        t.Fatalf("expected ErrTokenExpired, got %v", err)
    }
    if res.calls != 0 {
        t.Fatalf("expected no resolver call, got %d", res.calls)
    }
    if s.Token() != "" {
        t.Fatalf("expected token cleared")
    }
}

func TestLogout_DiscardsInFlightResolution(t *testing.T) {
    res := &fakeResolver{
        users:   map[string]*model.User{"tok-a": {ID: 1}},
        gate:    make(chan struct{}),
        started: make(chan struct{}, 1),
    }
    s := New("sid-1", NewMemoryTokenStore(), res)

    done := make(chan error, 1)
    go func() {
        _, err := s.Login(context.Background(), "tok-a")
        done <- err
    }()

    <-res.started
    if !s.Loading() {
        t.Fatalf("expected loading while resolution is in flight")
    }
    if err := s.Logout(context.Background()); err != nil {
        t.Fatalf("logout: %v", err)
    }
    close(res.gate)

    if err := <-done; !errors.Is(err, ErrSuperseded) {
        t.Fatalf("expected ErrSuperseded, got %v", err)
    }
    if s.User() != nil || s.Token() != "" {
        t.Fatalf("late /users/me response must not resurrect the session")
    }
}

func TestLogin_NewerTokenWins(t *testing.T) {
    res := &fakeResolver{
        users:   map[string]*model.User{"tok-a": {ID: 1}, "tok-b": {ID: 2}},
        gate:    make(chan struct{}),
        started: make(chan struct{}, 2),
    }
    gate := res.gate
    s := New("sid-1", NewMemoryTokenStore(), res)

    first := make(chan error, 1)
    go func() {
        _, err := s.Login(context.Background(), "tok-a")
        first <- err
    }()
    <-res.started

    res.mu.Lock()
    res.gate, res.started = nil, nil
    res.mu.Unlock()
    u, err := s.Login(context.Background(), "tok-b")
    if err != nil || u.ID != 2 {
        t.Fatalf("expected user 2, got %+v / %v", u, err)
    }

    close(gate)
    if err := <-first; !errors.Is(err, ErrSuperseded) {
        t.Fatalf("expected first login superseded, got %v", err)
    }
    if got := s.User(); got == nil || got.ID != 2 {
        t.Fatalf("expected user 2 to remain, got %+v", got)
    }
}

func TestSetUser(t *testing.T) {
    res := &fakeResolver{users: map[string]*model.User{"tok-a": {ID: 1, Name: "Old"}}}
    s := New("sid-1", NewMemoryTokenStore(), res)

    s.SetUser(&model.User{ID: 1, Name: "Ignored"})
    if s.User() != nil {
        t.Fatalf("expected SetUser to be ignored while logged out")
    }

    if _, err := s.Login(context.Background(), "tok-a"); err != nil {
        t.Fatalf("login: %v", err)
    }
    s.SetUser(&model.User{ID: 1, Name: "New"})
    if got := s.User(); got.Name != "New" {
        t.Fatalf("expected replaced user, got %+v", got)
    }
}

func TestTokenExpiry(t *testing.T) {
    exp := time.Now().Add(time.Hour).Truncate(time.Second)
    got, ok := TokenExpiry(signed(t, exp))
    if !ok || !got.Equal(exp) {
        t.Fatalf("expected %v, got %v (ok=%v)", exp, got, ok)
    }
    if _, ok := TokenExpiry("opaque-token"); ok {
        t.Fatalf("expected ok=false for non-JWT token")
    }
}
