package middleware

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/config"
    "github.com/iliyamo/excursion-storefront/internal/model"
    "github.com/iliyamo/excursion-storefront/internal/session"
)

type resolver map[string]*model.User

func (r resolver) CurrentUser(ctx context.Context, token string) (*model.User, error) {
    if u, ok := r[token]; ok {
        return u, nil
    }
    return nil, errors.New("unauthorized")
}

func newEcho(mgr *session.Manager, res session.UserResolver, guard ...echo.MiddlewareFunc) *echo.Echo {
    e := echo.New()
    e.Use(Bearer(res))
    e.Use(Session(mgr, SessionConfig{Cookie: "sid", TTL: time.Hour}))
    e.GET("/whoami", func(c echo.Context) error {
        st := SessionFrom(c)
        return c.JSON(http.StatusOK, echo.Map{"sid": st.ID(), "auth": st.Authenticated()})
    }, guard...)
    return e
}

func TestSession_IssuesAndReusesCookie(t *testing.T) {
    mgr := session.NewManager(session.NewMemoryTokenStore(), resolver{})
    e := newEcho(mgr, resolver{})

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
    sid := rec.Header().Get(SessionHeader)
    if !validID(sid) {
        t.Fatalf("expected a new uuid session id, got %q", sid)
    }
    cookies := rec.Result().Cookies()
    if len(cookies) != 1 || cookies[0].Value != sid || !cookies[0].HttpOnly {
        t.Fatalf("expected http-only session cookie, got %+v", cookies)
    }

    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if got := rec.Header().Get(SessionHeader); got != sid {
        t.Fatalf("expected session %s reused, got %s", sid, got)
    }
}

func TestSession_RestoresPersistedToken(t *testing.T) {
    tokens := session.NewMemoryTokenStore()
    sid := session.NewID()
    _ = tokens.Save(context.Background(), sid, "tok")
    res := resolver{"tok": {ID: 1}}
    mgr := session.NewManager(tokens, res)
    e := newEcho(mgr, res, RequireAuth())

    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    req.Header.Set(SessionHeader, sid)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200 for restored session, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestRequireAuth_Anonymous(t *testing.T) {
    mgr := session.NewManager(session.NewMemoryTokenStore(), resolver{})
    e := newEcho(mgr, resolver{}, RequireAuth())

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("expected 401, got %d", rec.Code)
    }
}

func TestRequireRole(t *testing.T) {
    res := resolver{
        "user":  {ID: 1},
        "guide": {ID: 2, IsGuide: true},
        "admin": {ID: 3, IsSuperuser: true},
    }
    mgr := session.NewManager(session.NewMemoryTokenStore(), res)
    e := newEcho(mgr, res, RequireAuth(), RequireRole(RoleGuide))

    cases := map[string]int{"user": http.StatusForbidden, "guide": http.StatusOK, "admin": http.StatusOK}
    for tok, want := range cases {
        req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
        req.Header.Set("Authorization", "Bearer "+tok)
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        if rec.Code != want {
            t.Fatalf("%s: expected %d, got %d", tok, want, rec.Code)
        }
    }
}

func TestBearer_RejectsExpiredToken(t *testing.T) {
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
    raw, _ := tok.SignedString([]byte("k"))
    res := resolver{raw: {ID: 1}}
    e := newEcho(session.NewManager(session.NewMemoryTokenStore(), res), res)

    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    req.Header.Set("Authorization", "Bearer "+raw)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("expected 401 for expired bearer token, got %d", rec.Code)
    }
}

func TestNoRedis_PassThrough(t *testing.T) {
    e := echo.New()
    e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
        NewRedisCache(config.CacheConfig{Enabled: true}, nil),
        NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
    if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
        t.Fatalf("expected untouched response, got %d %v", rec.Code, rec.Header())
    }
}

func TestBearer_BuildsStableSessionPerToken(t *testing.T) {
    res := resolver{"tok-a": {ID: 1}, "tok-b": {ID: 2}}
    e := newEcho(session.NewManager(session.NewMemoryTokenStore(), res), res, RequireAuth())

    whoami := func(tok string) map[string]any {
        req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
        req.Header.Set("Authorization", "Bearer "+tok)
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        if rec.Code != http.StatusOK {
            t.Fatalf("%s: expected 200, got %d: %s", tok, rec.Code, rec.Body.String())
        }
        if len(rec.Result().Cookies()) != 0 {
            t.Fatalf("%s: expected no session cookie for bearer requests", tok)
        }
        out := map[string]any{}
        if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
            t.Fatalf("decode: %v", err)
        }
        return out
    }

    a1, a2, b := whoami("tok-a"), whoami("tok-a"), whoami("tok-b")
    sid, _ := a1["sid"].(string)
    if !strings.HasPrefix(sid, "bearer-") || a1["auth"] != true {
        t.Fatalf("expected authenticated bearer session, got %v", a1)
    }
    if a2["sid"] != sid {
        t.Fatalf("expected the same session for the same token, got %v and %v", sid, a2["sid"])
    }
    if b["sid"] == sid {
        t.Fatalf("expected different sessions for different tokens")
    }
}

func TestBearer_RejectsUnknownToken(t *testing.T) {
    res := resolver{}
    e := newEcho(session.NewManager(session.NewMemoryTokenStore(), res), res)

    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    req.Header.Set("Authorization", "Bearer nope")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("expected 401, got %d", rec.Code)
    }
}

func TestCatalogKey(t *testing.T) {
    key := func(target string) string {
        return catalogKey("catalog", httptest.NewRequest(http.MethodGet, target, nil))
    }
    if key("/v1/excursions/1") == key("/v1/excursions/2") {
        t.Fatalf("expected different excursions to get different keys")
    }
    if key("/v1/excursions?city=Rome&people=2") != key("/v1/excursions?people=2&city=Rome") {
        t.Fatalf("expected query order not to matter")
    }
    if key("/v1/excursions?city=Rome") == key("/v1/excursions?city=Oslo") {
        t.Fatalf("expected the query to be part of the key")
    }
    if k := key("/v1/excursions"); !strings.HasPrefix(k, "catalog:") {
        t.Fatalf("expected prefixed key, got %q", k)
    }
}

func TestResponseRecorder_DropsOversizedBody(t *testing.T) {
    rec := &responseRecorder{ResponseWriter: httptest.NewRecorder(), limit: 4}
    _, _ = rec.Write([]byte("abc"))
    if rec.overflow || rec.body.String() != "abc" {
        t.Fatalf("expected body kept, got %q overflow=%v", rec.body.String(), rec.overflow)
    }
    _, _ = rec.Write([]byte("de"))
    if !rec.overflow || rec.body.Len() != 0 {
        t.Fatalf("expected overflow and dropped copy, got %q overflow=%v", rec.body.String(), rec.overflow)
    }
    if got := rec.ResponseWriter.(*httptest.ResponseRecorder).Body.String(); got != "abcde" {
        t.Fatalf("expected full body forwarded, got %q", got)
    }
}

func TestCachedResponse_WriteTo(t *testing.T) {
    e := echo.New()
    rec := httptest.NewRecorder()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

    cr := &cachedResponse{Status: http.StatusOK, ContentType: echo.MIMEApplicationJSON, Body: []byte(`[]`)}
    if err := cr.writeTo(c); err != nil {
        t.Fatalf("write: %v", err)
    }
    if rec.Code != http.StatusOK || rec.Body.String() != "[]" || rec.Header().Get("X-Cache") != "HIT" {
        t.Fatalf("unexpected hit response %d %q %v", rec.Code, rec.Body.String(), rec.Header())
    }
    if rec.Header().Get(echo.HeaderContentType) != echo.MIMEApplicationJSON {
        t.Fatalf("expected content type restored, got %q", rec.Header().Get(echo.HeaderContentType))
    }
}

func TestRateKey(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/bookings/1/cancel", nil), httptest.NewRecorder())
    c.SetPath("/v1/bookings/:id/cancel")

    if got := rateKey("rl", c); got != "rl:anon:POST /v1/bookings/:id/cancel" {
        t.Fatalf("unexpected key without session %q", got)
    }

    st := session.New("sid-1", session.NewMemoryTokenStore(), resolver{"tok": {ID: 9}})
    c.Set(sessionKey, st)
    if got := rateKey("rl", c); got != "rl:ssid-1:POST /v1/bookings/:id/cancel" {
        t.Fatalf("unexpected anonymous key %q", got)
    }
    if _, err := st.Login(context.Background(), "tok"); err != nil {
        t.Fatalf("login: %v", err)
    }
    if got := rateKey("rl", c); got != "rl:u9:POST /v1/bookings/:id/cancel" {
        t.Fatalf("unexpected signed-in key %q", got)
    }
}
