package middleware

import (
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/session"
)

// sessionKey is the echo context key holding the *session.Store.
const sessionKey = "session"

// SessionHeader lets non-browser clients carry the session id without
// cookies.  The id is echoed back on every response.
const SessionHeader = "X-Session-ID"

// SessionConfig describes the session cookie.
type SessionConfig struct {
    Cookie string
    TTL    time.Duration
    Secure bool
}

// Session attaches the visitor's session to the request.  The id is taken
// from the cookie, then from the X-Session-ID header; when neither carries a
// valid id a new session is started and the cookie is set.  A session put
// in place by an earlier middleware (Bearer) is left alone.
func Session(mgr *session.Manager, cfg SessionConfig) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := c.Get(sessionKey).(*session.Store); ok {
                return next(c)
            }

            sid := ""
            if ck, err := c.Cookie(cfg.Cookie); err == nil && validID(ck.Value) {
                sid = ck.Value
            } else if h := c.Request().Header.Get(SessionHeader); validID(h) {
                sid = h
            }
            if sid == "" {
                sid = session.NewID()
            }
            // Refresh the cookie on every request so its expiry slides.
            c.SetCookie(&http.Cookie{
                Name:     cfg.Cookie,
                Value:    sid,
                Path:     "/",
                MaxAge:   int(cfg.TTL / time.Second),
                HttpOnly: true,
                Secure:   cfg.Secure,
                SameSite: http.SameSiteLaxMode,
            })
            c.Response().Header().Set(SessionHeader, sid)

            c.Set(sessionKey, mgr.Open(c.Request().Context(), sid))
            return next(c)
        }
    }
}

// SessionFrom returns the session attached by Session or Bearer.  It panics
// when neither middleware ran, which is a routing bug.
func SessionFrom(c echo.Context) *session.Store {
    return c.Get(sessionKey).(*session.Store)
}

func validID(s string) bool {
    _, err := uuid.Parse(s)
    return s != "" && err == nil
}
