package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "crypto/sha256"  // derives a stable session id from the token
    "encoding/hex"   // hex encoding of the derived id
    "net/http"       // HTTP status codes for responses
    "strings"        // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/excursion-storefront/internal/apiclient" // user-facing messages
    "github.com/iliyamo/excursion-storefront/internal/session"   // session store
)

// Bearer lets API clients that already hold a backend access token skip the
// cookie session.  When the request carries "Authorization: Bearer <token>"
// the middleware builds a request-scoped session around that token and
// resolves its user, so the rest of the chain sees an ordinary signed-in
// session.  The token is not verified here (the storefront does not know the
// backend's signing key); an expired JWT is rejected without a backend call,
// anything else is checked by GET /users/me.
func Bearer(resolver session.UserResolver) echo.MiddlewareFunc {
    // The outer function returns a middleware function.  Echo executes this
    // once when registering the middleware.
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        // The returned handler is invoked for each incoming HTTP request.
        return func(c echo.Context) error {
            // Requests without a bearer header continue to the cookie session.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return next(c)
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": apiclient.MsgSignInRequired})
            }

            // The same token always maps to the same session id, so booking
            // flows survive across requests of one API client.
            sum := sha256.Sum256([]byte(raw))
            st := session.New("bearer-"+hex.EncodeToString(sum[:8]), session.NewMemoryTokenStore(), resolver)
            if _, err := st.Login(c.Request().Context(), raw); err != nil {
                c.Logger().Debugf("bearer session rejected: %v", err)
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": apiclient.MsgSignInRequired})
            }
            c.Set(sessionKey, st)
            return next(c)
        }
    }
}
