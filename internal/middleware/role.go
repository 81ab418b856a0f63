package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/excursion-storefront/internal/apiclient" // user-facing messages
    "github.com/iliyamo/excursion-storefront/internal/model"     // user flags
)

// Roles derived from the backend's user flags.
const (
    RoleUser  = "user"
    RoleGuide = "guide"
    RoleAdmin = "admin"
)

// RequireAuth aborts with 401 unless the session holds both a token and a
// resolved user.  The resolved user is stored in the context under "user"
// and its id under "user_id" for later middleware.
func RequireAuth() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            st := SessionFrom(c)
            u := st.User()
            if st.Token() == "" || u == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": apiclient.MsgSignInRequired})
            }
            c.Set("user", u)
            c.Set("role", roleOf(u))
            return next(c)
        }
    }
}

// RequireRole returns a middleware function that enforces that the signed-in
// user has one of the specified roles.  An admin passes every gate.  It
// assumes RequireAuth ran before it.  If the user's role is not in the
// allowed set, the request is aborted with a 403 Forbidden response.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant‑time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || (role != RoleAdmin && !allowed[role]) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": apiclient.MsgAccessDenied})
            }
            return next(c)
        }
    }
}

// roleOf maps the backend's boolean flags to a single role.
func roleOf(u *model.User) string {
    switch {
    case u.IsSuperuser:
        return RoleAdmin
    case u.IsGuide:
        return RoleGuide
    }
    return RoleUser
}
