package router // package router defines how HTTP routes are registered for the storefront

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/excursion-storefront/internal/handler"    // HTTP handlers (presentation layer)
    "github.com/iliyamo/excursion-storefront/internal/middleware" // session, role, cache and rate-limit middleware
)

// RegisterRoutes registers the probes.  They bypass nothing: the session
// middleware is global, but probes never read the session.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
    // Liveness: the process answers.
    e.GET("/healthz", handler.Health)
    // Readiness: the process and its Redis answer.
    e.GET("/readyz", h.Ready)
}

// RegisterAuth registers account routes.  Registration, login, logout and
// the session probe live under /v1/auth and need no sign-in; the profile
// routes under /v1/me require a signed-in session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/logout", a.Logout)
    g.GET("/session", a.Session)

    me := e.Group("/v1/me", middleware.RequireAuth())
    me.GET("", a.Me)
    me.PATCH("", a.UpdateMe)
}

// RegisterCatalog registers the public excursion catalog.  Search and
// details go through the response cache; available dates never do, they
// change with every booking and must come from the backend each time.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
    e.GET("/v1/excursions", h.Search, cache)
    e.GET("/v1/excursions/:id", h.Get, cache)
    e.GET("/v1/excursions/:id/available-dates", h.AvailableDates)
}
