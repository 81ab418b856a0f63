package handler // declare the package name; contains HTTP handlers

import (
    "context"  // bounds the dependency probes
    "net/http" // net/http provides status codes and response helpers
    "time"     // probe timeout

    "github.com/labstack/echo/v4"  // echo is the web framework used for this project
    "github.com/redis/go-redis/v9" // optional session / cache store
)

// HealthHandler reports liveness and the state of the storefront's own
// dependencies.  The excursion backend is deliberately not probed: the
// storefront is up even when the backend is not, and says so per request.
type HealthHandler struct {
    Redis      *redis.Client // nil when running without Redis
    APIBaseURL string
}

func NewHealthHandler(rdb *redis.Client, apiBaseURL string) *HealthHandler {
    return &HealthHandler{Redis: rdb, APIBaseURL: apiBaseURL}
}

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports whether Redis answers.  Without Redis the storefront still
// works (sessions in memory, no cache or rate limit), so a missing client
// is "degraded", not a failure; a configured client that stopped answering
// is a 503.
func (h *HealthHandler) Ready(c echo.Context) error {
    body := echo.Map{"backend": h.APIBaseURL}
    if h.Redis == nil {
        body["redis"] = "disabled"
        body["status"] = "degraded"
        return c.JSON(http.StatusOK, body)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
    defer cancel()
    if err := h.Redis.Ping(ctx).Err(); err != nil {
        body["redis"] = "down"
        body["status"] = "unavailable"
        return c.JSON(http.StatusServiceUnavailable, body)
    }
    body["redis"] = "up"
    body["status"] = "ok"
    return c.JSON(http.StatusOK, body)
}
