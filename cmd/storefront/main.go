package main // Entry point package

import (
    "context"   // shutdown deadline
    "net/http"  // server errors
    "os"        // signal source
    "os/signal" // graceful shutdown on SIGINT/SIGTERM
    "syscall"   // SIGTERM
    "time"      // sweep and shutdown intervals

    "github.com/labstack/echo/v4"                   // Echo web framework
    echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware (recover, request log, CORS)
    "github.com/labstack/gommon/log"                // structured logger shared with echo

    "github.com/iliyamo/excursion-storefront/internal/apiclient"  // excursion backend client
    "github.com/iliyamo/excursion-storefront/internal/config"     // env configuration and Redis
    "github.com/iliyamo/excursion-storefront/internal/handler"    // HTTP handlers
    "github.com/iliyamo/excursion-storefront/internal/middleware" // storefront middleware
    "github.com/iliyamo/excursion-storefront/internal/router"     // route registration
    "github.com/iliyamo/excursion-storefront/internal/service"    // flows, bookings, admin, publisher
    "github.com/iliyamo/excursion-storefront/internal/session"    // session store
)

func main() {
    cfg := config.Load() // Load environment config
    e := echo.New()      // Create Echo instance
    e.HideBanner = true
    e.Logger.SetLevel(log.INFO)
    if cfg.Env == "dev" {
        e.Logger.SetLevel(log.DEBUG)
    }
    e.Validator = handler.NewValidator()

    // Redis is optional: without it sessions live in memory and the catalog
    // cache and booking rate limit are off.
    rdb := config.NewRedisClient()
    var tokens session.TokenStore
    if rdb != nil {
        tokens = session.NewRedisTokenStore(rdb, "session", cfg.SessionTTL)
    } else {
        e.Logger.Warn("redis unavailable: sessions kept in memory, cache and rate limit disabled")
        tokens = session.NewMemoryTokenStore()
    }

    api := apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.APITimeout))
    sessions := session.NewManager(tokens, api)
    pub := &service.AMQPPublisher{URL: cfg.RabbitURL}
    flows := service.NewFlows(api, pub, cfg.Location)
    bookings := service.NewBookings(api, pub)
    cacheCfg := config.LoadCacheConfig()

    e.Use(echomw.Recover())
    e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:  true,
        LogURI:     true,
        LogStatus:  true,
        LogLatency: true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
            return nil
        },
    }))
    e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
        AllowOrigins:     cfg.AllowedOrigins,
        AllowCredentials: true,
        ExposeHeaders:    []string{middleware.SessionHeader, "Retry-After"},
    }))
    e.Use(middleware.Bearer(api))
    e.Use(middleware.Session(sessions, middleware.SessionConfig{
        Cookie: cfg.SessionCookie,
        TTL:    cfg.SessionTTL,
        Secure: cfg.Env == "prod",
    }))

    router.RegisterRoutes(e, handler.NewHealthHandler(rdb, api.BaseURL()))
    router.RegisterAuth(e, handler.NewAuthHandler(api, flows, bookings))
    router.RegisterCatalog(e, handler.NewCatalogHandler(api), middleware.NewRedisCache(cacheCfg, rdb))
    router.RegisterBooking(e, handler.NewFlowHandler(flows), handler.NewBookingsHandler(bookings),
        middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    router.RegisterGuide(e, handler.NewGuideHandler(api, cacheCfg, rdb))
    router.RegisterAdmin(e, handler.NewAdminHandler(service.NewAdmin(api), cacheCfg, rdb))

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    // Drop idle in-memory state; persisted tokens stay in Redis.
    go func() {
        t := time.NewTicker(time.Minute)
        defer t.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-t.C:
                n := sessions.Sweep(cfg.SessionIdle) + flows.Sweep(cfg.SessionIdle) + bookings.Sweep(cfg.SessionIdle)
                if n > 0 {
                    e.Logger.Debugf("swept %d idle sessions, flows and bookings lists", n)
                }
            }
        }
    }()

    addr := ":" + cfg.Port // Address string with port
    e.Logger.Infof("listening on %s (env=%s, backend=%s)", addr, cfg.Env, cfg.APIBaseURL)
    go func() {
        if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
            e.Logger.Fatal(err) // Log and exit if server fails
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        e.Logger.Error(err)
    }
    if rdb != nil {
        _ = rdb.Close()
    }
}
