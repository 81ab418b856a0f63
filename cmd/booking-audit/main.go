// Command booking-audit consumes booking activity events from RabbitMQ and
// appends them to the booking log.
package main

import (
    "context"
    "errors"
    "os"
    "os/signal"
    "syscall"

    "github.com/labstack/gommon/log"

    "github.com/iliyamo/excursion-storefront/internal/config"
    "github.com/iliyamo/excursion-storefront/internal/queue"
)

func main() {
    cfg := config.Load()
    log.SetHeader("${time_rfc3339} ${level} booking-audit")

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    c := &queue.Consumer{URL: cfg.RabbitURL, LogPath: cfg.AuditLogPath}
    log.Infof("consuming %s into %s", queue.ActivityQueue, cfg.AuditLogPath)
    if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
        log.Fatal(err)
    }
}
