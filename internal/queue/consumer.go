package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer listens to the booking.activity queue and appends one line per
// event to a log file.
type Consumer struct {
    URL     string // broker URL
    LogPath string // e.g. logs/booking.log
}

// Run connects to RabbitMQ, declares the activity queue (durable), and
// consumes messages until ctx is cancelled.  Broker outages are retried with
// exponential backoff capped at 30s; a message that cannot be processed is
// rejected without requeue so one bad payload cannot stall the queue.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Warnf("booking-audit: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warnf("booking-audit: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warnf("booking-audit: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(ActivityQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(ActivityQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.Body); err != nil {
                log.Errorf("booking-audit: handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends its log line.
func (c *Consumer) Handle(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.BookingID == 0 {
        return fmt.Errorf("incomplete event: type=%q booking_id=%d", ev.Type, ev.BookingID)
    }
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single human-readable log line.
func FormatLine(ev BookingEvent) string {
    verb := "Booking created"
    if ev.Type == BookingCancelled {
        verb = "Booking cancelled"
    }
    return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | email=%q | excursion_id=%d | excursion=%q | starts_at=%s | people=%d | status=%s | total=%.2f\n",
        ev.OccurredAt, verb, ev.BookingID, ev.UserID, ev.UserEmail, ev.ExcursionID, ev.ExcursionTitle, ev.StartsAt, ev.People, ev.Status, ev.TotalAmount)
}
