// Package service wires the storefront's stateful pieces together: the
// per-session booking flows and bookings lists, and the publication of
// booking activity to the message broker.
package service

import (
    "context"
    "encoding/json"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/excursion-storefront/internal/queue"
)

// EventPublisher sends booking activity events.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.BookingEvent) error
}

// AMQPPublisher publishes to the booking.activity queue on RabbitMQ.  It
// opens a connection per event; booking activity is rare enough that a
// pooled channel is not worth the reconnect handling.
type AMQPPublisher struct {
    URL string
}

// Publish sends ev as a persistent JSON message.  Errors are logged and
// returned so the caller can choose to ignore them; a broker outage never
// affects the booking itself, which the backend has already recorded.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Warnf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warnf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queue.ActivityQueue, // name
        true,                // durable
        false,               // autoDelete
        false,               // exclusive
        false,               // noWait
        nil,                 // args
    ); err != nil {
        log.Warnf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                  // default exchange
        queue.ActivityQueue, // routing key = queue name
        false,               // mandatory
        false,               // immediate
        pub,
    ); err != nil {
        log.Warnf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// publishTimeout bounds a background publication.
const publishTimeout = 5 * time.Second

// publishAsync hands ev to pub without blocking the request that caused it.
func publishAsync(pub EventPublisher, ev queue.BookingEvent) {
    if pub == nil {
        return
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
        defer cancel()
        if err := pub.Publish(ctx, ev); err != nil {
            log.Warnf("booking activity %s for booking %d not published: %v", ev.Type, ev.BookingID, err)
        }
    }()
}
