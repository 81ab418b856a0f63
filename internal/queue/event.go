// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into the booking activity log.
package queue

import (
    "time"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// ActivityQueue is the durable queue booking activity is published to.
const ActivityQueue = "booking.activity"

// Activity kinds.
const (
    BookingCreated   = "booking.created"
    BookingCancelled = "booking.cancelled"
)

// BookingEvent is published by the storefront after the backend confirmed
// a booking or a cancellation.  It carries enough of the booking and the
// visitor for the audit consumer to write a self-contained log line without
// calling back into the backend.
type BookingEvent struct {
    Type           string  `json:"type"`
    BookingID      int64   `json:"booking_id"`
    ExcursionID    int64   `json:"excursion_id"`
    ExcursionTitle string  `json:"excursion_title,omitempty"`
    UserID         int64   `json:"user_id"`
    UserEmail      string  `json:"user_email,omitempty"`
    StartsAt       string  `json:"starts_at"`
    People         int     `json:"number_of_people"`
    Status         string  `json:"status"`
    TotalAmount    float64 `json:"total_amount,omitempty"`
    SessionID      string  `json:"session_id,omitempty"`
    OccurredAt     string  `json:"occurred_at"`
}

// NewBookingEvent builds an event of kind typ for booking b made by u.  u
// may be nil when the session lost its user in the meantime.
func NewBookingEvent(typ string, b model.Booking, u *model.User, sid string) BookingEvent {
    ev := BookingEvent{
        Type:           typ,
        BookingID:      b.ID,
        ExcursionID:    b.ExcursionID,
        ExcursionTitle: b.ExcursionTitle,
        StartsAt:       b.Date,
        People:         b.NumberOfPeople,
        Status:         string(b.Status),
        TotalAmount:    b.TotalAmount,
        SessionID:      sid,
        OccurredAt:     time.Now().UTC().Format(time.RFC3339),
    }
    if u != nil {
        ev.UserID = u.ID
        ev.UserEmail = u.Email
    }
    return ev
}
