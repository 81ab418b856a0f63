package model

import (
    "fmt"
    "time"
)

// BookingStatus is the lifecycle state of a booking.  Transitions happen only
// on the backend; the storefront reflects whatever status it reports.
type BookingStatus string

const (
    BookingPending   BookingStatus = "pending"
    BookingConfirmed BookingStatus = "confirmed"
    BookingCancelled BookingStatus = "cancelled"
)

// Active reports whether the booking still holds seats.
func (s BookingStatus) Active() bool {
    return s == BookingPending || s == BookingConfirmed
}

// CanTransition reports whether the backend may move a booking from s to
// next.  Cancelled is terminal.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
    switch s {
    case BookingPending:
        return next == BookingConfirmed || next == BookingCancelled
    case BookingConfirmed:
        return next == BookingCancelled
    }
    return false
}

// Label returns the text shown next to a booking.
func (s BookingStatus) Label() string {
    switch s {
    case BookingConfirmed:
        return "Подтверждено"
    case BookingPending:
        return "Ожидает подтверждения"
    case BookingCancelled:
        return "Отменено"
    }
    return string(s)
}

// Booking is a reservation as listed by GET /api/bookings/me.  The excursion
// and price fields are snapshots taken by the backend when the list is built.
//
// Fields:
//  ID             – booking_id.
//  ExcursionID    – booked excursion.
//  Date           – single instant of the tour as sent by the backend.
//  NumberOfPeople – party size.
//  Status         – pending, confirmed or cancelled.
//  PaymentStatus  – payment state (pending, paid).
//  TotalAmount    – price_per_person * number_of_people computed server side.
type Booking struct {
    ID               int64         `json:"booking_id"`
    ExcursionID      int64         `json:"excursion_id"`
    Date             string        `json:"date"`
    NumberOfPeople   int           `json:"number_of_people"`
    Status           BookingStatus `json:"status"`
    PaymentStatus    string        `json:"payment_status"`
    ExcursionTitle   string        `json:"excursion_title,omitempty"`
    ExcursionCity    string        `json:"excursion_city,omitempty"`
    ExcursionCountry string        `json:"excursion_country,omitempty"`
    ExcursionPhoto   *string       `json:"excursion_photo,omitempty"`
    PricePerPerson   float64       `json:"price_per_person,omitempty"`
    TotalAmount      float64       `json:"total_amount,omitempty"`
}

// StartsAt parses Date.  The backend stores naive UTC datetimes, so values
// without an offset are read as UTC.
func (b Booking) StartsAt() (time.Time, error) {
    return ParseInstant(b.Date)
}

// BookingRequest is the body of POST /api/bookings.
type BookingRequest struct {
    ExcursionID    int64  `json:"excursion_id"`
    Date           string `json:"date"`
    NumberOfPeople int    `json:"number_of_people"`
    HasChildren    bool   `json:"has_children"`
}

// BookingConfirmation is the response of POST /api/bookings.
type BookingConfirmation struct {
    Booking Booking `json:"booking"`
    Message string  `json:"message"`
}

var instantLayouts = []string{
    time.RFC3339Nano,
    "2006-01-02T15:04:05.999999",
    "2006-01-02T15:04:05",
    "2006-01-02 15:04:05",
    "2006-01-02T15:04",
}

// ParseInstant parses the datetime formats the backend emits.
func ParseInstant(s string) (time.Time, error) {
    for _, layout := range instantLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t, nil
        }
    }
    return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}
