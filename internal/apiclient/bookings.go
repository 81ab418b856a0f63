package apiclient

import (
    "context"
    "errors"
    "net/http"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// CreateBooking submits a booking.  The backend answers 400 only when the
// slot has no room left for the party, so a 400 here is reported as
// KindCapacity even if the message wording is unfamiliar.
func (c *Client) CreateBooking(ctx context.Context, token string, req model.BookingRequest) (*model.BookingConfirmation, error) {
    var out model.BookingConfirmation
    err := c.do(ctx, request{method: http.MethodPost, path: "/api/bookings", token: token, body: req}, &out)
    if err != nil {
        var re *RequestError
        if errors.As(err, &re) && re.Status == http.StatusBadRequest && re.Kind == KindOther {
            re.Kind = KindCapacity
        }
        return nil, err
    }
    return &out, nil
}

// MyBookings lists the bookings of the token's owner, newest first.
func (c *Client) MyBookings(ctx context.Context, token string) ([]model.Booking, error) {
    var out []model.Booking
    if err := c.do(ctx, request{method: http.MethodGet, path: "/api/bookings/me", token: token}, &out); err != nil {
        return nil, err
    }
    if out == nil {
        out = []model.Booking{}
    }
    return out, nil
}

// CancelBooking cancels a booking and returns the backend's representation
// of it after the transition.
func (c *Client) CancelBooking(ctx context.Context, token string, id int64) (*model.Booking, error) {
    var out model.Booking
    if err := c.do(ctx, request{method: http.MethodPost, path: pathf("/api/bookings/%s/cancel", id), token: token}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}
