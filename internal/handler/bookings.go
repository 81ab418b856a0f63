package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/bookings"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
    "github.com/iliyamo/excursion-storefront/internal/model"
    "github.com/iliyamo/excursion-storefront/internal/service"
)

// BookingsHandler serves the "my bookings" page.
type BookingsHandler struct {
    Bookings *service.Bookings
}

func NewBookingsHandler(b *service.Bookings) *BookingsHandler {
    return &BookingsHandler{Bookings: b}
}

type bookingView struct {
    model.Booking
    StatusLabel string `json:"status_label"`
}

type bookingsResp struct {
    Active    []bookingView `json:"active"`
    Cancelled []bookingView `json:"cancelled"`
}

type cancelReq struct {
    Confirm bool `json:"confirm"`
}

func views(items []model.Booking) []bookingView {
    out := make([]bookingView, 0, len(items))
    for _, b := range items {
        out = append(out, bookingView{Booking: b, StatusLabel: b.Status.Label()})
    }
    return out
}

func partition(items []model.Booking) bookingsResp {
    return bookingsResp{Active: views(bookings.Active(items)), Cancelled: views(bookings.Cancelled(items))}
}

// List reloads the visitor's bookings and returns them split into active
// and cancelled.
func (h *BookingsHandler) List(c echo.Context) error {
    l, err := h.Bookings.Load(c.Request().Context(), middleware.SessionFrom(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, partition(l.Items()))
}

// Cancel cancels one booking.  The browser must have asked the visitor
// first and send {"confirm": true}; without it the answer is 428 carrying
// the question to ask, and nothing reaches the backend.
func (h *BookingsHandler) Cancel(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    var req cancelReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, msgInvalidBody)
    }
    sess := middleware.SessionFrom(c)
    confirm := bookings.ConfirmFunc(func(string) bool { return req.Confirm })

    updated, err := h.Bookings.Cancel(c.Request().Context(), sess, id, confirm)
    switch {
    case errors.Is(err, bookings.ErrDeclined):
        return c.JSON(http.StatusPreconditionRequired, echo.Map{"error": bookings.MsgConfirmCancel, "confirm": bookings.MsgConfirmCancel})
    case errors.Is(err, bookings.ErrUnknownBooking):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, bookings.ErrAlreadyCancelled):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case err != nil:
        return respondError(c, err)
    }
    items := h.Bookings.List(sess).Items()
    return c.JSON(http.StatusOK, echo.Map{
        "booking":  bookingView{Booking: *updated, StatusLabel: updated.Status.Label()},
        "bookings": partition(items),
    })
}
