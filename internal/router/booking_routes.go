package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/handler"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
)

// RegisterBooking registers the booking flow and the bookings list.
//
// The flow routes do not require sign-in: a visitor may pick a party size,
// a date and a time anonymously, and submitting without a session is
// answered by the flow itself with the "sign in to book" message.  Submit
// and cancel are throttled by limit.
func RegisterBooking(e *echo.Echo, f *handler.FlowHandler, b *handler.BookingsHandler, limit echo.MiddlewareFunc) {
    flow := e.Group("/v1/excursions/:id/booking")
    flow.GET("", f.State)
    flow.PUT("/people", f.SetPeople)
    flow.POST("/refresh", f.Refresh)
    flow.PUT("/date", f.SelectDate)
    flow.PUT("/time", f.SelectTime)
    flow.POST("/submit", f.Submit, limit)

    my := e.Group("/v1/bookings", middleware.RequireAuth())
    my.GET("", b.List)
    my.POST("/:id/cancel", b.Cancel, limit)
}
