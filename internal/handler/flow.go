package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/booking"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
    "github.com/iliyamo/excursion-storefront/internal/service"
)

// FlowHandler exposes the booking flow of the visitor on one excursion.
// Every endpoint answers with the flow snapshot, so the browser renders
// whatever state it gets back.
type FlowHandler struct {
    Flows *service.Flows
}

func NewFlowHandler(flows *service.Flows) *FlowHandler {
    return &FlowHandler{Flows: flows}
}

type peopleReq struct {
    People      int  `json:"people" validate:"required,gte=1"`
    HasChildren bool `json:"has_children"`
}

type dateReq struct {
    Date string `json:"date" validate:"required"`
}

type timeReq struct {
    Time string `json:"time" validate:"required"`
}

func (h *FlowHandler) controller(c echo.Context) (*booking.Controller, bool) {
    id, ok := pathID(c, "id")
    if !ok {
        return nil, false
    }
    return h.Flows.Get(middleware.SessionFrom(c), id), true
}

// State returns the current snapshot.  A flow that never loaded
// availability loads it first.
func (h *FlowHandler) State(c echo.Context) error {
    ctl, ok := h.controller(c)
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    if ctl.Snapshot().State == booking.Idle {
        _ = ctl.RefreshAvailability(c.Request().Context())
    }
    return c.JSON(http.StatusOK, ctl.Snapshot())
}

// SetPeople changes the party size and reloads availability for it.
func (h *FlowHandler) SetPeople(c echo.Context) error {
    ctl, ok := h.controller(c)
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    var req peopleReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    if err := ctl.SetPeople(req.People); err != nil {
        return badRequest(c, err.Error())
    }
    ctl.SetHasChildren(req.HasChildren)
    err := ctl.RefreshAvailability(c.Request().Context())
    return h.answer(c, ctl, err)
}

// Refresh reloads availability for the current party size.
func (h *FlowHandler) Refresh(c echo.Context) error {
    ctl, ok := h.controller(c)
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    return h.answer(c, ctl, ctl.RefreshAvailability(c.Request().Context()))
}

// SelectDate picks a date with availability.
func (h *FlowHandler) SelectDate(c echo.Context) error {
    ctl, ok := h.controller(c)
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    var req dateReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    return h.answer(c, ctl, ctl.SelectDate(req.Date))
}

// SelectTime picks a time of the selected date.
func (h *FlowHandler) SelectTime(c echo.Context) error {
    ctl, ok := h.controller(c)
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    var req timeReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    return h.answer(c, ctl, ctl.SelectTime(req.Time))
}

// Submit books the selected slot.
func (h *FlowHandler) Submit(c echo.Context) error {
    ctl, ok := h.controller(c)
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    _, err := ctl.Submit(c.Request().Context())
    return h.answer(c, ctl, err)
}

// answer renders the snapshot with a status derived from err.  The
// snapshot's error field already holds the text to show.
func (h *FlowHandler) answer(c echo.Context, ctl *booking.Controller, err error) error {
    snap := ctl.Snapshot()
    switch {
    case err == nil, errors.Is(err, booking.ErrStaleAvailability):
        return c.JSON(http.StatusOK, snap)
    case errors.Is(err, booking.ErrSignInRequired):
        return c.JSON(http.StatusUnauthorized, snap)
    case errors.Is(err, booking.ErrNoDate), errors.Is(err, booking.ErrNoTime),
        errors.Is(err, booking.ErrDateUnavailable), errors.Is(err, booking.ErrTimeUnavailable):
        if snap.Error == "" {
            snap.Error = err.Error()
        }
        return c.JSON(http.StatusUnprocessableEntity, snap)
    }
    status := http.StatusBadGateway
    if re := asRequestError(err); re != nil {
        status = statusFor(re)
        if re.Kind == apiclient.KindUnauthorized {
            _ = middleware.SessionFrom(c).Logout(c.Request().Context())
        }
    }
    return c.JSON(status, snap)
}
