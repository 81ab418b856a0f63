package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/availability"
    "github.com/iliyamo/excursion-storefront/internal/model"
)

// CatalogHandler serves the public excursion catalog.  Responses are plain
// pass-through of the backend with the availability answer additionally
// grouped by date; these routes sit behind the Redis response cache.
type CatalogHandler struct {
    API *apiclient.Client
}

func NewCatalogHandler(api *apiclient.Client) *CatalogHandler {
    return &CatalogHandler{API: api}
}

type availabilityResp struct {
    ExcursionID    int64                    `json:"excursion_id"`
    People         int                      `json:"people"`
    Dates          []availability.DateGroup `json:"dates"`
    AvailableDates []string                 `json:"available_dates"`
}

// Search lists approved excursions matching the query
// (country, city, date, people, has_children).
func (h *CatalogHandler) Search(c echo.Context) error {
    var f model.ExcursionFilter
    if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
        return badRequest(c, msgInvalidBody)
    }
    list, err := h.API.SearchExcursions(c.Request().Context(), f)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, list)
}

// Get returns one excursion.
func (h *CatalogHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    ex, err := h.API.Excursion(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, ex)
}

// AvailableDates returns the slots of an excursion for ?people=N grouped by
// date.  It is stateless; the booking flow endpoints keep their own copy.
func (h *CatalogHandler) AvailableDates(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    people := 1
    if v := c.QueryParam("people"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            return badRequest(c, msgInvalidBody)
        }
        people = n
    }
    slots, err := h.API.AvailableSlots(c.Request().Context(), id, people)
    if err != nil {
        return respondError(c, err)
    }
    vm := availability.New(people, slots)
    return c.JSON(http.StatusOK, availabilityResp{
        ExcursionID:    id,
        People:         people,
        Dates:          vm.GroupedByDate(),
        AvailableDates: vm.AvailableDates(),
    })
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
    id, err := strconv.ParseInt(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}
