package handler

import (
    "net/http"
    "sort"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/config"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
    "github.com/iliyamo/excursion-storefront/internal/model"
)

// GuideHandler serves the guide console: profile, own excursions and the
// bookings made on them.
type GuideHandler struct {
    API   *apiclient.Client
    Cache config.CacheConfig
    Redis *redis.Client // may be nil
}

func NewGuideHandler(api *apiclient.Client, cache config.CacheConfig, rdb *redis.Client) *GuideHandler {
    return &GuideHandler{API: api, Cache: cache, Redis: rdb}
}

// guideDay is the bookings calendar entry of one day.
type guideDay struct {
    Date     string               `json:"date"`
    Bookings []model.GuideBooking `json:"bookings"`
    People   int                  `json:"people"`
}

const msgModeration = "Изменения отправлены на модерацию"

func token(c echo.Context) string { return middleware.SessionFrom(c).Token() }

// Check reports whether the signed-in user has a guide profile.  It is
// open to every signed-in user.
func (h *GuideHandler) Check(c echo.Context) error {
    ok, err := h.API.CheckGuide(c.Request().Context(), token(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, model.GuideCheck{IsGuide: ok})
}

func (h *GuideHandler) Profile(c echo.Context) error {
    g, err := h.API.GuideProfile(c.Request().Context(), token(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, g)
}

func (h *GuideHandler) UpdateProfile(c echo.Context) error {
    var req model.GuideUpdate
    if err := c.Bind(&req); err != nil {
        return badRequest(c, msgInvalidBody)
    }
    g, err := h.API.UpdateGuideProfile(c.Request().Context(), token(c), req)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, g)
}

func (h *GuideHandler) Excursions(c echo.Context) error {
    list, err := h.API.GuideExcursions(c.Request().Context(), token(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, list)
}

// CreateExcursion submits a new excursion; it starts in moderation.
func (h *GuideHandler) CreateExcursion(c echo.Context) error {
    var req model.ExcursionInput
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    ex, err := h.API.CreateGuideExcursion(c.Request().Context(), token(c), req)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"excursion": ex, "message": msgModeration})
}

// UpdateExcursion edits an excursion.  The backend sends an approved
// excursion back to pending_review; the response reflects that.  Cached
// catalog pages are dropped so the change is visible at once.
func (h *GuideHandler) UpdateExcursion(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    var req model.ExcursionInput
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    ctx := c.Request().Context()
    ex, err := h.API.UpdateGuideExcursion(ctx, token(c), id, req)
    if err != nil {
        return respondError(c, err)
    }
    if err := middleware.InvalidateCache(ctx, h.Cache, h.Redis); err != nil {
        c.Logger().Warnf("invalidate catalog cache: %v", err)
    }
    body := echo.Map{"excursion": ex}
    if ex.Status == model.ExcursionPendingReview {
        body["message"] = msgModeration
    }
    return c.JSON(http.StatusOK, body)
}

// Calendar returns the guide's bookings grouped by day, days ascending.
func (h *GuideHandler) Calendar(c echo.Context) error {
    list, err := h.API.GuideBookings(c.Request().Context(), token(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, groupByDay(list))
}

// groupByDay buckets bookings by the calendar day of their start.
// Cancelled bookings are listed but do not count towards People.
func groupByDay(list []model.GuideBooking) []guideDay {
    idx := map[string]int{}
    days := []guideDay{}
    for _, b := range list {
        day := b.Date
        if t, err := model.ParseInstant(b.Date); err == nil {
            day = t.Format("2006-01-02")
        } else if len(day) > 10 {
            day = day[:10]
        }
        i, ok := idx[day]
        if !ok {
            i = len(days)
            idx[day] = i
            days = append(days, guideDay{Date: day})
        }
        days[i].Bookings = append(days[i].Bookings, b)
        if b.Status.Active() {
            days[i].People += b.NumberOfPeople
        }
    }
    sort.Slice(days, func(a, b int) bool { return days[a].Date < days[b].Date })
    for _, d := range days {
        sort.SliceStable(d.Bookings, func(a, b int) bool { return d.Bookings[a].Date < d.Bookings[b].Date })
    }
    return days
}
