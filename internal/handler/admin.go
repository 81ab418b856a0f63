package handler

import (
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/excursion-storefront/internal/config"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
    "github.com/iliyamo/excursion-storefront/internal/model"
    "github.com/iliyamo/excursion-storefront/internal/service"
)

// AdminHandler exposes the admin data provider over HTTP:
//
//  GET    /admin/:resource            getList (?status= for excursions)
//  GET    /admin/:resource/many       getMany (?ids=1,2,3)
//  GET    /admin/:resource/:id        getOne
//  PATCH  /admin/:resource/:id        update
//  DELETE /admin/:resource/:id        delete
//  POST   /admin/guides/:id/review    approve or reject a guide
type AdminHandler struct {
    Admin *service.Admin
    Cache config.CacheConfig
    Redis *redis.Client // may be nil
}

func NewAdminHandler(a *service.Admin, cache config.CacheConfig, rdb *redis.Client) *AdminHandler {
    return &AdminHandler{Admin: a, Cache: cache, Redis: rdb}
}

type reviewReq struct {
    Approved bool   `json:"approved"`
    Reason   string `json:"reason"`
}

func (h *AdminHandler) fail(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrUnknownResource):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    }
    return respondError(c, err)
}

func (h *AdminHandler) GetList(c echo.Context) error {
    p := service.ListParams{Status: model.ExcursionStatus(c.QueryParam("status"))}
    res, err := h.Admin.GetList(c.Request().Context(), token(c), c.Param("resource"), p)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetOne(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    rec, err := h.Admin.GetOne(c.Request().Context(), token(c), c.Param("resource"), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": rec})
}

func (h *AdminHandler) GetMany(c echo.Context) error {
    var ids []int64
    for _, s := range strings.Split(c.QueryParam("ids"), ",") {
        if s = strings.TrimSpace(s); s == "" {
            continue
        }
        id, err := strconv.ParseInt(s, 10, 64)
        if err != nil {
            return badRequest(c, msgInvalidID)
        }
        ids = append(ids, id)
    }
    users, err := h.Admin.GetMany(c.Request().Context(), token(c), c.Param("resource"), ids)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": users})
}

// Update forwards the changed fields.  Excursion changes drop the catalog
// cache.
func (h *AdminHandler) Update(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    raw, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
    if err != nil || !json.Valid(raw) {
        return badRequest(c, msgInvalidBody)
    }
    resource := c.Param("resource")
    ctx := c.Request().Context()
    rec, err := h.Admin.Update(ctx, token(c), resource, id, raw)
    if err != nil {
        return h.fail(c, err)
    }
    if resource == service.ResourceExcursions {
        h.invalidate(c)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": rec})
}

func (h *AdminHandler) Delete(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    if err := h.Admin.Delete(c.Request().Context(), token(c), c.Param("resource"), id); err != nil {
        return h.fail(c, err)
    }
    h.invalidate(c)
    return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"id": id}})
}

// ReviewGuide approves or rejects the guide application of user :id.
func (h *AdminHandler) ReviewGuide(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, msgInvalidID)
    }
    var req reviewReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, msgInvalidBody)
    }
    out, err := h.Admin.ReviewGuide(c.Request().Context(), token(c), id, req.Approved, req.Reason)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) invalidate(c echo.Context) {
    if err := middleware.InvalidateCache(c.Request().Context(), h.Cache, h.Redis); err != nil {
        c.Logger().Warnf("invalidate catalog cache: %v", err)
    }
}
