package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/handler"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
)

// RegisterGuide registers the guide console.  Every signed-in user may ask
// whether they are a guide; the rest requires the guide role.
func RegisterGuide(e *echo.Echo, h *handler.GuideHandler) {
    e.GET("/v1/guide/check", h.Check, middleware.RequireAuth())

    g := e.Group("/v1/guide", middleware.RequireAuth(), middleware.RequireRole(middleware.RoleGuide))
    g.GET("/profile", h.Profile)
    g.PATCH("/profile", h.UpdateProfile)
    g.GET("/excursions", h.Excursions)
    g.POST("/excursions", h.CreateExcursion)
    g.PUT("/excursions/:id", h.UpdateExcursion)
    g.GET("/calendar", h.Calendar)
}

// RegisterAdmin registers the admin data provider for superusers.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler) {
    g := e.Group("/v1/admin", middleware.RequireAuth(), middleware.RequireRole(middleware.RoleAdmin))
    g.POST("/guides/:id/review", h.ReviewGuide)
    g.GET("/:resource", h.GetList)
    g.GET("/:resource/many", h.GetMany)
    g.GET("/:resource/:id", h.GetOne)
    g.PATCH("/:resource/:id", h.Update)
    g.DELETE("/:resource/:id", h.Delete)
}
