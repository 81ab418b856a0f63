package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
    "github.com/iliyamo/excursion-storefront/internal/model"
    "github.com/iliyamo/excursion-storefront/internal/service"
)

// AuthHandler bundles dependencies for account endpoints: registration,
// login, logout and the profile of the signed-in user.
type AuthHandler struct {
    API      *apiclient.Client
    Flows    *service.Flows
    Bookings *service.Bookings
}

func NewAuthHandler(api *apiclient.Client, flows *service.Flows, bookings *service.Bookings) *AuthHandler {
    return &AuthHandler{API: api, Flows: flows, Bookings: bookings}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email" form:"username" validate:"required"`
    Password string `json:"password" form:"password" validate:"required"`
}

type profileReq struct {
    Name        *string `json:"name" validate:"omitempty,min=2,max=50"`
    Phone       *string `json:"phone" validate:"omitempty,e164"`
    OldPassword string  `json:"old_password"`
    NewPassword *string `json:"new_password" validate:"omitempty,min=8"`
}

type sessionResp struct {
    Authenticated bool        `json:"authenticated"`
    Loading       bool        `json:"loading"`
    User          *model.User `json:"user"`
}

const (
    msgRegistered      = "Регистрация прошла успешно. Теперь войдите в личный кабинет"
    msgOldPasswordNeed = "Введите текущий пароль, чтобы задать новый"
    msgOldPasswordBad  = "Текущий пароль указан неверно"
    msgProfileSaved    = "Данные профиля сохранены"
    msgNothingToUpdate = "Нет изменений для сохранения"
)

// Register forwards a registration to the backend.  The visitor is not
// signed in automatically, matching the backend's flow.
func (h *AuthHandler) Register(c echo.Context) error {
    var req model.Registration
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))

    u, err := h.API.Register(c.Request().Context(), req)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"user": u, "message": msgRegistered})
}

// Login exchanges credentials for a backend token and binds it to the
// visitor's session.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    ctx := c.Request().Context()
    token, err := h.API.Login(ctx, strings.TrimSpace(req.Email), req.Password)
    if err != nil {
        return respondError(c, err)
    }
    st := middleware.SessionFrom(c)
    // A new sign-in on the same session must not see the previous user's
    // selections or bookings.
    h.Flows.Forget(st.ID())
    h.Bookings.Forget(st.ID())
    u, err := st.Login(ctx, token)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, sessionResp{Authenticated: true, User: u})
}

// Logout clears the session and everything bound to it.  It always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
    st := middleware.SessionFrom(c)
    if err := st.Logout(c.Request().Context()); err != nil {
        c.Logger().Warnf("logout %s: %v", st.ID(), err)
    }
    h.Flows.Forget(st.ID())
    h.Bookings.Forget(st.ID())
    return c.NoContent(http.StatusNoContent)
}

// Session reports the session state without requiring sign-in.
func (h *AuthHandler) Session(c echo.Context) error {
    st := middleware.SessionFrom(c)
    return c.JSON(http.StatusOK, sessionResp{
        Authenticated: st.Authenticated(),
        Loading:       st.Loading(),
        User:          st.User(),
    })
}

// Me returns the signed-in user, re-resolved from the backend so profile
// changes made elsewhere show up.
func (h *AuthHandler) Me(c echo.Context) error {
    u, err := middleware.SessionFrom(c).Refresh(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// UpdateMe applies a partial profile update.  A password change requires
// the current password, which is checked by signing in with it; only then
// is the update sent.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
    var req profileReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, err)
    }
    upd := model.UserUpdate{Name: req.Name, Phone: req.Phone, Password: req.NewPassword}
    if upd.Empty() {
        return badRequest(c, msgNothingToUpdate)
    }

    ctx := c.Request().Context()
    st := middleware.SessionFrom(c)
    if upd.Password != nil {
        if req.OldPassword == "" {
            return badRequest(c, msgOldPasswordNeed)
        }
        if _, err := h.API.Login(ctx, st.User().Email, req.OldPassword); err != nil {
            if apiclient.KindOf(err) == apiclient.KindConnectivity {
                return respondError(c, err)
            }
            return badRequest(c, msgOldPasswordBad)
        }
    }

    u, err := h.API.UpdateCurrentUser(ctx, st.Token(), upd)
    if err != nil {
        return respondError(c, err)
    }
    st.SetUser(u)
    return c.JSON(http.StatusOK, echo.Map{"user": u, "message": msgProfileSaved})
}
