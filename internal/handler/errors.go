package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/middleware"
    "github.com/iliyamo/excursion-storefront/internal/session"
)

// respondError writes err as an echo.Map{"error": ...} body.  Gateway errors
// already carry a translated, display-safe message; anything else is logged
// and replaced by a generic one.  A 401 from the backend means the session's
// token is no longer good, so the session is logged out on the way.
func respondError(c echo.Context, err error) error {
    if errors.Is(err, context.Canceled) {
        return c.NoContent(statusClientClosedRequest)
    }

    if errors.Is(err, session.ErrTokenExpired) || errors.Is(err, session.ErrNoToken) || errors.Is(err, session.ErrSuperseded) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": apiclient.MsgSignInRequired, "kind": apiclient.KindUnauthorized.String()})
    }

    var re *apiclient.RequestError
    if !errors.As(err, &re) {
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": apiclient.MsgServer})
    }
    if re.Err != nil {
        c.Logger().Warnf("%s %s: backend %s: %v", c.Request().Method, c.Path(), re.Kind, re.Err)
    }

    if re.Kind == apiclient.KindUnauthorized {
        if err := middleware.SessionFrom(c).Logout(c.Request().Context()); err != nil {
            c.Logger().Warnf("logout after 401: %v", err)
        }
    }

    body := echo.Map{"error": re.Message, "kind": re.Kind.String()}
    if len(re.Fields) > 0 {
        body["fields"] = re.Fields
    }
    return c.JSON(statusFor(re), body)
}

// statusClientClosedRequest is the nginx convention for a client that went
// away before the answer was ready.
const statusClientClosedRequest = 499

func statusFor(re *apiclient.RequestError) int {
    switch re.Kind {
    case apiclient.KindConnectivity, apiclient.KindServer:
        return http.StatusBadGateway
    case apiclient.KindValidation:
        return http.StatusUnprocessableEntity
    case apiclient.KindCapacity:
        return http.StatusConflict
    case apiclient.KindUnauthorized:
        return http.StatusUnauthorized
    case apiclient.KindForbidden:
        return http.StatusForbidden
    case apiclient.KindNotFound:
        return http.StatusNotFound
    }
    if re.Status >= 400 && re.Status < 500 {
        return re.Status
    }
    return http.StatusBadRequest
}

// badRequest answers a malformed storefront request.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

const (
    msgInvalidBody = "Некорректный запрос"
    msgInvalidID   = "Некорректный идентификатор"
)

func asRequestError(err error) *apiclient.RequestError {
    var re *apiclient.RequestError
    if errors.As(err, &re) {
        return re
    }
    return nil
}
