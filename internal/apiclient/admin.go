package apiclient

import (
    "context"
    "net/http"
    "net/url"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// The admin endpoints back the generic back-office data provider.  They all
// require a superuser token.

func (c *Client) AdminUsers(ctx context.Context, token string) ([]model.User, error) {
    var out []model.User
    err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/users", token: token}, &out)
    return out, err
}

func (c *Client) AdminUser(ctx context.Context, token string, id int64) (*model.User, error) {
    var out model.User
    if err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/admin/users/%s", id), token: token}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, token string, id int64, upd model.AdminUserUpdate) (*model.User, error) {
    var out model.User
    if err := c.do(ctx, request{method: http.MethodPatch, path: pathf("/api/admin/users/%s", id), token: token, body: upd}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

func (c *Client) AdminGuides(ctx context.Context, token string) ([]model.AdminGuide, error) {
    var out []model.AdminGuide
    err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/guides", token: token}, &out)
    return out, err
}

// AdminPendingGuides lists users who asked to become guides and have no
// guide profile yet.
func (c *Client) AdminPendingGuides(ctx context.Context, token string) ([]model.AdminGuide, error) {
    var out []model.AdminGuide
    err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/guides/pending", token: token}, &out)
    return out, err
}

func (c *Client) AdminGuide(ctx context.Context, token string, id int64) (*model.AdminGuide, error) {
    var out model.AdminGuide
    if err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/admin/guides/%s", id), token: token}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

// GuideDecision is the outcome of reviewing a guide application.
type GuideDecision struct {
    Success bool   `json:"success"`
    Message string `json:"message"`
}

// AdminApproveGuide approves or rejects the guide application of userID.
func (c *Client) AdminApproveGuide(ctx context.Context, token string, userID int64, approved bool, reason string) (*GuideDecision, error) {
    body := struct {
        Approved bool    `json:"approved"`
        Reason   *string `json:"reason,omitempty"`
    }{Approved: approved}
    if reason != "" {
        body.Reason = &reason
    }
    var out GuideDecision
    if err := c.do(ctx, request{method: http.MethodPost, path: pathf("/api/admin/guides/%s/approve", userID), token: token, body: body}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

// AdminExcursions lists every excursion, optionally restricted to status.
func (c *Client) AdminExcursions(ctx context.Context, token string, status model.ExcursionStatus) ([]model.Excursion, error) {
    q := url.Values{}
    if status != "" {
        q.Set("status", string(status))
    }
    var out []model.Excursion
    err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/excursions", query: q, token: token}, &out)
    return out, err
}

func (c *Client) AdminExcursion(ctx context.Context, token string, id int64) (*model.Excursion, error) {
    var out model.Excursion
    if err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/admin/excursions/%s", id), token: token}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

// AdminUpdateExcursion forwards an arbitrary partial update; the admin form
// may touch status as well as catalog fields.
func (c *Client) AdminUpdateExcursion(ctx context.Context, token string, id int64, patch map[string]any) (*model.Excursion, error) {
    var out model.Excursion
    if err := c.do(ctx, request{method: http.MethodPatch, path: pathf("/api/admin/excursions/%s", id), token: token, body: patch}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

func (c *Client) AdminDeleteExcursion(ctx context.Context, token string, id int64) error {
    return c.do(ctx, request{method: http.MethodDelete, path: pathf("/api/admin/excursions/%s", id), token: token}, nil)
}

func (c *Client) AdminBookings(ctx context.Context, token string) ([]model.AdminBooking, error) {
    var out []model.AdminBooking
    err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/bookings", token: token}, &out)
    return out, err
}

func (c *Client) AdminBooking(ctx context.Context, token string, id int64) (*model.AdminBooking, error) {
    var out model.AdminBooking
    if err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/admin/bookings/%s", id), token: token}, &out); err != nil {
        return nil, err
    }
    return &out, nil
}
