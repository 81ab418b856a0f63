package apiclient

import (
    "context"
    "net/http"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// GuideProfile returns the guide profile of the token's owner.
func (c *Client) GuideProfile(ctx context.Context, token string) (*model.Guide, error) {
    var g model.Guide
    if err := c.do(ctx, request{method: http.MethodGet, path: "/api/guides/me", token: token}, &g); err != nil {
        return nil, err
    }
    return &g, nil
}

// UpdateGuideProfile patches the guide profile (currently only the photo).
func (c *Client) UpdateGuideProfile(ctx context.Context, token string, upd model.GuideUpdate) (*model.Guide, error) {
    var g model.Guide
    if err := c.do(ctx, request{method: http.MethodPatch, path: "/api/guides/me", token: token, body: upd}, &g); err != nil {
        return nil, err
    }
    return &g, nil
}

// CheckGuide reports whether the token's owner has a guide profile.
func (c *Client) CheckGuide(ctx context.Context, token string) (bool, error) {
    var out model.GuideCheck
    if err := c.do(ctx, request{method: http.MethodGet, path: "/api/guides/check", token: token}, &out); err != nil {
        return false, err
    }
    return out.IsGuide, nil
}

// GuideExcursions lists the guide's own excursions in every status.
func (c *Client) GuideExcursions(ctx context.Context, token string) ([]model.Excursion, error) {
    var out []model.Excursion
    if err := c.do(ctx, request{method: http.MethodGet, path: "/api/guides/me/excursions", token: token}, &out); err != nil {
        return nil, err
    }
    if out == nil {
        out = []model.Excursion{}
    }
    return out, nil
}

// CreateGuideExcursion submits a new excursion for moderation.
func (c *Client) CreateGuideExcursion(ctx context.Context, token string, in model.ExcursionInput) (*model.Excursion, error) {
    var ex model.Excursion
    if err := c.do(ctx, request{method: http.MethodPost, path: "/api/guides/me/excursions", token: token, body: in}, &ex); err != nil {
        return nil, err
    }
    return &ex, nil
}

// UpdateGuideExcursion edits one of the guide's excursions.
func (c *Client) UpdateGuideExcursion(ctx context.Context, token string, id int64, in model.ExcursionInput) (*model.Excursion, error) {
    var ex model.Excursion
    if err := c.do(ctx, request{method: http.MethodPatch, path: pathf("/api/guides/me/excursions/%s", id), token: token, body: in}, &ex); err != nil {
        return nil, err
    }
    return &ex, nil
}

// GuideBookings lists active bookings on the guide's excursions, ascending
// by date.
func (c *Client) GuideBookings(ctx context.Context, token string) ([]model.GuideBooking, error) {
    var out []model.GuideBooking
    if err := c.do(ctx, request{method: http.MethodGet, path: "/api/guides/me/bookings", token: token}, &out); err != nil {
        return nil, err
    }
    if out == nil {
        out = []model.GuideBooking{}
    }
    return out, nil
}
