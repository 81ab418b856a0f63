package apiclient

import (
    "context"
    "net/http"
    "net/url"
    "strconv"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// SearchExcursions lists approved excursions matching f.  Empty filter
// fields are not sent.
func (c *Client) SearchExcursions(ctx context.Context, f model.ExcursionFilter) ([]model.Excursion, error) {
    q := url.Values{}
    if f.Country != "" {
        q.Set("country", f.Country)
    }
    if f.City != "" {
        q.Set("city", f.City)
    }
    if f.Date != "" {
        q.Set("date", f.Date)
    }
    if f.People > 0 {
        q.Set("people", strconv.Itoa(f.People))
    }
    if f.HasChildren {
        q.Set("has_children", "true")
    }
    var out []model.Excursion
    if err := c.do(ctx, request{method: http.MethodGet, path: "/api/excursions", query: q}, &out); err != nil {
        return nil, err
    }
    if out == nil {
        out = []model.Excursion{}
    }
    return out, nil
}

// Excursion fetches one excursion.
func (c *Client) Excursion(ctx context.Context, id int64) (*model.Excursion, error) {
    var ex model.Excursion
    if err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/excursions/%s", id)}, &ex); err != nil {
        return nil, err
    }
    return &ex, nil
}

// AvailableSlots returns the time slots of excursion id computed by the
// backend for a party of people.
func (c *Client) AvailableSlots(ctx context.Context, id int64, people int) ([]model.TimeSlot, error) {
    q := url.Values{}
    if people > 0 {
        q.Set("people", strconv.Itoa(people))
    }
    var out model.AvailableDates
    if err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/excursions/%s/available-dates", id), query: q}, &out); err != nil {
        return nil, err
    }
    return out.TimeSlots, nil
}
