package service

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/model"
)

// Admin resources.
const (
    ResourceUsers         = "users"
    ResourceGuides        = "guides"
    ResourcePendingGuides = "pendingGuides"
    ResourceExcursions    = "excursions"
    ResourceBookings      = "bookings"
)

var (
    // ErrUnknownResource is returned for a resource the operation does not
    // support.
    ErrUnknownResource = errors.New("Неизвестный раздел")
    // ErrNotFound is returned by GetOne when the record is absent.
    ErrNotFound = errors.New(apiclient.MsgNotFound)
)

// ListResult is the getList answer of the admin panel's data provider.
type ListResult struct {
    Data  any `json:"data"`
    Total int `json:"total"`
}

// ListParams narrows a getList call.  Status applies to excursions only.
type ListParams struct {
    Status model.ExcursionStatus
}

// Admin implements the admin panel's data-provider contract (getList,
// getOne, getMany, update, delete) on top of the backend's /api/admin
// endpoints.
type Admin struct {
    API *apiclient.Client
}

func NewAdmin(api *apiclient.Client) *Admin {
    return &Admin{API: api}
}

// GetList returns every record of resource.
func (a *Admin) GetList(ctx context.Context, token, resource string, p ListParams) (*ListResult, error) {
    var (
        data any
        n    int
        err  error
    )
    switch resource {
    case ResourceUsers:
        var v []model.User
        v, err = a.API.AdminUsers(ctx, token)
        data, n = v, len(v)
    case ResourceGuides:
        var v []model.AdminGuide
        v, err = a.API.AdminGuides(ctx, token)
        data, n = v, len(v)
    case ResourcePendingGuides:
        var v []model.AdminGuide
        v, err = a.API.AdminPendingGuides(ctx, token)
        data, n = v, len(v)
    case ResourceExcursions:
        var v []model.Excursion
        v, err = a.API.AdminExcursions(ctx, token, p.Status)
        data, n = v, len(v)
    case ResourceBookings:
        var v []model.AdminBooking
        v, err = a.API.AdminBookings(ctx, token)
        data, n = v, len(v)
    default:
        return nil, ErrUnknownResource
    }
    if err != nil {
        return nil, err
    }
    return &ListResult{Data: data, Total: n}, nil
}

// GetOne returns one record.  Guides have no single-record endpoint, so the
// list is searched by guide id.
func (a *Admin) GetOne(ctx context.Context, token, resource string, id int64) (any, error) {
    switch resource {
    case ResourceUsers:
        return a.API.AdminUser(ctx, token, id)
    case ResourceGuides:
        guides, err := a.API.AdminGuides(ctx, token)
        if err != nil {
            return nil, err
        }
        for i := range guides {
            if guides[i].ID == id {
                return &guides[i], nil
            }
        }
        return nil, ErrNotFound
    case ResourceExcursions:
        return a.API.AdminExcursion(ctx, token, id)
    case ResourceBookings:
        return a.API.AdminBooking(ctx, token, id)
    }
    return nil, ErrUnknownResource
}

// GetMany returns the users with the given ids, in list order.  Only users
// are referenced from other resources, so only users are supported.
func (a *Admin) GetMany(ctx context.Context, token, resource string, ids []int64) ([]model.User, error) {
    if resource != ResourceUsers {
        return nil, ErrUnknownResource
    }
    users, err := a.API.AdminUsers(ctx, token)
    if err != nil {
        return nil, err
    }
    want := make(map[int64]bool, len(ids))
    for _, id := range ids {
        want[id] = true
    }
    out := []model.User{}
    for _, u := range users {
        if want[u.ID] {
            out = append(out, u)
        }
    }
    return out, nil
}

// Update applies patch (the raw JSON of changed fields) to one record.
func (a *Admin) Update(ctx context.Context, token, resource string, id int64, patch json.RawMessage) (any, error) {
    switch resource {
    case ResourceUsers:
        var upd model.AdminUserUpdate
        if err := json.Unmarshal(patch, &upd); err != nil {
            return nil, fmt.Errorf("decode user patch: %w", err)
        }
        return a.API.AdminUpdateUser(ctx, token, id, upd)
    case ResourceExcursions:
        var fields map[string]any
        if err := json.Unmarshal(patch, &fields); err != nil {
            return nil, fmt.Errorf("decode excursion patch: %w", err)
        }
        return a.API.AdminUpdateExcursion(ctx, token, id, fields)
    }
    return nil, ErrUnknownResource
}

// Delete removes one record.  Only excursions can be deleted.
func (a *Admin) Delete(ctx context.Context, token, resource string, id int64) error {
    if resource != ResourceExcursions {
        return ErrUnknownResource
    }
    return a.API.AdminDeleteExcursion(ctx, token, id)
}

// ReviewGuide approves or rejects a guide application.
func (a *Admin) ReviewGuide(ctx context.Context, token string, userID int64, approved bool, reason string) (*apiclient.GuideDecision, error) {
    return a.API.AdminApproveGuide(ctx, token, userID, approved, reason)
}
