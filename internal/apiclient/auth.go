package apiclient

import (
    "context"
    "net/http"
    "net/url"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// Register creates an account.  Validation failures come back as a
// KindValidation error with one line per violated field.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
    var u model.User
    if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: reg}, &u); err != nil {
        return nil, err
    }
    return &u, nil
}

// Login exchanges email and password for an access token.  The backend
// expects an OAuth2 password form where the email is sent as username.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
    form := url.Values{}
    form.Set("username", email)
    form.Set("password", password)
    var tok model.AccessToken
    if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/jwt/login", form: form}, &tok); err != nil {
        return "", err
    }
    return tok.AccessToken, nil
}

// CurrentUser resolves the identity behind token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*model.User, error) {
    var u model.User
    if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", token: token}, &u); err != nil {
        return nil, err
    }
    return &u, nil
}

// UpdateCurrentUser applies a partial profile update and returns the full
// updated user.
func (c *Client) UpdateCurrentUser(ctx context.Context, token string, upd model.UserUpdate) (*model.User, error) {
    var u model.User
    if err := c.do(ctx, request{method: http.MethodPatch, path: "/users/me", token: token, body: upd}, &u); err != nil {
        return nil, err
    }
    return &u, nil
}
