// Package apiclient is the gateway to the excursion backend.  Every exported
// method maps one domain operation onto exactly one HTTP call and returns
// either the decoded body or a *RequestError carrying a user-facing message.
// The client holds no credentials: authenticated methods take the bearer
// token as an argument.
package apiclient

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/google/uuid"
)

// maxResponseBytes caps how much of a response body is read into memory.
const maxResponseBytes = 8 << 20

// Client issues requests against one backend base URL.
type Client struct {
    baseURL string
    http    *http.Client
    newID   func() string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (tests inject
// httptest transports through this).
func WithHTTPClient(hc *http.Client) Option {
    return func(c *Client) {
        if hc != nil {
            c.http = hc
        }
    }
}

// WithTimeout bounds every request.  Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
    return func(c *Client) { c.http.Timeout = d }
}

// New builds a client for baseURL.  A trailing slash is trimmed so paths can
// always start with "/".
func New(baseURL string, opts ...Option) *Client {
    c := &Client{
        baseURL: strings.TrimRight(baseURL, "/"),
        http:    &http.Client{},
        newID:   func() string { return uuid.NewString() },
    }
    for _, opt := range opts {
        opt(c)
    }
    return c
}

// BaseURL returns the configured backend endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one call.  body is JSON-encoded unless form is set.
type request struct {
    method string
    path   string
    query  url.Values
    token  string
    body   any
    form   url.Values
}

// do performs req and decodes a 2xx body into out (which may be nil).  A 204
// or an empty body leaves out untouched.
func (c *Client) do(ctx context.Context, req request, out any) error {
    target := c.baseURL + req.path
    if len(req.query) > 0 {
        target += "?" + req.query.Encode()
    }

    var (
        payload     io.Reader
        contentType string
    )
    switch {
    case req.form != nil:
        payload = strings.NewReader(req.form.Encode())
        contentType = "application/x-www-form-urlencoded"
    case req.body != nil:
        buf, err := json.Marshal(req.body)
        if err != nil {
            return fmt.Errorf("encode %s %s body: %w", req.method, req.path, err)
        }
        payload = bytes.NewReader(buf)
        contentType = "application/json"
    }

    httpReq, err := http.NewRequestWithContext(ctx, req.method, target, payload)
    if err != nil {
        return fmt.Errorf("build %s %s: %w", req.method, req.path, err)
    }
    httpReq.Header.Set("Accept", "application/json")
    httpReq.Header.Set("X-Request-ID", c.newID())
    if contentType != "" {
        httpReq.Header.Set("Content-Type", contentType)
    }
    if req.token != "" {
        httpReq.Header.Set("Authorization", "Bearer "+req.token)
    }

    resp, err := c.http.Do(httpReq)
    if err != nil {
        // A cancelled caller is not a connectivity problem; surface the
        // context error so superseded work can be recognised and dropped.
        if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
            return ctxErr
        }
        return connectivityError(c.baseURL, err)
    }
    defer resp.Body.Close()

    raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
    if err != nil {
        return connectivityError(c.baseURL, err)
    }
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return decodeError(resp.StatusCode, raw)
    }
    if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
        return nil
    }
    if err := json.Unmarshal(raw, out); err != nil {
        return &RequestError{
            Kind:    KindOther,
            Status:  resp.StatusCode,
            Message: msgBadResponse,
            Err:     fmt.Errorf("decode %s %s: %w", req.method, req.path, err),
        }
    }
    return nil
}

func pathf(format string, args ...any) string {
    for i, a := range args {
        args[i] = url.PathEscape(fmt.Sprint(a))
    }
    return fmt.Sprintf(format, args...)
}
