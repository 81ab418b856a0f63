package session

import (
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a backend access token without
// verifying the signature; the storefront never holds the signing key and
// the backend stays the authority on validity.  ok is false for tokens that
// are not JWTs or carry no exp claim.
func TokenExpiry(raw string) (exp time.Time, ok bool) {
    claims := jwt.MapClaims{}
    if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
        return time.Time{}, false
    }
    nd, err := claims.GetExpirationTime()
    if err != nil || nd == nil {
        return time.Time{}, false
    }
    return nd.Time, true
}
