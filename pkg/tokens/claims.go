// Package tokens reads claims out of backend-issued bearer tokens. The
// storefront never holds the signing secret, so nothing here verifies
// signatures: the claims are for display only and the backend stays the
// authority on validity.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AccessClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func ClaimsFromToken(tokenStr string) (*AccessClaims, error) {
	if tokenStr == "" {
		return nil, errors.New("empty token")
	}
	var claims AccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// ExpiresAt reports the token's exp claim. ok is false for opaque tokens and
// tokens without an expiry.
func ExpiresAt(tokenStr string) (exp time.Time, ok bool) {
	claims, err := ClaimsFromToken(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func Expired(tokenStr string, now time.Time) bool {
	exp, ok := ExpiresAt(tokenStr)
	return ok && !now.Before(exp)
}
