// Package auth inspects the persisted token locally. The client holds no
// signing secret, so claims are read unverified; the server stays the
// authority on validity.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expired reports whether the token's exp claim has passed. A token that
// cannot be parsed counts as expired; a token without an exp claim is
// not locally decidable and is left for the server to judge.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return exp.Before(now)
}
