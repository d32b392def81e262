// Package auth reads the claims the SmartShelf backend puts in its bearer
// tokens. Signatures are not verified here: the backend is the verifier and
// rejects bad tokens with 401/403. The BFF only needs the expiry so that a
// session is not kept alive longer than the token behind it.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when the token is not a JWT or carries no exp.
var ErrNoExpiry = errors.New("auth: token has no expiry")

// Expiry returns the exp claim of a JWT bearer token.
func Expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, ErrNoExpiry
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// Subject returns the sub claim (the user's email for SmartShelf tokens),
// or "" when unavailable.
func Subject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}
