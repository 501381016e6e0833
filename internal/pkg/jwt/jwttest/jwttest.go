// Package jwttest mints access tokens shaped like the account service's,
// for tests that drive authenticated routes.
package jwttest

import (
	"testing"
	"time"

	"tooma/internal/pkg/jwt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Sign returns an HS256 token for userID expiring ttl from now. A negative
// ttl yields an already expired token.
func Sign(t testing.TB, secret string, userID int64, email string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	return SignClaims(t, jwtlib.SigningMethodHS256, secret, jwt.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	})
}

// SignClaims signs arbitrary claims with method.
func SignClaims(t testing.TB, method jwtlib.SigningMethod, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
