package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects the JWT expiry claim without verifying the signature.
// Verification belongs to the backend; locally the claim only decides whether
// attempting a request is worthwhile. Tokens without a readable expiry are
// treated as live and left to the backend to reject.
func tokenExpired(raw string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
