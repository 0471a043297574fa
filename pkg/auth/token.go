package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by CheckToken for a token whose exp is past.
var ErrTokenExpired = errors.New("token expired")

// InspectToken decodes a bearer token without checking its signature, which
// belongs to the remote API. Opaque (non-JWT) tokens return an error.
func InspectToken(tokenString string) (*TokenClaims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return claims, nil
}

// CheckToken reports whether a cached token may still be sent. Tokens that
// cannot be decoded are let through and left for the API to judge; only a
// decodable exp in the past rejects.
func CheckToken(tokenString string, now time.Time) error {
	if strings.TrimSpace(tokenString) == "" {
		return fmt.Errorf("token is empty")
	}
	claims, err := InspectToken(tokenString)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	return nil
}
