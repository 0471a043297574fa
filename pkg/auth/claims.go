package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of the remote API's bearer token the storefront
// reads. The token is signed by the API; the storefront never verifies it.
type TokenClaims struct {
	UserID any    `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
