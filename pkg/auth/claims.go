package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin grants access to the ledger read endpoints.
const RoleAdmin = "admin"

// AccessTokenClaims is the bearer token minted by the operator auth system.
type AccessTokenClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
