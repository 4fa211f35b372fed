// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by operator and self-care tokens.
type Claims struct {
	IdentityID int64    `json:"identity_id"`
	CustomerID int64    `json:"customer_id,omitempty"` // set on self-care tokens
	Roles      []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims contain a specific role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsOperator reports whether the token belongs to back-office staff.
func (c *Claims) IsOperator() bool {
	return c.HasRole("operator") || c.HasRole("admin")
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(expected string) bool {
	for _, aud := range c.Audience {
		if aud == expected {
			return true
		}
	}
	return false
}
