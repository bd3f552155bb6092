package models

import "github.com/golang-jwt/jwt/v5"

// AuthorClaims represents the JWT claims issued by the identity provider
// fronting the authoring UI. Only the subject and role are load-bearing.
type AuthorClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AuthorClaims) GetUserID() string {
	return c.Subject
}
