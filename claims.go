package biblio

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims holds the decoded payload of a bearer credential. The server
// is the authority on these values; the client decodes them purely for
// display and for gating calls it would lose anyway.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Identity is the legacy subject claim written by older token encoders.
	// The registered `sub` claim is authoritative; Identity is read-only
	// back-compat and is never written by this module.
	Identity string `json:"identity,omitempty"`

	UserRole string `json:"role,omitempty"`
}

// SubjectID returns the subject claim, falling back to the legacy identity
// claim for tokens minted by older encoders. Empty when neither is present.
func (c *TokenClaims) SubjectID() string {
	if c.RegisteredClaims.Subject != "" {
		return c.RegisteredClaims.Subject
	}
	return c.Identity
}

// Role returns the role claim. Empty when the claim is absent; callers must
// treat an empty role as unauthenticated-equivalent.
func (c *TokenClaims) Role() string {
	return c.UserRole
}

// HasRole checks if the decoded role matches a specific role
func (c *TokenClaims) HasRole(role UserRole) bool {
	return c.UserRole == role
}
