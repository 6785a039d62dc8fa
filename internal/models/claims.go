package models

// Claims represents the identity claims carried by a share-link token.
// The token issuer uses custom claim names (user_email, username, roles,
// tenant) alongside the registered sub/exp claims; anything absent is left
// at its zero value rather than treated as fatal.
type Claims struct {
	Sub      string   `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Tenant   string   `json:"tenant,omitempty"`
	Exp      int64    `json:"-"`
	Iat      int64    `json:"-"`
}

// HasEmail reports whether the claims carry an email usable for ownership
// scoping. A token without one still verifies, but cannot identify a user.
func (c *Claims) HasEmail() bool {
	return c != nil && c.Email != ""
}
