// Package identity reconciles the two authentication paths, the managed
// OIDC session and the self-issued share-link token, into one canonical
// identity used as the ownership key for every data operation.
package identity

import "strings"

// Source identifies which authentication path produced an identity
type Source string

const (
	SourceManaged Source = "managed"
	SourceToken   Source = "token"
)

// Identity is the canonical identity for a request. The zero value means
// unauthenticated.
type Identity struct {
	Email  string `json:"email"`
	Source Source `json:"source"`
}

// IsAuthenticated reports whether the identity carries an email
func (id Identity) IsAuthenticated() bool {
	return id.Email != ""
}

// Normalize lowercases and trims an email so ownership comparisons are
// stable regardless of how the address was entered at either provider.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Resolve combines the managed-session email and the token email into a
// single canonical identity. The managed session wins when both are
// present; with neither, the zero Identity is returned.
func Resolve(managedEmail, tokenEmail string) Identity {
	if e := Normalize(managedEmail); e != "" {
		return Identity{Email: e, Source: SourceManaged}
	}
	if e := Normalize(tokenEmail); e != "" {
		return Identity{Email: e, Source: SourceToken}
	}
	return Identity{}
}

// OwnerEmails returns the pair of candidate owner emails used for record
// matching. A stored record was authored under exactly one of the two
// sources, and the caller does not know which, so list queries match the
// owner column against both values. Either entry may be empty.
func OwnerEmails(managedEmail, tokenEmail string) (string, string) {
	return Normalize(managedEmail), Normalize(tokenEmail)
}
