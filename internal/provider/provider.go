// Package provider adapts the managed identity provider. The rest of the
// application consumes it only as a read-only capability ("is a session
// currently signed in, and what is its email") plus the sign-in/sign-out
// surface; provider internals never leak past this package.
package provider

import "net/http"

// Session is the provider's answer for one request. Opaque provider state
// reduces to these two fields.
type Session struct {
	SignedIn bool
	Email    string
}

// Capability is the read-only view the core consumes. Tests substitute a
// fake; production wires the OIDC client.
type Capability interface {
	Session(r *http.Request) Session
}

// Static is a fixed-answer Capability for tests and local development
type Static struct {
	Current Session
}

func (s *Static) Session(r *http.Request) Session {
	return s.Current
}
