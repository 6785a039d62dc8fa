// Package request holds per-request context plumbing shared by middleware
// and handlers.
package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/kashishkhatter/interviewer-cw/internal/identity"
	"github.com/kashishkhatter/interviewer-cw/internal/models"
)

type contextKey string

const (
	tokenClaimsKey contextKey = "token_claims"
	identityKey    contextKey = "identity"
)

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithTokenClaims returns a context carrying the verified token claims.
func WithTokenClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, tokenClaimsKey, claims)
}

// TokenClaims returns the verified token claims from the request context,
// or nil when the token path did not authenticate this request.
func TokenClaims(r *http.Request) *models.Claims {
	claims, _ := r.Context().Value(tokenClaimsKey).(*models.Claims)
	return claims
}

// WithIdentity returns a context carrying the resolved canonical identity.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Identity returns the resolved canonical identity from the request
// context. The zero value means unauthenticated.
func Identity(r *http.Request) identity.Identity {
	id, _ := r.Context().Value(identityKey).(identity.Identity)
	return id
}
