package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kashishkhatter/interviewer-cw/internal/identity"
	"github.com/kashishkhatter/interviewer-cw/internal/provider"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/session"
	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

// RequireIdentity fully resolves the canonical identity for API routes and
// rejects requests where neither path authenticates. Unlike the gate's
// presence check, the token cookie is verified here before any claim is
// trusted. The resolved identity is stored in the request context.
func RequireIdentity(verifier session.TokenVerifier, capability provider.Capability, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenEmail := ""
			claims := request.TokenClaims(r)
			if claims == nil {
				if cookie, err := r.Cookie(token.CookieName); err == nil && cookie.Value != "" {
					verified, err := verifier.Verify(cookie.Value)
					if err != nil {
						logger.Debug("api_token_cookie_rejected",
							zap.String("reason", string(token.FailureReason(err))),
						)
					} else {
						claims = verified
					}
				}
			}
			if claims.HasEmail() {
				tokenEmail = claims.Email
			}

			managed := capability.Session(r)

			id := identity.Resolve(managed.Email, tokenEmail)
			if !id.IsAuthenticated() {
				respondUnauthorized(w)
				return
			}

			ctx := request.WithIdentity(r.Context(), id)
			if claims != nil {
				ctx = request.WithTokenClaims(ctx, claims)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := map[string]any{
		"success":   false,
		"error":     "Unauthorized",
		"message":   "Please log in",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	_ = json.NewEncoder(w).Encode(response)
}
