package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/session"
)

// providerSignOut is implemented by provider adapters that keep their own
// session cookie
type providerSignOut interface {
	SignOut(w http.ResponseWriter)
}

// AuthHandler exposes the resolved identity and sign-out
type AuthHandler struct {
	resolver *session.Resolver
	signOut  providerSignOut // nil when no managed provider is configured
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(resolver *session.Resolver, signOut providerSignOut) *AuthHandler {
	return &AuthHandler{resolver: resolver, signOut: signOut}
}

// RegisterRoutes registers auth routes on the given router.
// The router should already have the /api/auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.Me).Methods("GET")
	r.HandleFunc("/sign-out", h.SignOut).Methods("POST")
}

// Me returns the canonical identity resolved for the current request
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if !id.IsAuthenticated() {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Not signed in")
		return
	}

	payload := map[string]any{
		"identity": id,
	}
	if claims := request.TokenClaims(r); claims != nil {
		payload["token_claims"] = claims
	}

	respondJSON(w, http.StatusOK, payload)
}

// SignOut clears the token session and, when configured, the managed
// provider session
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if h.resolver != nil {
		h.resolver.SignOut(w, r)
	}
	if h.signOut != nil {
		h.signOut.SignOut(w)
	}

	respondJSON(w, http.StatusOK, map[string]any{"signed_out": true})
}
