package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/session"
	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

// VerifyHandler handles share-link token verification requests
type VerifyHandler struct {
	verifier  session.TokenVerifier
	cookieTTL time.Duration
}

// NewVerifyHandler creates a new verification handler
func NewVerifyHandler(verifier session.TokenVerifier) *VerifyHandler {
	return &VerifyHandler{verifier: verifier, cookieTTL: session.DefaultTTL}
}

// RegisterRoutes registers verification routes on the given router.
// The router should already have the /api/auth prefix.
func (h *VerifyHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/verify", h.VerifyPost).Methods("POST")
	r.HandleFunc("/verify", h.VerifyGet).Methods("GET")
}

// VerifyRequest is the POST body for token verification
type VerifyRequest struct {
	Token string `json:"token"`
}

// VerifyResponse reports whether a token is valid. UserData is present only
// for valid tokens; Error carries the failure reason otherwise.
type VerifyResponse struct {
	IsValid  bool           `json:"isValid"`
	UserData *models.Claims `json:"userData,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// VerifyPost verifies a token supplied in the request body
func (h *VerifyHandler) VerifyPost(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVerifyResponse(w, http.StatusBadRequest, VerifyResponse{
			IsValid: false,
			Error:   string(token.ReasonMalformed),
		})
		return
	}

	h.verify(w, req.Token, false)
}

// VerifyGet verifies a token supplied as a query parameter. Kept for older
// share links; a valid token is also persisted as the token cookie so the
// follow-up page load authenticates without the URL parameter.
func (h *VerifyHandler) VerifyGet(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r.URL.Query().Get(token.QueryParam), true)
}

func (h *VerifyHandler) verify(w http.ResponseWriter, tokenString string, setCookie bool) {
	claims, err := h.verifier.Verify(tokenString)
	if err != nil {
		reason := token.FailureReason(err)
		if reason == "" {
			reason = token.ReasonMalformed
		}
		writeVerifyResponse(w, http.StatusUnauthorized, VerifyResponse{
			IsValid: false,
			Error:   string(reason),
		})
		return
	}

	if setCookie {
		http.SetCookie(w, &http.Cookie{
			Name:     token.CookieName,
			Value:    tokenString,
			Path:     "/",
			MaxAge:   int(h.cookieTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeVerifyResponse(w, http.StatusOK, VerifyResponse{
		IsValid:  true,
		UserData: claims,
	})
}

// writeVerifyResponse writes the fixed verification response shape. The
// shape is part of the contract with share-link clients, so it bypasses
// the standard success envelope.
func writeVerifyResponse(w http.ResponseWriter, status int, resp VerifyResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
