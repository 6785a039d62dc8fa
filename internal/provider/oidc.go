package provider

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// SessionCookieName holds the provider's ID token between requests
	SessionCookieName = "provider_session"
	// StateCookieName carries the CSRF state across the login round trip
	StateCookieName = "oauth_state"

	sessionCookieMaxAge = int(24 * time.Hour / time.Second)
	stateCookieMaxAge   = int(10 * time.Minute / time.Second)
)

// Config configures the OIDC client
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OIDC is the production Capability: a go-oidc client whose session state
// lives in an HTTP-only cookie holding the ID token, verified statelessly
// on every read.
type OIDC struct {
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	logger       *zap.Logger
}

// NewOIDC discovers the issuer and builds the client
func NewOIDC(ctx context.Context, cfg Config, logger *zap.Logger) (*OIDC, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &OIDC{
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       scopes,
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		logger:   logger,
	}, nil
}

// Session reports the signed-in state for one request by verifying the ID
// token in the session cookie. Any anomaly reads as signed out.
func (p *OIDC) Session(r *http.Request) Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Session{}
	}

	idToken, err := p.verifier.Verify(r.Context(), cookie.Value)
	if err != nil {
		p.logger.Debug("provider_session_invalid", zap.Error(err))
		return Session{}
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		p.logger.Debug("provider_claims_unreadable", zap.Error(err))
		return Session{}
	}

	return Session{SignedIn: true, Email: claims.Email}
}

// BeginLogin writes the state cookie and redirects to the provider's
// sign-in page.
func (p *OIDC) BeginLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		http.Error(w, "failed to start login", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, p.oauth2Config.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback completes the code exchange, verifies the ID token, and
// establishes the provider session cookie.
func (p *OIDC) HandleCallback(w http.ResponseWriter, r *http.Request, landingPath string) {
	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	expireProviderCookie(w, StateCookieName)

	oauthToken, err := p.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		p.logger.Warn("oidc_code_exchange_failed", zap.Error(err))
		http.Error(w, "code exchange failed", http.StatusBadGateway)
		return
	}

	rawIDToken, ok := oauthToken.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		http.Error(w, "no id_token in response", http.StatusBadGateway)
		return
	}
	if _, err := p.verifier.Verify(r.Context(), rawIDToken); err != nil {
		p.logger.Warn("oidc_id_token_rejected", zap.Error(err))
		http.Error(w, "invalid id_token", http.StatusBadGateway)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    rawIDToken,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, landingPath, http.StatusSeeOther)
}

// SignOut discards the provider session
func (p *OIDC) SignOut(w http.ResponseWriter) {
	expireProviderCookie(w, SessionCookieName)
}

func expireProviderCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomState() (string, error) {
	data := make([]byte, 32)
	if _, err := rand.Read(data); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}
