package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/kashishkhatter/interviewer-cw/internal/identity"
	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/session"
	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

func newAuthRouter(t *testing.T) (*mux.Router, *session.Resolver) {
	t.Helper()
	resolver := session.NewResolver(
		&stubVerifier{claims: map[string]*models.Claims{}},
		session.NewMemoryStore(0),
		nil,
	)
	r := mux.NewRouter()
	sub := r.PathPrefix("/api/auth").Subrouter()
	NewAuthHandler(resolver, nil).RegisterRoutes(sub)
	return r, resolver
}

func TestMe(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(t)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req = withIdentity(req, identity.Identity{Email: "alice@example.com", Source: identity.SourceManaged})
	req = req.WithContext(request.WithTokenClaims(req.Context(), &models.Claims{Email: "share@example.com"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data struct {
			Identity    identity.Identity `json:"identity"`
			TokenClaims *models.Claims    `json:"token_claims"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Identity.Email != "alice@example.com" {
		t.Errorf("identity email = %q", envelope.Data.Identity.Email)
	}
	if envelope.Data.Identity.Source != identity.SourceManaged {
		t.Errorf("identity source = %q", envelope.Data.Identity.Source)
	}
	if envelope.Data.TokenClaims == nil || envelope.Data.TokenClaims.Email != "share@example.com" {
		t.Errorf("token claims = %+v", envelope.Data.TokenClaims)
	}
}

func TestMe_Unauthorized(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(t)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSignOut_ExpiresTokenCookie(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(t)

	req := httptest.NewRequest("POST", "/api/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var expired bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == token.CookieName && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("token cookie should be expired on sign-out")
	}
}
