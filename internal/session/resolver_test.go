package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

// fakeVerifier accepts a fixed set of token strings
type fakeVerifier struct {
	accepted map[string]*models.Claims
}

func (f *fakeVerifier) Verify(tokenString string) (*models.Claims, error) {
	if claims, ok := f.accepted[tokenString]; ok {
		return claims, nil
	}
	return nil, &token.InvalidTokenError{Reason: token.ReasonBadSignature}
}

func newTestResolver(accepted map[string]*models.Claims) (*Resolver, *MemoryStore) {
	store := NewMemoryStore(0)
	resolver := NewResolver(&fakeVerifier{accepted: accepted}, store, nil)
	return resolver, store
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestResolver_URLTokenVerifiedPersistedAndRedirected(t *testing.T) {
	t.Parallel()

	resolver, store := newTestResolver(map[string]*models.Claims{
		"good-token": {Sub: "u1", Email: "b@x.com"},
	})

	req := httptest.NewRequest("GET", "/?token=good-token", nil)
	rec := httptest.NewRecorder()

	outcome := resolver.Resolve(rec, req)

	if !outcome.Redirected {
		t.Fatal("expected redirect for URL-sourced token")
	}
	if outcome.Claims == nil || outcome.Claims.Email != "b@x.com" {
		t.Fatalf("Claims = %+v, want b@x.com", outcome.Claims)
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != DefaultLandingPath {
		t.Errorf("Location = %q, want %q", loc, DefaultLandingPath)
	}

	tokenCookie := findCookie(rec, token.CookieName)
	if tokenCookie == nil || tokenCookie.Value != "good-token" {
		t.Fatalf("token cookie = %+v, want good-token", tokenCookie)
	}
	if !tokenCookie.HttpOnly {
		t.Error("token cookie should be HTTP-only")
	}
	if tokenCookie.SameSite != http.SameSiteLaxMode {
		t.Error("token cookie should be SameSite=Lax")
	}

	sidCookie := findCookie(rec, IDCookieName)
	if sidCookie == nil {
		t.Fatal("expected a session ID cookie to be minted")
	}
	cached, err := store.Get(req.Context(), sidCookie.Value)
	if err != nil || cached != "good-token" {
		t.Errorf("store.Get() = %q, %v, want good-token", cached, err)
	}
}

func TestResolver_URLTokenOnAPIPathPersistsWithoutRedirect(t *testing.T) {
	t.Parallel()

	resolver, store := newTestResolver(map[string]*models.Claims{
		"good-token": {Sub: "u1", Email: "b@x.com"},
	})

	req := httptest.NewRequest("GET", "/api/auth/verify?token=good-token", nil)
	rec := httptest.NewRecorder()

	outcome := resolver.Resolve(rec, req)

	if outcome.Redirected {
		t.Fatal("API requests must not be redirected to the landing page")
	}
	if outcome.Claims == nil || outcome.Claims.Email != "b@x.com" {
		t.Fatalf("Claims = %+v, want b@x.com", outcome.Claims)
	}

	tokenCookie := findCookie(rec, token.CookieName)
	if tokenCookie == nil || tokenCookie.Value != "good-token" {
		t.Fatalf("token cookie = %+v, want good-token", tokenCookie)
	}
	sidCookie := findCookie(rec, IDCookieName)
	if sidCookie == nil {
		t.Fatal("expected a session ID cookie to be minted")
	}
	if cached, _ := store.Get(req.Context(), sidCookie.Value); cached != "good-token" {
		t.Errorf("store.Get() = %q, want good-token", cached)
	}
}

func TestResolver_CookieTokenNoRedirect(t *testing.T) {
	t.Parallel()

	resolver, _ := newTestResolver(map[string]*models.Claims{
		"good-token": {Sub: "u1", Email: "b@x.com"},
	})

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: "good-token"})
	rec := httptest.NewRecorder()

	outcome := resolver.Resolve(rec, req)

	if outcome.Redirected {
		t.Error("cookie-sourced token must not redirect")
	}
	if outcome.Claims == nil || outcome.Claims.Email != "b@x.com" {
		t.Fatalf("Claims = %+v, want b@x.com", outcome.Claims)
	}
}

func TestResolver_Idempotent(t *testing.T) {
	t.Parallel()

	resolver, _ := newTestResolver(map[string]*models.Claims{
		"good-token": {Sub: "u1", Email: "b@x.com"},
	})

	// First visit arrives via share link.
	first := httptest.NewRequest("GET", "/?token=good-token", nil)
	firstRec := httptest.NewRecorder()
	firstOutcome := resolver.Resolve(firstRec, first)
	if !firstOutcome.Redirected {
		t.Fatal("first pass should redirect")
	}

	// The follow-up request carries the persisted cookies, not the URL token.
	second := httptest.NewRequest("GET", DefaultLandingPath, nil)
	for _, c := range firstRec.Result().Cookies() {
		second.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	secondRec := httptest.NewRecorder()
	secondOutcome := resolver.Resolve(secondRec, second)

	if secondOutcome.Redirected {
		t.Error("second pass must not redirect again")
	}
	if secondOutcome.Claims == nil || secondOutcome.Claims.Email != firstOutcome.Claims.Email {
		t.Errorf("second pass claims = %+v, want same identity as first", secondOutcome.Claims)
	}
}

func TestResolver_InvalidTokenClearsStaleState(t *testing.T) {
	t.Parallel()

	resolver, store := newTestResolver(nil)

	sid := "existing-session"
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: IDCookieName, Value: sid})
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: "tampered-token"})
	if err := store.Put(req.Context(), sid, "tampered-token"); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()

	outcome := resolver.Resolve(rec, req)

	if outcome.Claims != nil {
		t.Errorf("Claims = %+v, want nil for invalid token", outcome.Claims)
	}
	if outcome.Redirected {
		t.Error("invalid token must not redirect")
	}

	if cached, _ := store.Get(req.Context(), sid); cached != "" {
		t.Errorf("stale cache entry survived: %q", cached)
	}
	expired := findCookie(rec, token.CookieName)
	if expired == nil || expired.MaxAge >= 0 {
		t.Errorf("expected expired token cookie, got %+v", expired)
	}
}

func TestResolver_ValidTokenWithoutEmailNotPersisted(t *testing.T) {
	t.Parallel()

	resolver, store := newTestResolver(map[string]*models.Claims{
		"no-email-token": {Sub: "u2"},
	})

	req := httptest.NewRequest("GET", "/?token=no-email-token", nil)
	rec := httptest.NewRecorder()

	outcome := resolver.Resolve(rec, req)

	if outcome.Claims != nil {
		t.Errorf("Claims = %+v, want nil for unusable identity", outcome.Claims)
	}
	if cookie := findCookie(rec, token.CookieName); cookie != nil {
		t.Errorf("token cookie was set for unusable identity: %+v", cookie)
	}
	sidCookie := findCookie(rec, IDCookieName)
	if sidCookie != nil {
		if cached, _ := store.Get(req.Context(), sidCookie.Value); cached != "" {
			t.Errorf("cache entry was written for unusable identity: %q", cached)
		}
	}
}

func TestResolver_NoCandidateIsNoOp(t *testing.T) {
	t.Parallel()

	resolver, _ := newTestResolver(nil)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()

	outcome := resolver.Resolve(rec, req)
	if outcome.Claims != nil || outcome.Redirected {
		t.Errorf("Resolve() = %+v, want empty outcome", outcome)
	}
}

func TestResolver_SignOut(t *testing.T) {
	t.Parallel()

	resolver, store := newTestResolver(nil)

	sid := "signout-session"
	req := httptest.NewRequest("POST", "/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: IDCookieName, Value: sid})
	if err := store.Put(req.Context(), sid, "good-token"); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()

	resolver.SignOut(rec, req)

	if cached, _ := store.Get(req.Context(), sid); cached != "" {
		t.Errorf("cache entry survived sign-out: %q", cached)
	}
	expired := findCookie(rec, token.CookieName)
	if expired == nil || expired.MaxAge >= 0 {
		t.Errorf("expected expired token cookie, got %+v", expired)
	}
}

func TestResolver_MiddlewareInjectsClaims(t *testing.T) {
	t.Parallel()

	resolver, _ := newTestResolver(map[string]*models.Claims{
		"good-token": {Sub: "u1", Email: "b@x.com"},
	})

	var seenEmail string
	handler := resolver.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := request.TokenClaims(r); claims != nil {
			seenEmail = claims.Email
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: "good-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seenEmail != "b@x.com" {
		t.Errorf("handler saw email %q, want b@x.com", seenEmail)
	}
}
