package session

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

// DefaultLandingPath is where a fresh share-link visit is routed after its
// token verifies.
const DefaultLandingPath = "/dashboard"

// TokenVerifier validates a candidate token string
type TokenVerifier interface {
	Verify(tokenString string) (*models.Claims, error)
}

// Outcome is the result of one resolution pass
type Outcome struct {
	// Claims is the verified token identity, nil when the token path did
	// not authenticate this request. The managed path is independent.
	Claims *models.Claims
	// Redirected reports that a redirect response was already written and
	// the caller must not continue handling the request.
	Redirected bool
}

// Resolver converts a located candidate token into trusted durable state:
// the token cookie plus the session cache. It owns the write path for
// both; everything else only reads them.
type Resolver struct {
	verifier    TokenVerifier
	store       Store
	locator     *token.Locator
	logger      *zap.Logger
	cookieTTL   time.Duration
	landingPath string
}

// NewResolver creates a resolver around the given verifier and store
func NewResolver(verifier TokenVerifier, store Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		verifier:    verifier,
		store:       store,
		logger:      logger,
		cookieTTL:   DefaultTTL,
		landingPath: DefaultLandingPath,
	}
	r.locator = token.NewLocator(r.cachedToken)
	return r
}

// SetLandingPath overrides where URL-sourced tokens are routed after verification
func (res *Resolver) SetLandingPath(path string) {
	if path != "" {
		res.landingPath = path
	}
}

// cachedToken is the lowest-precedence locator lookup: the session cache
func (res *Resolver) cachedToken(r *http.Request) string {
	sid := SessionID(r)
	if sid == "" {
		return ""
	}
	value, err := res.store.Get(r.Context(), sid)
	if err != nil {
		res.logger.Warn("session_cache_read_failed", zap.Error(err))
		return ""
	}
	return value
}

// Resolve runs one resolution pass: locate a candidate, verify it, persist
// on success, clear stale state on failure. It is idempotent: resolving
// again with the same stored token yields the same outcome and performs no
// duplicate redirect, because a persisted token is re-located from the
// cookie rather than the URL.
//
// Verification failures are absorbed: the token path simply stays
// unauthenticated and the managed-identity path may still succeed.
func (res *Resolver) Resolve(w http.ResponseWriter, r *http.Request) *Outcome {
	sid := EnsureID(w, r)

	candidate := res.locator.Locate(r)
	if candidate == nil {
		return &Outcome{}
	}

	claims, err := res.verifier.Verify(candidate.Token)
	if err != nil {
		res.logger.Info("token_rejected",
			zap.String("source", string(candidate.Source)),
			zap.String("reason", string(token.FailureReason(err))),
		)
		res.clear(w, r, sid)
		return &Outcome{}
	}

	if !claims.HasEmail() {
		// Signature and expiry check out, but without an email claim the
		// identity cannot scope any data record. Treated as unusable: not
		// persisted, not an identity.
		res.logger.Warn("token_valid_but_missing_email", zap.String("sub", claims.Sub))
		return &Outcome{}
	}

	if err := res.store.Put(r.Context(), sid, candidate.Token); err != nil {
		res.logger.Warn("session_cache_write_failed", zap.Error(err))
	}
	res.setCookie(w, candidate.Token)

	if candidate.Source == token.SourceURL && !isAPIRequest(r) {
		// Scrub the token from the URL so it cannot be re-shared through
		// history or referrers, and land the share-link visit directly in
		// the authenticated area. API clients expect a JSON body, not a
		// page redirect, so for them the token is persisted and the
		// request continues to its handler.
		http.Redirect(w, r, res.landingPath, http.StatusSeeOther)
		return &Outcome{Claims: claims, Redirected: true}
	}

	return &Outcome{Claims: claims}
}

// isAPIRequest reports whether the request targets the JSON API rather
// than a page route
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// SignOut discards the token identity for this browsing session
func (res *Resolver) SignOut(w http.ResponseWriter, r *http.Request) {
	if sid := SessionID(r); sid != "" {
		if err := res.store.Delete(r.Context(), sid); err != nil {
			res.logger.Warn("session_cache_delete_failed", zap.Error(err))
		}
	}
	expireCookie(w, token.CookieName)
}

// Middleware runs resolution before the wrapped handler and stashes the
// token claims into the request context. Protected handlers read identity
// only from the context, so they never act on an unresolved token.
func (res *Resolver) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := res.Resolve(w, r)
			if outcome.Redirected {
				return
			}
			if outcome.Claims != nil {
				r = r.WithContext(request.WithTokenClaims(r.Context(), outcome.Claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (res *Resolver) setCookie(w http.ResponseWriter, tokenString string) {
	http.SetCookie(w, &http.Cookie{
		Name:     token.CookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(res.cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (res *Resolver) clear(w http.ResponseWriter, r *http.Request, sid string) {
	if err := res.store.Delete(r.Context(), sid); err != nil {
		res.logger.Warn("session_cache_delete_failed", zap.Error(err))
	}
	expireCookie(w, token.CookieName)
}

func expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
