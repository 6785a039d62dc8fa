package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kashishkhatter/interviewer-cw/internal/logger"
	"github.com/kashishkhatter/interviewer-cw/internal/provider"
	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

// DefaultSignInPath is where unauthenticated protected requests are sent
const DefaultSignInPath = "/sign-in"

// defaultPublicPaths is the explicit allow-list of page routes that never
// require credentials.
var defaultPublicPaths = []string{
	"/",
	"/sign-in",
	"/sign-up",
	"/api/auth/verify",
	"/healthz",
	"/version",
}

// defaultPublicPrefixes forwards assets and API-infrastructure paths
// unconditionally; API routes enforce identity themselves.
var defaultPublicPrefixes = []string{
	"/api/",
	"/static/",
	"/assets/",
	"/fonts/",
	"/images/",
	"/favicon",
}

// Gate classifies every inbound request as public or protected before any
// handler runs. Protected requests pass on token-cookie presence alone,
// which is a fast filter rather than an authorization decision; handlers
// that act on claims still verify. With no cookie, the managed provider's
// session is the last resort before a redirect to sign-in.
type Gate struct {
	provider       provider.Capability
	logger         *zap.Logger
	signInPath     string
	publicPaths    map[string]struct{}
	publicPrefixes []string
}

// NewGate creates the route gate backed by the managed-provider capability
func NewGate(capability provider.Capability, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths := make(map[string]struct{}, len(defaultPublicPaths))
	for _, p := range defaultPublicPaths {
		paths[p] = struct{}{}
	}
	return &Gate{
		provider:       capability,
		logger:         logger,
		signInPath:     DefaultSignInPath,
		publicPaths:    paths,
		publicPrefixes: defaultPublicPrefixes,
	}
}

// AllowPath adds a path to the public allow-list
func (g *Gate) AllowPath(path string) {
	g.publicPaths[path] = struct{}{}
}

// Public reports whether a path bypasses the gate entirely
func (g *Gate) Public(path string) bool {
	if _, ok := g.publicPaths[path]; ok {
		return true
	}
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware evaluates the gate for every request. Terminal states:
// forward, forward after provider check, redirect to sign-in.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.Public(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Presence-only check: full verification happens downstream,
			// so asset-heavy page loads don't pay for it on every request.
			if cookie, err := r.Cookie(token.CookieName); err == nil && cookie.Value != "" {
				next.ServeHTTP(w, r)
				return
			}

			if g.provider.Session(r).SignedIn {
				next.ServeHTTP(w, r)
				return
			}

			g.logger.Debug("gate_redirecting_unauthenticated",
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			)
			http.Redirect(w, r, g.signInPath, http.StatusFound)
		})
	}
}
