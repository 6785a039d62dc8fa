// Package token implements verification and discovery of the self-issued
// share-link bearer token. Tokens are signed with a single shared secret
// under exactly one algorithm; there is no negotiation.
package token

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
)

// SigningAlgorithm is the only algorithm accepted for share-link tokens.
// Pinning it prevents downgrade attacks via the token header.
const SigningAlgorithm = jwa.HS256

// Verifier validates share-link tokens against the shared secret.
// The secret is injected at construction so tests can substitute a fixed one.
type Verifier struct {
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

// NewVerifier creates a verifier for the given shared secret
func NewVerifier(secret []byte, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{secret: secret, logger: logger, now: time.Now}
}

// Verify checks the token's signature, algorithm and expiry and extracts
// its identity claims. It never panics on attacker-controlled input; every
// failure is an *InvalidTokenError. Expiry is checked before the signature
// so an expired token reports "expired" regardless of how it was signed.
func (v *Verifier) Verify(tokenString string) (*models.Claims, error) {
	if tokenString == "" {
		return nil, invalidToken(ReasonMalformed, nil)
	}

	tok, err := jwt.Parse([]byte(tokenString), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		v.logger.Debug("token_parse_failed", zap.Error(err))
		return nil, invalidToken(ReasonMalformed, err)
	}

	if exp := tok.Expiration(); !exp.IsZero() && v.now().After(exp) {
		v.logger.Debug("token_expired", zap.Time("expired_at", exp))
		return nil, invalidToken(ReasonExpired, nil)
	}

	// jws.Verify with a pinned key algorithm rejects tokens whose header
	// declares anything other than HS256, as well as bad signatures.
	if _, err := jws.Verify([]byte(tokenString), jws.WithKey(SigningAlgorithm, v.secret)); err != nil {
		v.logger.Debug("token_signature_rejected", zap.Error(err))
		return nil, invalidToken(ReasonBadSignature, err)
	}

	claims := extractClaims(tok)
	v.logger.Debug("token_verified",
		zap.String("sub", claims.Sub),
		zap.Bool("has_email", claims.HasEmail()),
	)
	return claims, nil
}

// extractClaims maps the issuer's claim names onto the Claims structure.
// Missing claims are carried as zero values, not treated as fatal.
func extractClaims(tok jwt.Token) *models.Claims {
	claims := &models.Claims{
		Sub: tok.Subject(),
	}

	if email, ok := tok.Get("user_email"); ok {
		if s, ok := email.(string); ok {
			claims.Email = s
		}
	}
	if username, ok := tok.Get("username"); ok {
		if s, ok := username.(string); ok {
			claims.Username = s
		}
	}
	if tenant, ok := tok.Get("tenant"); ok {
		if s, ok := tenant.(string); ok {
			claims.Tenant = s
		}
	}
	if roles, ok := tok.Get("roles"); ok {
		switch rv := roles.(type) {
		case []any:
			for _, r := range rv {
				if s, ok := r.(string); ok {
					claims.Roles = append(claims.Roles, s)
				}
			}
		case []string:
			claims.Roles = rv
		}
	}
	if exp := tok.Expiration(); !exp.IsZero() {
		claims.Exp = exp.Unix()
	}
	if iat := tok.IssuedAt(); !iat.IsZero() {
		claims.Iat = iat.Unix()
	}

	return claims
}
