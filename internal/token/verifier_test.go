package token

import (
	"errors"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var testSecret = []byte("test-signing-secret")

type claimSet map[string]any

func signToken(t *testing.T, secret []byte, alg jwa.SignatureAlgorithm, expiry time.Time, claims claimSet) string {
	t.Helper()

	builder := jwt.NewBuilder().
		Subject("user-123").
		IssuedAt(time.Now())
	if !expiry.IsZero() {
		builder = builder.Expiration(expiry)
	}
	for name, value := range claims {
		builder = builder.Claim(name, value)
	}

	tok, err := builder.Build()
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(alg, secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return string(signed)
}

func TestVerifier_Verify_ValidToken(t *testing.T) {
	t.Parallel()

	tokenString := signToken(t, testSecret, jwa.HS256, time.Now().Add(time.Hour), claimSet{
		"user_email": "alice@example.com",
		"username":   "alice",
		"roles":      []string{"candidate"},
		"tenant":     "acme",
	})

	v := NewVerifier(testSecret, nil)
	claims, err := v.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify() error = %v, want nil", err)
	}

	if claims.Sub != "user-123" {
		t.Errorf("Sub = %q, want %q", claims.Sub, "user-123")
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "alice@example.com")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.Tenant != "acme" {
		t.Errorf("Tenant = %q, want %q", claims.Tenant, "acme")
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "candidate" {
		t.Errorf("Roles = %v, want [candidate]", claims.Roles)
	}
	if !claims.HasEmail() {
		t.Error("HasEmail() = false, want true")
	}
}

func TestVerifier_Verify_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantReason Reason
	}{
		{
			name:       "expired token",
			token:      signToken(t, testSecret, jwa.HS256, time.Now().Add(-time.Hour), nil),
			wantReason: ReasonExpired,
		},
		{
			name: "expired token with wrong secret still reports expired",
			token: signToken(t, []byte("some-other-secret"), jwa.HS256,
				time.Now().Add(-time.Hour), nil),
			wantReason: ReasonExpired,
		},
		{
			name:       "wrong secret",
			token:      signToken(t, []byte("some-other-secret"), jwa.HS256, time.Now().Add(time.Hour), nil),
			wantReason: ReasonBadSignature,
		},
		{
			name:       "wrong algorithm",
			token:      signToken(t, testSecret, jwa.HS512, time.Now().Add(time.Hour), nil),
			wantReason: ReasonBadSignature,
		},
		{
			name:       "garbage input",
			token:      "not-a-jwt-at-all",
			wantReason: ReasonMalformed,
		},
		{
			name:       "empty input",
			token:      "",
			wantReason: ReasonMalformed,
		},
	}

	v := NewVerifier(testSecret, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := v.Verify(tt.token)
			if err == nil {
				t.Fatal("Verify() error = nil, want InvalidTokenError")
			}
			if claims != nil {
				t.Errorf("Verify() claims = %+v, want nil", claims)
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("errors.Is(err, ErrInvalidToken) = false for %v", err)
			}
			if got := FailureReason(err); got != tt.wantReason {
				t.Errorf("FailureReason() = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

func TestVerifier_Verify_MissingEmailStillValid(t *testing.T) {
	t.Parallel()

	tokenString := signToken(t, testSecret, jwa.HS256, time.Now().Add(time.Hour), claimSet{
		"username": "no-email-user",
	})

	v := NewVerifier(testSecret, nil)
	claims, err := v.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify() error = %v, want nil", err)
	}
	if claims.HasEmail() {
		t.Error("HasEmail() = true for token without email claim")
	}
	if claims.Username != "no-email-user" {
		t.Errorf("Username = %q, want %q", claims.Username, "no-email-user")
	}
}

func TestFailureReason_NonTokenError(t *testing.T) {
	t.Parallel()

	if got := FailureReason(errors.New("unrelated")); got != "" {
		t.Errorf("FailureReason() = %q, want empty", got)
	}
}
