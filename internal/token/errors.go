package token

import (
	"errors"
	"fmt"
)

// Reason classifies why a token failed verification
type Reason string

const (
	ReasonExpired      Reason = "expired"
	ReasonBadSignature Reason = "bad-signature"
	ReasonMalformed    Reason = "malformed"
)

// ErrInvalidToken is the sentinel all verification failures match via errors.Is
var ErrInvalidToken = errors.New("invalid token")

// InvalidTokenError is returned for any token that fails verification.
// There is no partially-trusted state: a token is valid or it is not.
type InvalidTokenError struct {
	Reason Reason
	cause  error
}

func (e *InvalidTokenError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid token (%s): %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("invalid token (%s)", e.Reason)
}

func (e *InvalidTokenError) Unwrap() error {
	return e.cause
}

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

func invalidToken(reason Reason, cause error) *InvalidTokenError {
	return &InvalidTokenError{Reason: reason, cause: cause}
}

// FailureReason extracts the verification failure reason from an error,
// or empty string if the error is not an InvalidTokenError.
func FailureReason(err error) Reason {
	var ite *InvalidTokenError
	if errors.As(err, &ite) {
		return ite.Reason
	}
	return ""
}
