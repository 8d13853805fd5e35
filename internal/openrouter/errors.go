package openrouter

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the OpenRouter status codes that need distinct
// user-facing handling. Match with errors.Is against the *APIError
// returned by the client.
var (
	ErrInvalidAPIKey       = errors.New("invalid or unauthorized api key")
	ErrInsufficientCredits = errors.New("insufficient account credits")
	ErrModelForbidden      = errors.New("model access forbidden")
	ErrRateLimited         = errors.New("rate limited")
)

// APIError is a transport failure: a non-2xx response from the remote
// endpoint. Detail carries the raw error body for logging.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openrouter returned status %d: %s", e.StatusCode, e.Detail)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidAPIKey:
		return e.StatusCode == http.StatusUnauthorized
	case ErrInsufficientCredits:
		return e.StatusCode == http.StatusPaymentRequired
	case ErrModelForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// ParseError is a malformed remote payload: either a broken response
// envelope or stage content that does not match its expected JSON schema.
// Raw preserves the offending payload for diagnosis.
type ParseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
