package auth

import (
	"net/http"
	"strings"

	"switchyard-hq/spur/pkg/credential"
)

// Header names accepted for the admin credential.
const (
	// TokenHeader is the dedicated admin token header.
	TokenHeader = "X-Admin-Token"

	// AuthorizationHeader is the standard Authorization header, accepted
	// with an optional "Bearer " prefix.
	AuthorizationHeader = "Authorization"
)

// bearerPrefix is stripped from Authorization values before comparison.
// The match is exact and case-sensitive: "bearer x" is compared whole.
// X-Admin-Token values are never stripped, so a credential that literally
// starts with "Bearer " can still be presented through that header.
const bearerPrefix = "Bearer "

// Error is an authorization failure with a stable machine-readable code
// and the HTTP status it maps to.
type Error struct {
	// Status is the HTTP status code for this failure.
	Status int

	// Code is the stable machine-readable error code.
	Code string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Authorization failure values. Callers rely on the distinction between
// "not configured" (503), "caller error" (401), and "wrong secret" (403).
var (
	// ErrServiceUnavailable means no admin credential is active.
	ErrServiceUnavailable = &Error{
		Status:  http.StatusServiceUnavailable,
		Code:    "admin_token_not_set",
		Message: "no admin token is configured; admin operations are disabled",
	}

	// ErrMissingToken means the request carried no credential.
	ErrMissingToken = &Error{
		Status:  http.StatusUnauthorized,
		Code:    "missing_token",
		Message: "missing admin token",
	}

	// ErrInvalidToken means the supplied credential did not match.
	ErrInvalidToken = &Error{
		Status:  http.StatusForbidden,
		Code:    "invalid_token",
		Message: "invalid admin token",
	}
)

// Guard authorizes admin operations against the credential store.
type Guard struct {
	store *credential.Store
}

// NewGuard creates a guard backed by the given credential store.
func NewGuard(store *credential.Store) *Guard {
	return &Guard{store: store}
}

// Authorize checks a raw credential value, compared whole. The failure
// order is part of the contract: service-unavailable before missing-token
// before invalid-token, so an inactive store always answers 503 no matter
// what the caller sent.
func (g *Guard) Authorize(provided string) *Error {
	if !g.store.IsActive() {
		return ErrServiceUnavailable
	}
	if provided == "" {
		return ErrMissingToken
	}
	if !g.store.Matches(provided) {
		return ErrInvalidToken
	}
	return nil
}

// AuthorizeRequest extracts the credential from the request headers and
// authorizes it. X-Admin-Token wins over Authorization when both are set;
// only Authorization values have the "Bearer " prefix stripped.
func (g *Guard) AuthorizeRequest(r *http.Request) *Error {
	if provided := r.Header.Get(TokenHeader); provided != "" {
		return g.Authorize(provided)
	}
	provided := strings.TrimPrefix(r.Header.Get(AuthorizationHeader), bearerPrefix)
	return g.Authorize(provided)
}
