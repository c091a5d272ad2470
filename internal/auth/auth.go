// Package auth provides optional token authentication for websocket
// connections to a served session.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrInvalidToken indicates the token is definitively invalid.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity describes an authenticated connection.
type Identity struct {
	Name string `json:"name"`
}

// Validator validates authentication tokens.
type Validator interface {
	// Validate returns the identity for token, ErrInvalidToken when the
	// token is rejected, or (nil, nil) when authentication is disabled.
	Validate(ctx context.Context, token string) (*Identity, error)
}

// TokenValidator accepts a single shared secret.
type TokenValidator struct {
	token []byte
	name  string
}

// NewTokenValidator creates a validator that accepts token. Accepted
// connections are identified as name.
func NewTokenValidator(token, name string) *TokenValidator {
	return &TokenValidator{token: []byte(token), name: name}
}

func (v *TokenValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	if token == "" || subtle.ConstantTimeCompare([]byte(token), v.token) != 1 {
		return nil, ErrInvalidToken
	}
	return &Identity{Name: v.name}, nil
}

// NoopValidator allows all connections without validation (dev mode).
type NoopValidator struct{}

// NewNoopValidator creates a validator that allows all connections.
func NewNoopValidator() *NoopValidator {
	return &NoopValidator{}
}

func (v *NoopValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	return nil, nil
}

// New returns a TokenValidator for a non-empty token and a NoopValidator
// otherwise.
func New(token string) Validator {
	if token == "" {
		return NewNoopValidator()
	}
	return NewTokenValidator(token, "player")
}

// TokenFromRequest reads a bearer token from the Authorization header,
// falling back to the token query parameter for browser clients.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}

// SetToken adds token to outgoing request headers
func SetToken(h http.Header, token string) {
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
}
