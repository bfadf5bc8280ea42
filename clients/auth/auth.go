package auth

import (
	"context"
	"errors"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

const (
	ProviderLocal = "local"
	ProviderClerk = "clerk"
)

// Subject identifies who a verified bearer token was issued to.
// For ProviderLocal the ID is a user ID, otherwise it is the provider's own user ID.
type Subject struct {
	Provider string
	ID       string
}

// TokenVerifier validates a bearer token and extracts its subject
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}
