package appctx

import (
	"context"

	"fleetbackend/models"
)

// Context key for storing the authenticated identity
type contextKey string

const IdentityContextKey contextKey = "identity"

// SetIdentity adds the authenticated identity to the request context.
// Only the HTTP layer reads it back; services receive the identity as a parameter.
func SetIdentity(ctx context.Context, identity models.AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// GetIdentity extracts the authenticated identity from the request context
func GetIdentity(ctx context.Context) (models.AuthenticatedIdentity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(models.AuthenticatedIdentity)
	return identity, ok
}
