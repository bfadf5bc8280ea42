package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/samber/mo"

	"fleetbackend/appctx"
	"fleetbackend/clients/auth"
	"fleetbackend/core"
	"fleetbackend/models"
	"fleetbackend/services"
)

// AuthMiddleware is the authorization gate: it turns a bearer token into an AuthenticatedIdentity
type AuthMiddleware struct {
	usersService services.UsersService
	verifiers    []auth.TokenVerifier
}

// NewAuthMiddleware creates the gate. Verifiers are tried in order and the first that accepts a token wins.
func NewAuthMiddleware(usersService services.UsersService, verifiers ...auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		usersService: usersService,
		verifiers:    verifiers,
	}
}

// ResolveToken verifies the token and loads the user it belongs to.
// Errors wrap core.ErrUnauthenticated unless the user lookup itself failed.
func (m *AuthMiddleware) ResolveToken(ctx context.Context, token string) (models.AuthenticatedIdentity, error) {
	if token == "" {
		return models.AuthenticatedIdentity{}, fmt.Errorf("%w: empty bearer token", core.ErrUnauthenticated)
	}

	subject, err := m.verify(ctx, token)
	if err != nil {
		return models.AuthenticatedIdentity{}, err
	}

	var maybeUser mo.Option[*models.User]
	switch subject.Provider {
	case auth.ProviderLocal:
		maybeUser, err = m.usersService.GetUserByID(ctx, subject.ID)
	default:
		maybeUser, err = m.usersService.GetUserByAuthProvider(ctx, subject.Provider, subject.ID)
	}
	if err != nil {
		if core.IsValidationError(err) {
			return models.AuthenticatedIdentity{}, fmt.Errorf("%w: %v", core.ErrUnauthenticated, err)
		}
		return models.AuthenticatedIdentity{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	user, ok := maybeUser.Get()
	if !ok {
		return models.AuthenticatedIdentity{}, fmt.Errorf("%w: user not found", core.ErrUnauthenticated)
	}

	return models.NewAuthenticatedIdentity(user), nil
}

func (m *AuthMiddleware) verify(ctx context.Context, token string) (auth.Subject, error) {
	var lastErr error = auth.ErrInvalidToken
	for _, verifier := range m.verifiers {
		subject, err := verifier.Verify(ctx, token)
		if err == nil {
			return subject, nil
		}
		lastErr = err
	}
	return auth.Subject{}, fmt.Errorf("%w: %v", core.ErrUnauthenticated, lastErr)
}

// WithAuth wraps an HTTP handler with bearer token authentication
func (m *AuthMiddleware) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("🔐 Authentication middleware processing request from %s", r.RemoteAddr)

		token, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			log.Printf("❌ %v", err)
			writeErrorResponse(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		identity, err := m.ResolveToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrUnauthenticated) {
				log.Printf("❌ Token rejected: %v", err)
				writeErrorResponse(w, "Not authorized, token failed", http.StatusUnauthorized)
				return
			}
			log.Printf("❌ Failed to resolve identity: %v", err)
			writeErrorResponse(w, "internal server error", http.StatusInternalServerError)
			return
		}

		log.Printf("✅ User authenticated successfully: %s (%s)", identity.UserID, identity.Role)
		next(w, r.WithContext(appctx.SetIdentity(r.Context(), identity)))
	}
}

// RequireRole rejects requests whose identity has none of the given roles. It must run inside WithAuth.
func RequireRole(roles ...models.UserRole) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, ok := appctx.GetIdentity(r.Context())
			if !ok {
				log.Printf("❌ No identity found in request context")
				writeErrorResponse(w, "Not authorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, identity.Role) {
				log.Printf("❌ User %s with role %s is not allowed on %s", identity.UserID, identity.Role, r.URL.Path)
				writeErrorResponse(w, fmt.Sprintf("Role %s is not authorized", identity.Role), http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}
	return token, nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("❌ Failed to encode error response: %v", err)
	}
}
