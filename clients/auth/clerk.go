package auth

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwks"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
)

// ClerkVerifier accepts session tokens issued by Clerk, verified against Clerk's JWKS
type ClerkVerifier struct {
	jwksClient *jwks.Client
}

func NewClerkVerifier(clerkSecretKey string) *ClerkVerifier {
	config := &clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{
			Key: clerk.String(clerkSecretKey),
		},
	}
	return &ClerkVerifier{jwksClient: jwks.NewClient(config)}
}

func (v *ClerkVerifier) Verify(ctx context.Context, token string) (Subject, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{
		Token:      token,
		JWKSClient: v.jwksClient,
	})
	if err != nil {
		return Subject{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Subject{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return Subject{Provider: ProviderClerk, ID: claims.Subject}, nil
}
