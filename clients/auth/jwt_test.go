package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))
	ctx := context.Background()

	t.Run("Round trip", func(t *testing.T) {
		token, err := verifier.Generate("u_01G0EZ1XTM37C5X11SQTDNCTM1", time.Hour)
		require.NoError(t, err)

		subject, err := verifier.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, ProviderLocal, subject.Provider)
		assert.Equal(t, "u_01G0EZ1XTM37C5X11SQTDNCTM1", subject.ID)
	})

	t.Run("Expired token", func(t *testing.T) {
		token, err := verifier.Generate("u_1", -time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewJWTVerifier([]byte("other-secret")).Generate("u_1", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Missing subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrMissingClaim)
	})

	t.Run("Rejects non-HMAC algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "u_1",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
