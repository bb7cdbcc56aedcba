package supabase

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "supabase-project-shared-secret"

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	verifier := NewVerifier(testSecret)

	t.Run("valid token returns claims", func(t *testing.T) {
		token := signToken(t, testSecret, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "supabase-uid-123",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email: "alice@example.com",
			Role:  "authenticated",
		})

		claims := verifier.VerifyToken(token)
		require.NotNil(t, claims)
		assert.Equal(t, "supabase-uid-123", claims.UID())
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("unconfigured secret always returns nil", func(t *testing.T) {
		disabled := NewVerifier("")
		assert.False(t, disabled.Enabled())

		token := signToken(t, testSecret, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "supabase-uid-123",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		assert.Nil(t, disabled.VerifyToken(token))
		assert.Nil(t, disabled.VerifyToken(""))
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token := signToken(t, "some-other-secret", &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "supabase-uid-123",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		assert.Nil(t, verifier.VerifyToken(token))
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		token := signToken(t, testSecret, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email: "alice@example.com",
		})
		assert.Nil(t, verifier.VerifyToken(token))
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token := signToken(t, testSecret, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "supabase-uid-123",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		assert.Nil(t, verifier.VerifyToken(token))
	})

	t.Run("malformed token rejected", func(t *testing.T) {
		assert.Nil(t, verifier.VerifyToken("garbage"))
	})
}
