// Package supabase verifies JWTs minted by the Supabase identity provider.
// Supabase signs user tokens with a project-wide shared secret (HS256); the
// verifier only needs that secret, no network calls.
package supabase

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the Supabase token claims the backend cares about
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // Supabase's own role claim ("authenticated"), not the app role
}

// UID returns the Supabase subject identifier
func (c *Claims) UID() string {
	return c.Subject
}

// Verifier validates Supabase-issued JWTs against the configured shared secret.
// A Verifier with an empty secret is valid and rejects every token, which is
// how the Supabase integration is soft-disabled.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Supabase token verifier. An empty secret disables it.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether a signing secret is configured
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// VerifyToken validates a Supabase JWT. Returns nil when the verifier is
// disabled, the signature or expiry check fails, or the subject claim is
// missing. Pure, no I/O.
func (v *Verifier) VerifyToken(tokenString string) *Claims {
	if !v.Enabled() {
		return nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil
	}

	return claims
}
