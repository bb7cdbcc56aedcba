package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/claraconfirms/backend/auth"
	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/supabase"
	"github.com/claraconfirms/backend/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalVerifier validates service-issued access tokens
type LocalVerifier interface {
	// VerifyAccessToken returns nil for any token the service did not issue
	VerifyAccessToken(token string) *auth.LocalClaims
}

// ExternalVerifier validates Supabase-issued tokens
type ExternalVerifier interface {
	// VerifyToken returns nil when disabled or the token fails verification
	VerifyToken(token string) *supabase.Claims
}

// IdentityResolver maps a Supabase subject to a local user record
type IdentityResolver interface {
	// Resolve returns (nil, nil) when no local account matches
	Resolve(ctx context.Context, supabaseUID, emailHint string) (*models.User, error)
}

// authStrategy attempts to authenticate a bearer token. It returns the
// principal and true when the token belongs to this strategy's trust root,
// (nil, false) when the token is not its to judge, and an error only on
// store faults.
type authStrategy func(ctx context.Context, token string) (*Principal, bool, error)

// AuthMiddleware authenticates requests against two trust roots tried in a
// fixed order: the service's own access tokens first, then Supabase tokens.
// The ordering matters — a malformed local-looking token must not be handed
// to the Supabase verifier and vice versa.
type AuthMiddleware struct {
	strategies []authStrategy
	local      LocalVerifier
	external   ExternalVerifier
	resolver   IdentityResolver
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(local LocalVerifier, external ExternalVerifier, resolver IdentityResolver, logger *zap.Logger) *AuthMiddleware {
	m := &AuthMiddleware{
		local:    local,
		external: external,
		resolver: resolver,
		logger:   logger,
	}
	m.strategies = []authStrategy{m.localStrategy, m.supabaseStrategy}
	return m
}

// RequireAuth is a middleware that rejects requests without a valid token
// from either trust root
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing bearer token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		principal, err := m.authenticate(ctx, token)
		if err != nil {
			m.logger.Error("authentication failed on store fault",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}
		if principal == nil {
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx = WithPrincipal(ctx, principal)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", principal.UserID.String()),
			zap.String("company_id", principal.CompanyID.String()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches a principal when a valid token is present but never
// rejects. Used for endpoints that behave differently for anonymous callers.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.authenticate(ctx, token)
		if err != nil {
			m.logger.Error("authentication failed on store fault",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}
		if principal == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// authenticate runs the ordered strategy list. Returns nil when no strategy
// matched the token.
func (m *AuthMiddleware) authenticate(ctx context.Context, token string) (*Principal, error) {
	for _, strategy := range m.strategies {
		principal, applied, err := strategy(ctx, token)
		if err != nil {
			return nil, err
		}
		if applied {
			return principal, nil
		}
	}
	return nil, nil
}

// localStrategy accepts service-issued access tokens. No I/O: the claims
// carry everything the principal needs.
func (m *AuthMiddleware) localStrategy(_ context.Context, token string) (*Principal, bool, error) {
	claims := m.local.VerifyAccessToken(token)
	if claims == nil {
		return nil, false, nil
	}

	// IDs were shape-checked during verification
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, false, nil
	}
	companyID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return nil, false, nil
	}

	return &Principal{
		UserID:    userID,
		Email:     claims.Email,
		CompanyID: companyID,
		Role:      claims.Role,
	}, true, nil
}

// supabaseStrategy accepts Supabase tokens and resolves the subject to a
// local account, linking on first sight.
func (m *AuthMiddleware) supabaseStrategy(ctx context.Context, token string) (*Principal, bool, error) {
	claims := m.external.VerifyToken(token)
	if claims == nil {
		return nil, false, nil
	}

	user, err := m.resolver.Resolve(ctx, claims.UID(), claims.Email)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		m.logger.Warn("valid supabase signature but no matching local account",
			zap.String("supabase_uid", claims.UID()))
		return nil, false, nil
	}
	if !user.Active {
		m.logger.Warn("supabase subject resolved to a deactivated account",
			zap.String("user_id", user.ID.String()))
		return nil, false, nil
	}

	return &Principal{
		UserID:    user.ID,
		Email:     user.Email,
		CompanyID: user.CompanyID,
		Role:      string(user.Role),
	}, true, nil
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
