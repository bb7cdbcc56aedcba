package auth

import (
	"time"

	"github.com/claraconfirms/backend/config"
	"github.com/claraconfirms/backend/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenTypeAccess marks short-lived tokens accepted by the auth middleware
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens accepted only by the refresh endpoint
	TokenTypeRefresh = "refresh"
)

// LocalClaims are the claims carried by service-issued tokens
type LocalClaims struct {
	jwt.RegisteredClaims
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// TokenService issues and verifies service-signed tokens (HMAC-SHA256).
// Verification is pure: no I/O, and expected failures yield nil, never an error.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a token service from auth configuration
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// IssueAccessToken creates a signed access token for a user
func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	return s.issue(user, TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken creates a signed refresh token for a user
func (s *TokenService) IssueRefreshToken(user *models.User) (string, error) {
	return s.issue(user, TokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) issue(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &LocalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		Type:      tokenType,
		UserID:    user.ID.String(),
		CompanyID: user.CompanyID.String(),
		Email:     user.Email,
		Role:      string(user.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyAccessToken validates a service-issued access token.
// Returns nil on any signature, expiry, or shape failure: the token must be
// signed with the service secret, carry type=access, and name both a user
// and a company.
func (s *TokenService) VerifyAccessToken(tokenString string) *LocalClaims {
	return s.verify(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken validates a service-issued refresh token
func (s *TokenService) VerifyRefreshToken(tokenString string) *LocalClaims {
	return s.verify(tokenString, TokenTypeRefresh)
}

func (s *TokenService) verify(tokenString, wantType string) *LocalClaims {
	token, err := jwt.ParseWithClaims(tokenString, &LocalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(*LocalClaims)
	if !ok {
		return nil
	}
	if claims.Type != wantType {
		return nil
	}
	if claims.UserID == "" || claims.CompanyID == "" {
		return nil
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil
	}
	if _, err := uuid.Parse(claims.CompanyID); err != nil {
		return nil
	}

	return claims
}
