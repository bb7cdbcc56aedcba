package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/claraconfirms/backend/auth"
	"github.com/claraconfirms/backend/middleware"
	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/repositories"
	"github.com/claraconfirms/backend/utils"
)

// RegisterRequest creates a company and its first admin user
type RegisterRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=200"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// LoginRequest authenticates with email and password
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse carries issued tokens and the authenticated user
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

// AuthHandler handles registration, login, and token refresh
type AuthHandler struct {
	users     repositories.UserRepository
	companies repositories.CompanyRepository
	txManager repositories.TransactionManager
	tokens    *auth.TokenService
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repositories.UserRepository, companies repositories.CompanyRepository, txManager repositories.TransactionManager, tokens *auth.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		companies: companies,
		txManager: txManager,
		tokens:    tokens,
		logger:    logger,
	}
}

// HandleRegister handles POST /api/v1/auth/register.
// Creates the company and its first admin user in one transaction.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondValidationError(w, err, h.logger)
		return
	}

	existing, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		h.logger.Error("email lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	if existing != nil {
		_ = utils.WriteConflict(w, "Email is already registered", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hashing failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	company := models.NewCompany(req.CompanyName)
	user := models.NewUser(req.Email, company.ID, models.RoleAdmin)
	user.PasswordHash = &hash

	err = h.txManager.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
		if err := h.companies.WithTx(tx).Create(txCtx, company); err != nil {
			return err
		}
		return h.users.WithTx(tx).Create(txCtx, user)
	})
	if err != nil {
		h.logger.Error("registration transaction failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	h.logger.Info("company registered",
		zap.String("request_id", requestID),
		zap.String("company_id", company.ID.String()),
		zap.String("user_id", user.ID.String()))

	_ = utils.WriteCreated(w, map[string]interface{}{
		"company": company,
		"user":    user,
	})
}

// HandleLogin handles POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		h.logger.Error("email lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	// one stable message for every credential failure
	if user == nil || !user.Active || user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, req.Password) {
		_ = utils.WriteUnauthorized(w, "Invalid email or password")
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		h.logger.Error("access token issue failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	refreshToken, err := h.tokens.IssueRefreshToken(user)
	if err != nil {
		h.logger.Error("refresh token issue failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// HandleRefresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondValidationError(w, err, h.logger)
		return
	}

	claims := h.tokens.VerifyRefreshToken(req.RefreshToken)
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	userID, err := utils.ParseUUID(claims.UserID, "user_id")
	if err != nil {
		_ = utils.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	// re-read the user so a deactivation or role change takes effect on
	// the next refresh, not only at token expiry
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.logger.Error("user lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	if user == nil || !user.Active {
		_ = utils.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		h.logger.Error("access token issue failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, TokenResponse{AccessToken: accessToken})
}
