package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/claraconfirms/backend/auth"
	"github.com/claraconfirms/backend/middleware"
	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/repositories"
	"github.com/claraconfirms/backend/utils"
)

// IdentityInvalidator evicts cached identity resolutions after a
// credential change
type IdentityInvalidator interface {
	Invalidate(supabaseUID string)
}

// ChangePasswordRequest verifies the current password before setting a new one
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// CreateUserRequest adds a user to the caller's company
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin member"`
}

// UpdateUserRequest changes a user's role or active flag
type UpdateUserRequest struct {
	Role   *string `json:"role" validate:"omitempty,oneof=admin member"`
	Active *bool   `json:"active"`
}

// UserHandler handles profile and company-scoped user management
type UserHandler struct {
	users       repositories.UserRepository
	invalidator IdentityInvalidator
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users repositories.UserRepository, invalidator IdentityInvalidator, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:       users,
		invalidator: invalidator,
		logger:      logger,
	}
}

// HandleMe handles GET /api/v1/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := middleware.GetPrincipalFromContext(ctx)
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	user, err := h.users.GetByID(ctx, principal.UserID)
	if err != nil {
		h.logger.Error("user lookup failed",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	if user == nil {
		_ = utils.WriteNotFound(w, "User not found")
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleChangePassword handles PUT /api/v1/users/me/password.
// Changing the password evicts any cached identity resolution so a
// concurrently-held Supabase token re-reads the store on its next request.
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)
	principal := middleware.GetPrincipalFromContext(ctx)
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.GetByID(ctx, principal.UserID)
	if err != nil {
		h.logger.Error("user lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	if user == nil {
		_ = utils.WriteNotFound(w, "User not found")
		return
	}

	if user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, req.CurrentPassword) {
		_ = utils.WriteUnauthorized(w, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("password hashing failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	if err := h.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		h.logger.Error("password update failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	if user.SupabaseUID != nil {
		h.invalidator.Invalidate(*user.SupabaseUID)
	}

	h.logger.Info("password changed",
		zap.String("request_id", requestID),
		zap.String("user_id", user.ID.String()))

	utils.WriteNoContent(w)
}

// HandleListCompanyUsers handles GET /api/v1/companies/{companyID}/users
func (h *UserHandler) HandleListCompanyUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := utils.ParseUUID(chi.URLParam(r, "companyID"), "companyID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	users, err := h.users.GetByCompanyID(ctx, companyID)
	if err != nil {
		h.logger.Error("company user listing failed",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, users)
}

// HandleCreateUser handles POST /api/v1/companies/{companyID}/users
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	companyID, err := utils.ParseUUID(chi.URLParam(r, "companyID"), "companyID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req CreateUserRequest
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

	user := models.NewUser(req.Email, companyID, models.UserRole(req.Role))

	// password is optional: a user invited without one signs in through
	// Supabase and gets linked on first sight
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.logger.Error("password hashing failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}
		user.PasswordHash = &hash
	}

	if err := h.users.Create(ctx, user); err != nil {
		h.logger.Error("user creation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteCreated(w, user)
}

// HandleGetUser handles GET /api/v1/companies/{companyID}/users/{userID}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.companyUser(w, r)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleUpdateUser handles PUT /api/v1/companies/{companyID}/users/{userID}
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user, ok := h.companyUser(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondValidationError(w, err, h.logger)
		return
	}

	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.users.Update(ctx, user); err != nil {
		h.logger.Error("user update failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	// a deactivation must not survive in the identity cache
	if user.SupabaseUID != nil {
		h.invalidator.Invalidate(*user.SupabaseUID)
	}

	_ = utils.WriteOK(w, user)
}

// HandleDeleteUser handles DELETE /api/v1/companies/{companyID}/users/{userID}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)
	principal := middleware.GetPrincipalFromContext(ctx)

	user, ok := h.companyUser(w, r)
	if !ok {
		return
	}

	if principal != nil && principal.UserID == user.ID {
		_ = utils.WriteBadRequest(w, "Cannot delete your own account", nil)
		return
	}

	if err := h.users.Delete(ctx, user.ID); err != nil {
		h.logger.Error("user deletion failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	if user.SupabaseUID != nil {
		h.invalidator.Invalidate(*user.SupabaseUID)
	}

	utils.WriteNoContent(w)
}

// companyUser loads the {userID} path user and confirms it belongs to the
// {companyID} path company. Writes the error response itself when not ok.
func (h *UserHandler) companyUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	ctx := r.Context()

	companyID, err := utils.ParseUUID(chi.URLParam(r, "companyID"), "companyID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return nil, false
	}
	userID, err := utils.ParseUUID(chi.URLParam(r, "userID"), "userID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return nil, false
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.logger.Error("user lookup failed",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return nil, false
	}

	// a user from another company is indistinguishable from a missing one
	if user == nil || user.CompanyID != companyID {
		_ = utils.WriteNotFound(w, "User not found")
		return nil, false
	}

	return user, true
}
