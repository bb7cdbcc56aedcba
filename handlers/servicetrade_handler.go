package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claraconfirms/backend/middleware"
	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/repositories"
	"github.com/claraconfirms/backend/servicetrade"
	"github.com/claraconfirms/backend/utils"
)

// SessionService is the slice of the session manager the handlers use
type SessionService interface {
	GetSession(ctx context.Context, companyID uuid.UUID) (string, error)
	Request(ctx context.Context, companyID uuid.UUID, method, path string, body []byte, creds *servicetrade.Credentials) (*servicetrade.Response, error)
	Logout(ctx context.Context, companyID uuid.UUID)
}

// CredentialsRequest stores a company's ServiceTrade login
type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProxyRequest describes a call to forward to ServiceTrade
type ProxyRequest struct {
	Method string          `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	Path   string          `json:"path" validate:"required"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// SessionStatusResponse reports a company's ServiceTrade connection state
type SessionStatusResponse struct {
	HasCredentials bool `json:"has_credentials"`
	Connected      bool `json:"connected"`
}

// ServiceTradeHandler handles credential storage and proxied ServiceTrade
// calls
type ServiceTradeHandler struct {
	credentials repositories.CredentialRepository
	sessions    SessionService
	logger      *zap.Logger
}

// NewServiceTradeHandler creates a new ServiceTradeHandler
func NewServiceTradeHandler(credentials repositories.CredentialRepository, sessions SessionService, logger *zap.Logger) *ServiceTradeHandler {
	return &ServiceTradeHandler{
		credentials: credentials,
		sessions:    sessions,
		logger:      logger,
	}
}

// HandleUpsertCredentials handles PUT /api/v1/companies/{companyID}/servicetrade/credentials
func (h *ServiceTradeHandler) HandleUpsertCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	companyID, err := utils.ParseUUID(chi.URLParam(r, "companyID"), "companyID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondValidationError(w, err, h.logger)
		return
	}

	cred := &models.ServiceTradeCredential{
		CompanyID: companyID,
		Username:  req.Username,
		Secret:    req.Password,
	}
	if err := h.credentials.Upsert(ctx, cred); err != nil {
		h.logger.Error("credential upsert failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	h.logger.Info("servicetrade credentials stored",
		zap.String("request_id", requestID),
		zap.String("company_id", companyID.String()))

	_ = utils.WriteOK(w, cred)
}

// HandleDeleteCredentials handles DELETE /api/v1/companies/{companyID}/servicetrade/credentials.
// Removing credentials also closes any live session.
func (h *ServiceTradeHandler) HandleDeleteCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	companyID, err := utils.ParseUUID(chi.URLParam(r, "companyID"), "companyID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	if err := h.credentials.Delete(ctx, companyID); err != nil {
		h.logger.Error("credential deletion failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	h.sessions.Logout(ctx, companyID)

	utils.WriteNoContent(w)
}

// HandleSessionStatus handles GET /api/v1/companies/{companyID}/servicetrade/session
func (h *ServiceTradeHandler) HandleSessionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	companyID, err := utils.ParseUUID(chi.URLParam(r, "companyID"), "companyID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	cred, err := h.credentials.GetByCompanyID(ctx, companyID)
	if err != nil {
		h.logger.Error("credential lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	token, err := h.sessions.GetSession(ctx, companyID)
	if err != nil {
		h.logger.Warn("servicetrade session check failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadGateway(w, "")
		return
	}

	_ = utils.WriteOK(w, SessionStatusResponse{
		HasCredentials: cred != nil,
		Connected:      token != "",
	})
}

// HandleProxy handles POST /api/v1/companies/{companyID}/servicetrade/proxy.
// The upstream status code and body are relayed as-is; only transport
// faults become a 502.
func (h *ServiceTradeHandler) HandleProxy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	companyID, err := utils.ParseUUID(chi.URLParam(r, "companyID"), "companyID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req ProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondValidationError(w, err, h.logger)
		return
	}
	if !strings.HasPrefix(req.Path, "/") || strings.Contains(req.Path, "://") {
		_ = utils.WriteBadRequest(w, "path must be relative to the ServiceTrade API root", nil)
		return
	}

	cred, err := h.credentials.GetByCompanyID(ctx, companyID)
	if err != nil {
		h.logger.Error("credential lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	var creds *servicetrade.Credentials
	if cred != nil {
		creds = &servicetrade.Credentials{
			Username: cred.Username,
			Password: cred.Secret,
		}
	}

	resp, err := h.sessions.Request(ctx, companyID, req.Method, req.Path, req.Body, creds)
	if err != nil {
		h.logger.Error("servicetrade call failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		_ = utils.WriteBadGateway(w, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
