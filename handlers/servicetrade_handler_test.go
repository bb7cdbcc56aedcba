package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/servicetrade"
)

func serviceTradeTestRouter(handler *ServiceTradeHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/companies/{companyID}/servicetrade", func(r chi.Router) {
		r.Put("/credentials", handler.HandleUpsertCredentials)
		r.Delete("/credentials", handler.HandleDeleteCredentials)
		r.Get("/session", handler.HandleSessionStatus)
		r.Post("/proxy", handler.HandleProxy)
	})
	return r
}

func TestHandleUpsertCredentials(t *testing.T) {
	companyID := uuid.New()

	t.Run("stores credentials", func(t *testing.T) {
		credentials := new(MockCredentialRepository)
		handler := NewServiceTradeHandler(credentials, new(MockSessionService), zap.NewNop())

		credentials.On("Upsert", mock.Anything, mock.MatchedBy(func(c *models.ServiceTradeCredential) bool {
			return c.CompanyID == companyID && c.Username == "st-user" && c.Secret == "st-pass"
		})).Return(nil)

		body := `{"username":"st-user","password":"st-pass"}`
		req := httptest.NewRequest(http.MethodPut, "/companies/"+companyID.String()+"/servicetrade/credentials", strings.NewReader(body))
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		// secret never serializes back
		assert.NotContains(t, rec.Body.String(), "st-pass")
		credentials.AssertExpectations(t)
	})

	t.Run("missing password fails validation", func(t *testing.T) {
		handler := NewServiceTradeHandler(new(MockCredentialRepository), new(MockSessionService), zap.NewNop())

		body := `{"username":"st-user"}`
		req := httptest.NewRequest(http.MethodPut, "/companies/"+companyID.String()+"/servicetrade/credentials", strings.NewReader(body))
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDeleteCredentials(t *testing.T) {
	companyID := uuid.New()

	credentials := new(MockCredentialRepository)
	sessions := new(MockSessionService)
	handler := NewServiceTradeHandler(credentials, sessions, zap.NewNop())

	credentials.On("Delete", mock.Anything, companyID).Return(nil)
	sessions.On("Logout", mock.Anything, companyID).Return()

	req := httptest.NewRequest(http.MethodDelete, "/companies/"+companyID.String()+"/servicetrade/credentials", nil)
	rec := httptest.NewRecorder()

	serviceTradeTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	sessions.AssertCalled(t, "Logout", mock.Anything, companyID)
}

func TestHandleSessionStatus(t *testing.T) {
	companyID := uuid.New()

	t.Run("connected with credentials", func(t *testing.T) {
		credentials := new(MockCredentialRepository)
		sessions := new(MockSessionService)
		handler := NewServiceTradeHandler(credentials, sessions, zap.NewNop())

		credentials.On("GetByCompanyID", mock.Anything, companyID).Return(&models.ServiceTradeCredential{
			CompanyID: companyID,
			Username:  "st-user",
		}, nil)
		sessions.On("GetSession", mock.Anything, companyID).Return("sess-1", nil)

		req := httptest.NewRequest(http.MethodGet, "/companies/"+companyID.String()+"/servicetrade/session", nil)
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"has_credentials":true`)
		assert.Contains(t, rec.Body.String(), `"connected":true`)
	})

	t.Run("no credentials and no session", func(t *testing.T) {
		credentials := new(MockCredentialRepository)
		sessions := new(MockSessionService)
		handler := NewServiceTradeHandler(credentials, sessions, zap.NewNop())

		credentials.On("GetByCompanyID", mock.Anything, companyID).Return(nil, nil)
		sessions.On("GetSession", mock.Anything, companyID).Return("", nil)

		req := httptest.NewRequest(http.MethodGet, "/companies/"+companyID.String()+"/servicetrade/session", nil)
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"has_credentials":false`)
		assert.Contains(t, rec.Body.String(), `"connected":false`)
	})
}

func TestHandleProxy(t *testing.T) {
	companyID := uuid.New()

	t.Run("relays upstream status and body", func(t *testing.T) {
		credentials := new(MockCredentialRepository)
		sessions := new(MockSessionService)
		handler := NewServiceTradeHandler(credentials, sessions, zap.NewNop())

		credentials.On("GetByCompanyID", mock.Anything, companyID).Return(&models.ServiceTradeCredential{
			CompanyID: companyID,
			Username:  "st-user",
			Secret:    "st-pass",
		}, nil)
		sessions.On("Request", mock.Anything, companyID, http.MethodGet, "/job/42", mock.Anything,
			&servicetrade.Credentials{Username: "st-user", Password: "st-pass"}).
			Return(&servicetrade.Response{StatusCode: http.StatusOK, Body: []byte(`{"data":{"id":42}}`)}, nil)

		body := `{"method":"GET","path":"/job/42"}`
		req := httptest.NewRequest(http.MethodPost, "/companies/"+companyID.String()+"/servicetrade/proxy", strings.NewReader(body))
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"id":42}}`, rec.Body.String())
	})

	t.Run("missing credentials pass nil to the session manager", func(t *testing.T) {
		credentials := new(MockCredentialRepository)
		sessions := new(MockSessionService)
		handler := NewServiceTradeHandler(credentials, sessions, zap.NewNop())

		credentials.On("GetByCompanyID", mock.Anything, companyID).Return(nil, nil)
		sessions.On("Request", mock.Anything, companyID, http.MethodGet, "/job/42", mock.Anything,
			(*servicetrade.Credentials)(nil)).
			Return(&servicetrade.Response{StatusCode: http.StatusUnauthorized, Body: []byte(`{"error":"not authenticated with servicetrade"}`)}, nil)

		body := `{"method":"GET","path":"/job/42"}`
		req := httptest.NewRequest(http.MethodPost, "/companies/"+companyID.String()+"/servicetrade/proxy", strings.NewReader(body))
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("absolute path rejected", func(t *testing.T) {
		handler := NewServiceTradeHandler(new(MockCredentialRepository), new(MockSessionService), zap.NewNop())

		body := `{"method":"GET","path":"https://evil.example.com/steal"}`
		req := httptest.NewRequest(http.MethodPost, "/companies/"+companyID.String()+"/servicetrade/proxy", strings.NewReader(body))
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("transport fault maps to 502", func(t *testing.T) {
		credentials := new(MockCredentialRepository)
		sessions := new(MockSessionService)
		handler := NewServiceTradeHandler(credentials, sessions, zap.NewNop())

		credentials.On("GetByCompanyID", mock.Anything, companyID).Return(nil, nil)
		sessions.On("Request", mock.Anything, companyID, http.MethodGet, "/job/42", mock.Anything,
			(*servicetrade.Credentials)(nil)).
			Return(nil, assert.AnError)

		body := `{"method":"GET","path":"/job/42"}`
		req := httptest.NewRequest(http.MethodPost, "/companies/"+companyID.String()+"/servicetrade/proxy", strings.NewReader(body))
		rec := httptest.NewRecorder()

		serviceTradeTestRouter(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
