package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/claraconfirms/backend/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxGuardBodyBytes caps how much of a request body the tenant guard will
// inspect when looking for a company identifier.
const maxGuardBodyBytes = 1 << 20

// RequireRole returns a middleware that rejects principals whose role is not
// among the allowed ones. Requires a principal (401 when absent).
func (m *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := GetPrincipalFromContext(ctx)
			if principal == nil {
				m.logger.Error("principal not found in context",
					zap.String("request_id", GetRequestIDFromContext(ctx)))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.logger.Warn("insufficient permissions",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Strings("required_roles", roles),
				zap.String("user_role", principal.Role))
			_ = utils.WriteForbidden(w, "Insufficient permissions")
		})
	}
}

// RequireCompanyMatch returns a middleware that rejects requests whose
// explicit company identifier does not match the principal's company.
// The identifier is read from the named path parameter, then the JSON body,
// then the query string, in that precedence order. A request that names no
// company passes; the guard only rejects an explicit mismatch.
func (m *AuthMiddleware) RequireCompanyMatch(fieldName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := GetPrincipalFromContext(ctx)
			if principal == nil {
				m.logger.Error("principal not found in context",
					zap.String("request_id", GetRequestIDFromContext(ctx)))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			claimed := requestCompanyID(r, fieldName)
			if claimed != "" && claimed != principal.CompanyID.String() {
				m.logger.Warn("company mismatch",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.String("claimed", claimed),
					zap.String("principal_company", principal.CompanyID.String()))
				_ = utils.WriteForbidden(w, "Access to this company is not permitted")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestCompanyID extracts the company identifier a request claims, from
// path parameter, body, or query string, in that precedence order.
func requestCompanyID(r *http.Request, fieldName string) string {
	if v := chi.URLParam(r, fieldName); v != "" {
		return v
	}
	if v := bodyField(r, fieldName); v != "" {
		return v
	}
	return r.URL.Query().Get(fieldName)
}

// bodyField peeks at a JSON request body for a single string field, restoring
// the body for downstream handlers.
func bodyField(r *http.Request, fieldName string) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxGuardBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}

	var value string
	if err := json.Unmarshal(fields[fieldName], &value); err != nil {
		return ""
	}
	return value
}
