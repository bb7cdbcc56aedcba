package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("writes status and body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := WriteJSON(rec, 200, map[string]string{"key": "value"})
		require.NoError(t, err)

		assert.Equal(t, 200, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "value", body["key"])
	})

	t.Run("nil data writes no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := WriteJSON(rec, 204, nil)
		require.NoError(t, err)

		assert.Equal(t, 204, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(rec *httptest.ResponseRecorder) error
		wantStatus int
		wantError  string
	}{
		{
			name: "unauthorized",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteUnauthorized(rec, "nope")
			},
			wantStatus: 401,
			wantError:  "unauthorized",
		},
		{
			name: "forbidden default message",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteForbidden(rec, "")
			},
			wantStatus: 403,
			wantError:  "forbidden",
		},
		{
			name: "not found",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteNotFound(rec, "missing")
			},
			wantStatus: 404,
			wantError:  "not_found",
		},
		{
			name: "bad gateway",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteBadGateway(rec, "")
			},
			wantStatus: 502,
			wantError:  "bad_gateway",
		},
		{
			name: "internal server error",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteInternalServerError(rec, "")
			},
			wantStatus: 500,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, tt.write(rec))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestWriteBadRequestDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteBadRequest(rec, "invalid input", map[string]interface{}{"email": "required"})
	require.NoError(t, err)

	assert.Equal(t, 400, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bad_request", resp.Error)
	assert.Equal(t, "required", resp.Details["email"])
}
