package httputil

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/secretgate/internal/errors"
)

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "NotFound",
			err:          apperrors.Wrap(apperrors.ErrNotFound, "secret missing"),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"not_found","message":"The requested resource was not found"}`,
		},
		{
			name:         "InvalidInput",
			err:          apperrors.Wrap(apperrors.ErrInvalidInput, "days must be positive"),
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `{"error":"invalid_input","message":"days must be positive: invalid input"}`,
		},
		{
			name:         "Unauthorized",
			err:          apperrors.ErrUnauthorized,
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"unauthorized","message":"Authentication is required"}`,
		},
		{
			name:         "Forbidden",
			err:          apperrors.Wrap(apperrors.ErrForbidden, "secret name not allowed"),
			expectedCode: http.StatusForbidden,
			expectedBody: `{"error":"forbidden","message":"You don't have permission to access this resource"}`,
		},
		{
			name:         "TooManyRequests",
			err:          apperrors.ErrTooManyRequests,
			expectedCode: http.StatusTooManyRequests,
			expectedBody: `{"error":"rate_limited","message":"Too many requests, retry later"}`,
		},
		{
			name:         "ServiceUnavailable",
			err:          apperrors.Wrap(apperrors.ErrServiceUnavailable, "vault down"),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"error":"service_unavailable","message":"An upstream dependency is unavailable"}`,
		},
		{
			name:         "UnknownError",
			err:          errors.New("dial tcp 10.0.0.1:8200: connection refused"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"internal_error","message":"An internal error occurred"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/v1/secrets/region", nil)

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}

	t.Run("NilError", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleErrorGin(c, nil, logger)

		assert.Empty(t, w.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodPost, "/v1/auth/validate", nil)

	HandleBadRequestGin(c, errors.New("invalid offset parameter"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"invalid offset parameter"}`, w.Body.String())
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodPost, "/v1/auth/validate", nil)

	HandleValidationErrorGin(c, errors.New("token: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"token: cannot be blank"}`, w.Body.String())
}

func TestHandleErrorGin_LogsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		err           error
		expectedLevel string
	}{
		{name: "ClientError", err: apperrors.ErrForbidden, expectedLevel: "level=WARN"},
		{name: "ServerError", err: errors.New("boom"), expectedLevel: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/v1/secrets/region", nil)

			HandleErrorGin(c, tt.err, logger)

			assert.Contains(t, buf.String(), tt.expectedLevel)
			assert.Contains(t, buf.String(), "request failed")
		})
	}
}
