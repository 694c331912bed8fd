package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	"github.com/allisson/secretgate/internal/auth/http/dto"
	"github.com/allisson/secretgate/internal/auth/usecase/mocks"
)

func setupTokenHandler() (*TokenHandler, *mocks.MockTokenValidator, *gin.Engine) {
	validator := &mocks.MockTokenValidator{}
	handler := NewTokenHandler(validator, createTestLogger())

	router := gin.New()
	router.POST("/v1/auth/validate", handler.ValidateHandler)
	return handler, validator, router
}

func TestTokenHandler_ValidateHandler(t *testing.T) {
	t.Run("Success_TokenFromHeader", func(t *testing.T) {
		_, validator, router := setupTokenHandler()
		validator.On("Validate", mock.Anything, "abc.def.ghi").Return(acceptedResult("user-123")).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/validate", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ValidateTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Valid)
		assert.Equal(t, "user-123", response.UserID)
		require.NotNil(t, response.Claims)
		assert.Equal(t, []string{"secretgate"}, response.Claims.Audience)
		validator.AssertExpectations(t)
	})

	t.Run("Success_TokenFromBody", func(t *testing.T) {
		_, validator, router := setupTokenHandler()
		validator.On("Validate", mock.Anything, "abc.def.ghi").Return(acceptedResult("user-123")).Once()

		body, _ := json.Marshal(dto.ValidateTokenRequest{Token: "abc.def.ghi"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/validate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		validator.AssertExpectations(t)
	})

	t.Run("Success_RejectedTokenReturnsVerdict", func(t *testing.T) {
		_, validator, router := setupTokenHandler()
		validator.On("Validate", mock.Anything, "abc.def.ghi").
			Return(authDomain.Rejected(authDomain.ErrorKindAudienceMismatch)).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/validate", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"valid":false,"error":"audience_mismatch"}`, w.Body.String())
	})

	t.Run("Error_MalformedAuthorizationHeader", func(t *testing.T) {
		_, validator, router := setupTokenHandler()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/validate", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		validator.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		_, _, router := setupTokenHandler()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/validate", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		_, validator, router := setupTokenHandler()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/validate", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		validator.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
	})
}
