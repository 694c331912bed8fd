package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/secretgate/internal/auth/http/dto"
	authUseCase "github.com/allisson/secretgate/internal/auth/usecase"
	"github.com/allisson/secretgate/internal/httputil"
	customValidation "github.com/allisson/secretgate/internal/validation"
)

// TokenHandler exposes the token validator over HTTP.
type TokenHandler struct {
	validator authUseCase.TokenValidator
	logger    *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(validator authUseCase.TokenValidator, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		validator: validator,
		logger:    logger,
	}
}

// ValidateHandler validates a bearer token and returns the verdict.
// POST /v1/auth/validate - token from the Authorization header, or {"token": "..."} in the body.
// Returns 200 OK for an accepted token and 401 Unauthorized with the same body shape otherwise.
func (h *TokenHandler) ValidateHandler(c *gin.Context) {
	var req dto.ValidateTokenRequest

	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := BearerToken(header)
		if !ok {
			httputil.HandleBadRequestGin(c, errMalformedAuthorization, h.logger)
			return
		}
		req.Token = token
	} else if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result := h.validator.Validate(c.Request.Context(), req.Token)
	response := dto.MapValidationResultToResponse(result)

	if !result.Valid {
		c.JSON(http.StatusUnauthorized, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
