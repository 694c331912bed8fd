// Package http provides HTTP handlers for secret lookup and the resolution audit trail.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/secretgate/internal/auth/http"
	"github.com/allisson/secretgate/internal/httputil"
	"github.com/allisson/secretgate/internal/logging"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
	"github.com/allisson/secretgate/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/secretgate/internal/secrets/usecase"
)

// SecretHandler handles HTTP requests for secret lookups.
type SecretHandler struct {
	resolver secretsUseCase.SecretResolver
	logger   *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(resolver secretsUseCase.SecretResolver, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// GetHandler resolves a secret by name.
// GET /v1/secrets/:name - Returns {success, value?, error?, source?}.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	output := h.resolver.Resolve(c.Request.Context(), h.resolveInput(c))
	h.respond(c, output)
}

// RefreshHandler evicts the cached value and resolves the secret again.
// POST /v1/secrets/:name/refresh - Same response shape as GetHandler.
func (h *SecretHandler) RefreshHandler(c *gin.Context) {
	output := h.resolver.Refresh(c.Request.Context(), h.resolveInput(c))
	h.respond(c, output)
}

func (h *SecretHandler) resolveInput(c *gin.Context) secretsDomain.ResolveInput {
	return secretsDomain.ResolveInput{
		Name:      c.Param("name"),
		Caller:    authHTTP.Caller(c),
		RequestID: httputil.RequestID(c),
	}
}

func (h *SecretHandler) respond(c *gin.Context, output secretsDomain.ResolveOutput) {
	statusCode := statusForOutput(output)
	if statusCode >= http.StatusInternalServerError {
		h.logger.Warn("secret resolution failed",
			logging.MaskedAttr("name", c.Param("name")),
			slog.String("error_kind", string(output.ErrorKind)),
			slog.Int("status_code", statusCode))
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(statusCode, dto.MapResolveOutputToResponse(output))
}

// statusForOutput maps a resolution outcome to an HTTP status code.
func statusForOutput(output secretsDomain.ResolveOutput) int {
	if output.Success {
		return http.StatusOK
	}

	switch output.ErrorKind {
	case secretsDomain.ErrorKindNameNotAllowed, secretsDomain.ErrorKindAccessDenied:
		return http.StatusForbidden
	case secretsDomain.ErrorKindNotFound:
		return http.StatusNotFound
	case secretsDomain.ErrorKindCircuitOpen:
		return http.StatusServiceUnavailable
	case secretsDomain.ErrorKindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
