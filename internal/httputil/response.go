// Package httputil holds the Gin helpers shared by every handler: error responses,
// list query parsing and request ids.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/secretgate/internal/errors"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	status  int
	code    string
	message string
}

// errorMappings turns a classified error into a reply. A mapping without a message echoes
// the error text, which is reserved for caller mistakes.
var errorMappings = map[error]errorMapping{
	apperrors.ErrNotFound:     {http.StatusNotFound, "not_found", "The requested resource was not found"},
	apperrors.ErrInvalidInput: {http.StatusUnprocessableEntity, "invalid_input", ""},
	apperrors.ErrUnauthorized: {http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	apperrors.ErrForbidden: {
		http.StatusForbidden, "forbidden", "You don't have permission to access this resource",
	},
	apperrors.ErrTooManyRequests: {http.StatusTooManyRequests, "rate_limited", "Too many requests, retry later"},
	apperrors.ErrServiceUnavailable: {
		http.StatusServiceUnavailable, "service_unavailable", "An upstream dependency is unavailable",
	},
}

var internalErrorMapping = errorMapping{http.StatusInternalServerError, "internal_error", "An internal error occurred"}

// HandleErrorGin writes the reply for err. Unclassified errors become a 500 whose body
// hides the cause; the cause is logged with the request id.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	mapping, ok := errorMappings[apperrors.Classify(err)]
	if !ok {
		mapping = internalErrorMapping
	}
	message := mapping.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if mapping.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.String("request_id", requestid.Get(c)),
			slog.Int("status_code", mapping.status),
			slog.String("error_code", mapping.code),
			slog.Any("error", err),
		)
	}

	c.JSON(mapping.status, ErrorResponse{Error: mapping.code, Message: message})
}

// HandleBadRequestGin writes a 400 for a body or parameter that could not be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", err, logger)
}

// HandleValidationErrorGin writes a 422 for input that parsed but failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", err, logger)
}

func writeClientError(c *gin.Context, status int, code string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("rejected request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
