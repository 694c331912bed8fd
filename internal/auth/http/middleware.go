package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/allisson/secretgate/internal/auth/usecase"
	apperrors "github.com/allisson/secretgate/internal/errors"
	"github.com/allisson/secretgate/internal/httputil"
	"github.com/allisson/secretgate/internal/logging"
)

const bearerPrefix = "bearer "

var errMalformedAuthorization = apperrors.New("authorization header must use the Bearer scheme")

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// AuthenticationMiddleware requires a valid bearer token in the Authorization header.
//
// The token is handed to the TokenValidator as is. Accepted claims are stored in the request
// context (see GetClaims). Missing, malformed and rejected tokens all answer 401 with the
// rejection kind in the "code" field, so clients can tell an expired token from a bad one.
func AuthenticationMiddleware(validator authUseCase.TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			abortUnauthorized(c, "")
			return
		}

		token, ok := BearerToken(authHeader)
		if !ok {
			logger.Debug("authentication failed: malformed authorization header")
			abortUnauthorized(c, "")
			return
		}

		result := validator.Validate(c.Request.Context(), token)
		if !result.Valid {
			logger.Debug("authentication failed",
				logging.TokenAttr(token),
				slog.String("error_kind", string(result.ErrorKind)))
			abortUnauthorized(c, string(result.ErrorKind))
			return
		}

		ctx := WithClaims(c.Request.Context(), result.Claims)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful", logging.MaskedAttr("subject", result.UserID))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code string) {
	c.Header("WWW-Authenticate", `Bearer realm="secretgate"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.ErrorResponse{
		Error:   "unauthorized",
		Message: "Authentication is required",
		Code:    code,
	})
}
