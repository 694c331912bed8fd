// Package http provides the bearer-token middleware, the rate-limit middleware and the token
// validation endpoint.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

// claimsKey is a context key type for storing verified token claims.
type claimsKey struct{}

// WithClaims stores verified claims in the context.
// This is typically called by the authentication middleware after a token is accepted.
func WithClaims(ctx context.Context, claims *authDomain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves verified claims from the context.
// Returns (claims, true) if claims are present, or (nil, false) if none were set.
func GetClaims(ctx context.Context) (*authDomain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authDomain.Claims)
	return claims, ok && claims != nil
}

// Caller returns the identity a request is attributed to: the token subject when the request
// was authenticated, the client IP otherwise.
func Caller(c *gin.Context) string {
	if claims, ok := GetClaims(c.Request.Context()); ok && claims.Subject != "" {
		return claims.Subject
	}
	return c.ClientIP()
}
