// Package usecase defines business logic interfaces for bearer-token validation.
package usecase

import (
	"context"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

// TokenValidator turns an opaque bearer token into a verdict.
type TokenValidator interface {
	// Validate decodes the token, resolves its signing key, verifies the signature and checks
	// the claims in a fixed order. It never returns an error: every failure is reported as a
	// rejected ValidationResult carrying the matching ErrorKind.
	Validate(ctx context.Context, token string) authDomain.ValidationResult
}
