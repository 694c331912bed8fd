// Package service provides the technical services behind bearer-token validation: fetching
// and caching the remote JSON Web Key Set, and decoding and verifying RS-signed tokens.
package service

import (
	"context"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

// KeyResolver resolves signing keys from a cached remote key set.
type KeyResolver interface {
	// Resolve returns the signing key with the given key id. On a cache miss the key set is
	// refreshed once before ErrKeyNotFound is returned.
	Resolve(ctx context.Context, kid string) (authDomain.SigningKey, error)

	// ResolveByTrial offers every signing-capable key, in source order, to verify and returns
	// the first one it accepts. Returns ErrNoMatchingKey when none does.
	ResolveByTrial(ctx context.Context, verify func(authDomain.SigningKey) error) (authDomain.SigningKey, error)

	// Refresh fetches the key set now and replaces the cached snapshot.
	Refresh(ctx context.Context) error

	// Invalidate drops the cached snapshot so the next resolution fetches again.
	Invalidate()
}

// TokenParser decodes compact tokens and verifies their signatures.
type TokenParser interface {
	// Decode splits and parses the token without checking the signature.
	// Returns ErrMalformedToken for anything that is not three decodable segments.
	Decode(token string) (*authDomain.DecodedToken, error)

	// Verify checks the token signature against key. Returns ErrInvalidSignature on mismatch.
	Verify(token string, key authDomain.SigningKey) error
}
