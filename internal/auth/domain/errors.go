package domain

import (
	"github.com/allisson/secretgate/internal/errors"
)

// Token decoding and verification errors.
var (
	// ErrMalformedToken indicates the token is not three decodable JOSE segments.
	ErrMalformedToken = errors.Wrap(errors.ErrUnauthorized, "malformed token")

	// ErrInvalidSignature indicates the signature does not verify against the key.
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid token signature")
)

// Key resolution errors. Each failure mode of the key set source is reported distinctly.
var (
	// ErrKeyNotFound indicates no signing key carries the requested key id, even after a refresh.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "signing key not found")

	// ErrNoMatchingKey indicates no key in the set verified the token signature.
	ErrNoMatchingKey = errors.Wrap(errors.ErrUnauthorized, "no signing key verified the token")

	// ErrKeySetUnreachable indicates the key set source could not be reached or answered non-200.
	ErrKeySetUnreachable = errors.Wrap(errors.ErrServiceUnavailable, "key set source unreachable")

	// ErrKeySetMalformed indicates the key set payload is not a valid JWKS document.
	ErrKeySetMalformed = errors.New("key set payload is malformed")

	// ErrKeySetEmpty indicates the key set holds no usable signing key.
	ErrKeySetEmpty = errors.New("key set has no usable signing keys")
)
