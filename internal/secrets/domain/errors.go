// Package domain defines core domain models and errors for secret resolution.
package domain

import (
	"github.com/allisson/secretgate/internal/errors"
)

// Secret resolution error definitions.
var (
	// ErrNameNotAllowed indicates the requested name is not in the catalog allow-list.
	ErrNameNotAllowed = errors.Wrap(errors.ErrForbidden, "secret name not allowed")

	// ErrSecretNotFound indicates no provider in the cascade produced a value.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrNotInProvider tells the resolver to move on to the next provider.
	ErrNotInProvider = errors.New("secret not available from provider")

	// ErrVaultNotFound indicates the vault answered that the secret does not exist.
	ErrVaultNotFound = errors.Wrap(errors.ErrNotFound, "secret not found in vault")

	// ErrVaultAccessDenied indicates the vault refused access to the secret.
	ErrVaultAccessDenied = errors.Wrap(errors.ErrForbidden, "vault access denied")

	// ErrVaultUnavailable indicates a transport or server failure talking to the vault.
	ErrVaultUnavailable = errors.Wrap(errors.ErrServiceUnavailable, "vault unavailable")

	// ErrSealedValueInvalid indicates an enc: environment value could not be decoded or decrypted.
	ErrSealedValueInvalid = errors.Wrap(errors.ErrInvalidInput, "sealed secret value is invalid")

	// ErrSignatureInvalid indicates an audit entry signature does not match its content.
	ErrSignatureInvalid = errors.New("audit entry signature is invalid")

	// ErrInvalidCatalog indicates the secret catalog failed validation.
	ErrInvalidCatalog = errors.Wrap(errors.ErrInvalidInput, "invalid secret catalog")
)
