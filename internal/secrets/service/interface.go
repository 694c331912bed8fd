// Package service provides the secret providers, the vault clients behind them and the
// supporting cache, decryption and audit signing services used by the secret resolver.
package service

import (
	"context"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// Provider is one step of the resolution cascade.
// Attempt returns secretsDomain.ErrNotInProvider when the next provider should be tried.
type Provider interface {
	Source() secretsDomain.Source
	Attempt(ctx context.Context, name string) (string, error)
}

// VaultClient reads a single secret from a remote vault. Errors are classified as
// secretsDomain.ErrVaultNotFound, ErrVaultAccessDenied or ErrVaultUnavailable.
type VaultClient interface {
	GetSecret(ctx context.Context, path string) (string, error)
}

// Decrypter opens sealed values stored in the process environment.
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// AuditSigner signs and verifies audit entries with a key derived from the configured secret.
type AuditSigner interface {
	Sign(key []byte, entry *secretsDomain.AuditEntry) ([]byte, error)
	Verify(key []byte, entry *secretsDomain.AuditEntry) error
}
