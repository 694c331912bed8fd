package domain

import (
	"crypto/rsa"
)

// KeyUseSignature is the JWK "use" value of signing keys.
const KeyUseSignature = "sig"

// SigningKey is one public key of a fetched key set. Entries are never mutated after parsing.
type SigningKey struct {
	ID        string
	Algorithm string
	Use       string
	Key       *rsa.PublicKey
}

// CanSign reports whether the key may verify signatures. Keys without "use" qualify.
func (k SigningKey) CanSign() bool {
	return k.Key != nil && (k.Use == "" || k.Use == KeyUseSignature)
}
