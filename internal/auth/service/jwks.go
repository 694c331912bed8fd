package service

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/go-jose/go-jose/v4"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	apperrors "github.com/allisson/secretgate/internal/errors"
)

const keyTypeRSA = "RSA"

// keySetDocument keeps entries raw so that one bad key does not reject the whole set.
type keySetDocument struct {
	Keys []json.RawMessage `json:"keys"`
}

// x5cOnlyKey is the part of an entry needed when it carries a certificate chain but no n/e.
type x5cOnlyKey struct {
	KeyType   string   `json:"kty"`
	Use       string   `json:"use,omitempty"`
	KeyID     string   `json:"kid,omitempty"`
	Algorithm string   `json:"alg,omitempty"`
	Modulus   string   `json:"n,omitempty"`
	Exponent  string   `json:"e,omitempty"`
	X5C       []string `json:"x5c,omitempty"`
}

// ParseKeySet parses a JWKS document. Non-RSA and unparseable entries are skipped. Returns
// ErrKeySetMalformed for invalid JSON or a missing "keys" array and ErrKeySetEmpty when no
// signing-capable key remains.
func ParseKeySet(data []byte) ([]authDomain.SigningKey, error) {
	var doc keySetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", authDomain.ErrKeySetMalformed, err)
	}
	if doc.Keys == nil {
		return nil, fmt.Errorf(`%w: missing "keys" array`, authDomain.ErrKeySetMalformed)
	}

	keys := make([]authDomain.SigningKey, 0, len(doc.Keys))
	signing := 0
	for _, raw := range doc.Keys {
		jwk, err := decodeJWK(raw)
		if err != nil {
			continue
		}
		key, ok := signingKeyFrom(jwk)
		if !ok {
			continue
		}
		if key.CanSign() {
			signing++
		}
		keys = append(keys, key)
	}

	if signing == 0 {
		return nil, authDomain.ErrKeySetEmpty
	}
	return keys, nil
}

// decodeJWK decodes one entry with go-jose, which checks that n/e and the x5c leaf agree.
// go-jose requires n/e on RSA keys, so certificate-only entries take their key from the leaf.
func decodeJWK(raw json.RawMessage) (jose.JSONWebKey, error) {
	var jwk jose.JSONWebKey
	err := jwk.UnmarshalJSON(raw)
	if err == nil {
		return jwk, nil
	}

	var entry x5cOnlyKey
	if json.Unmarshal(raw, &entry) != nil ||
		entry.KeyType != keyTypeRSA || entry.Modulus != "" || entry.Exponent != "" || len(entry.X5C) == 0 {
		return jose.JSONWebKey{}, err
	}
	return entry.fromCertificate()
}

func (k x5cOnlyKey) fromCertificate() (jose.JSONWebKey, error) {
	der, err := base64.StdEncoding.DecodeString(k.X5C[0])
	if err != nil {
		return jose.JSONWebKey{}, apperrors.Wrap(err, "invalid x5c encoding")
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return jose.JSONWebKey{}, apperrors.Wrap(err, "invalid x5c certificate")
	}

	jwk := jose.JSONWebKey{
		Key:          cert.PublicKey,
		KeyID:        k.KeyID,
		Algorithm:    k.Algorithm,
		Use:          k.Use,
		Certificates: []*x509.Certificate{cert},
	}
	if !jwk.Valid() {
		return jose.JSONWebKey{}, apperrors.New("x5c certificate holds an unusable key")
	}
	return jwk, nil
}

// signingKeyFrom keeps RSA public keys with a sane exponent and drops everything else.
func signingKeyFrom(jwk jose.JSONWebKey) (authDomain.SigningKey, bool) {
	pub, ok := jwk.Key.(*rsa.PublicKey)
	if !ok || pub.N == nil || pub.N.Sign() <= 0 || pub.E < 2 {
		return authDomain.SigningKey{}, false
	}
	return authDomain.SigningKey{
		ID:        jwk.KeyID,
		Algorithm: jwk.Algorithm,
		Use:       jwk.Use,
		Key:       pub,
	}, true
}
