package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

type auditSigner struct{}

// NewAuditSigner creates a new HMAC-based audit entry signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the configured secret.
// Info parameter: "audit-log-signing-v1" (versioned for future algorithm changes).
func (a *auditSigner) deriveSigningKey(secret []byte) ([]byte, error) {
	info := []byte("audit-log-signing-v1")
	reader := hkdf.New(sha256.New, secret, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeEntry converts an audit entry to its canonical byte representation.
// Format: id || request_id || caller || name || source || outcome || created_at
// Variable-length fields are length-prefixed so adjacent fields cannot be shifted.
func (a *auditSigner) canonicalizeEntry(entry *secretsDomain.AuditEntry) []byte {
	buf := make([]byte, 0, 256)

	buf = append(buf, entry.ID[:]...)
	buf = append(buf, entry.RequestID[:]...)
	buf = appendLengthPrefixed(buf, []byte(entry.Caller))
	buf = appendLengthPrefixed(buf, []byte(entry.Name))
	buf = appendLengthPrefixed(buf, []byte(entry.Source))
	buf = appendLengthPrefixed(buf, []byte(entry.Outcome))

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(entry.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates the HMAC-SHA256 signature for the audit entry.
func (a *auditSigner) Sign(secret []byte, entry *secretsDomain.AuditEntry) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("audit signing secret is empty")
	}

	signingKey, err := a.deriveSigningKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer zero(signingKey)

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(a.canonicalizeEntry(entry))
	return mac.Sum(nil), nil
}

// Verify returns nil when the stored signature matches, ErrSignatureInvalid otherwise.
func (a *auditSigner) Verify(secret []byte, entry *secretsDomain.AuditEntry) error {
	expectedSig, err := a.Sign(secret, entry)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(entry.Signature, expectedSig) {
		return secretsDomain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites key material once it is no longer needed.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
