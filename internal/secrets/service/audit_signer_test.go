package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

func newSigningSecret(t *testing.T) []byte {
	t.Helper()
	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)
	return secret
}

func newAuditEntry() *secretsDomain.AuditEntry {
	return &secretsDomain.AuditEntry{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		Caller:    "10.0.0.7",
		Name:      "db-password",
		Source:    secretsDomain.SourceVault,
		Outcome:   "success",
		CreatedAt: time.Now().UTC(),
	}
}

func TestAuditSigner_SignAndVerify(t *testing.T) {
	signer := NewAuditSigner()
	secret := newSigningSecret(t)
	entry := newAuditEntry()

	signature, err := signer.Sign(secret, entry)
	require.NoError(t, err)
	assert.Len(t, signature, 32, "HMAC-SHA256 should produce 32-byte signature")

	entry.Signature = signature
	assert.True(t, entry.IsSigned())
	assert.NoError(t, signer.Verify(secret, entry))
}

func TestAuditSigner_VerifyDetectsTampering(t *testing.T) {
	signer := NewAuditSigner()
	secret := newSigningSecret(t)

	tests := []struct {
		name   string
		mutate func(entry *secretsDomain.AuditEntry)
	}{
		{
			name:   "Name",
			mutate: func(entry *secretsDomain.AuditEntry) { entry.Name = "api-token" },
		},
		{
			name:   "Caller",
			mutate: func(entry *secretsDomain.AuditEntry) { entry.Caller = "10.0.0.8" },
		},
		{
			name:   "Source",
			mutate: func(entry *secretsDomain.AuditEntry) { entry.Source = secretsDomain.SourceDefault },
		},
		{
			name:   "Outcome",
			mutate: func(entry *secretsDomain.AuditEntry) { entry.Outcome = "not_found" },
		},
		{
			name:   "RequestID",
			mutate: func(entry *secretsDomain.AuditEntry) { entry.RequestID = uuid.Must(uuid.NewV7()) },
		},
		{
			name: "CreatedAt",
			mutate: func(entry *secretsDomain.AuditEntry) {
				entry.CreatedAt = entry.CreatedAt.Add(time.Second)
			},
		},
	}

	for _, tt := range tests {
		t.Run("Error_Tampered"+tt.name, func(t *testing.T) {
			entry := newAuditEntry()
			signature, err := signer.Sign(secret, entry)
			require.NoError(t, err)
			entry.Signature = signature

			tt.mutate(entry)

			assert.ErrorIs(t, signer.Verify(secret, entry), secretsDomain.ErrSignatureInvalid)
		})
	}
}

func TestAuditSigner_FieldBoundariesAreUnambiguous(t *testing.T) {
	signer := NewAuditSigner()
	secret := newSigningSecret(t)

	first := newAuditEntry()
	first.Caller = "ab"
	first.Name = "c"

	second := *first
	second.Caller = "a"
	second.Name = "bc"

	sig1, err := signer.Sign(secret, first)
	require.NoError(t, err)
	sig2, err := signer.Sign(secret, &second)
	require.NoError(t, err)

	assert.NotEqual(t, sig1, sig2)
}

func TestAuditSigner_DifferentSecretsProduceDifferentSignatures(t *testing.T) {
	signer := NewAuditSigner()
	entry := newAuditEntry()

	sig1, err := signer.Sign(newSigningSecret(t), entry)
	require.NoError(t, err)
	sig2, err := signer.Sign(newSigningSecret(t), entry)
	require.NoError(t, err)

	assert.NotEqual(t, sig1, sig2)
}

func TestAuditSigner_ConsistentSignatures(t *testing.T) {
	signer := NewAuditSigner()
	secret := newSigningSecret(t)
	entry := newAuditEntry()

	sig1, err := signer.Sign(secret, entry)
	require.NoError(t, err)
	sig2, err := signer.Sign(secret, entry)
	require.NoError(t, err)

	assert.Equal(t, sig1, sig2)
}

func TestAuditSigner_UnicodeFields(t *testing.T) {
	signer := NewAuditSigner()
	secret := newSigningSecret(t)
	entry := newAuditEntry()
	entry.Caller = "usuário-東京"

	signature, err := signer.Sign(secret, entry)
	require.NoError(t, err)
	entry.Signature = signature

	assert.NoError(t, signer.Verify(secret, entry))
}

func TestAuditSigner_VerifyWithWrongSecret(t *testing.T) {
	signer := NewAuditSigner()
	entry := newAuditEntry()

	signature, err := signer.Sign(newSigningSecret(t), entry)
	require.NoError(t, err)
	entry.Signature = signature

	assert.ErrorIs(t, signer.Verify(newSigningSecret(t), entry), secretsDomain.ErrSignatureInvalid)
}

func TestAuditSigner_EmptySecret(t *testing.T) {
	signer := NewAuditSigner()

	_, err := signer.Sign(nil, newAuditEntry())

	assert.Error(t, err)
}
