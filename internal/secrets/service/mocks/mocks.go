// Package mocks provides testify doubles for the secret service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// MockProvider is a mock implementation of service.Provider.
type MockProvider struct {
	mock.Mock
	SourceValue secretsDomain.Source
}

// Source returns the configured source without recording a call.
func (m *MockProvider) Source() secretsDomain.Source {
	return m.SourceValue
}

// Attempt mocks the Attempt method.
func (m *MockProvider) Attempt(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// MockVaultClient is a mock implementation of service.VaultClient.
type MockVaultClient struct {
	mock.Mock
}

// GetSecret mocks the GetSecret method.
func (m *MockVaultClient) GetSecret(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// MockDecrypter is a mock implementation of service.Decrypter.
type MockDecrypter struct {
	mock.Mock
}

// Decrypt mocks the Decrypt method.
func (m *MockDecrypter) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockAuditSigner is a mock implementation of service.AuditSigner.
type MockAuditSigner struct {
	mock.Mock
}

// Sign mocks the Sign method.
func (m *MockAuditSigner) Sign(key []byte, entry *secretsDomain.AuditEntry) ([]byte, error) {
	args := m.Called(key, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Verify mocks the Verify method.
func (m *MockAuditSigner) Verify(key []byte, entry *secretsDomain.AuditEntry) error {
	args := m.Called(key, entry)
	return args.Error(0)
}
