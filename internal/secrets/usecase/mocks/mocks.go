// Package mocks provides testify doubles for the secrets use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
	secretsUsecase "github.com/allisson/secretgate/internal/secrets/usecase"
)

// MockSecretResolver is a mock implementation of usecase.SecretResolver.
type MockSecretResolver struct {
	mock.Mock
}

// Resolve mocks the Resolve method.
func (m *MockSecretResolver) Resolve(
	ctx context.Context,
	input secretsDomain.ResolveInput,
) secretsDomain.ResolveOutput {
	args := m.Called(ctx, input)
	return args.Get(0).(secretsDomain.ResolveOutput)
}

// Refresh mocks the Refresh method.
func (m *MockSecretResolver) Refresh(
	ctx context.Context,
	input secretsDomain.ResolveInput,
) secretsDomain.ResolveOutput {
	args := m.Called(ctx, input)
	return args.Get(0).(secretsDomain.ResolveOutput)
}

// MockAuditLogUseCase is a mock implementation of usecase.AuditLogUseCase.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockAuditLogUseCase) Record(
	ctx context.Context,
	input secretsDomain.ResolveInput,
	output secretsDomain.ResolveOutput,
) error {
	args := m.Called(ctx, input, output)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*secretsDomain.AuditEntry, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.AuditEntry), args.Error(1)
}

// VerifyBatch mocks the VerifyBatch method.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*secretsUsecase.VerificationReport, error) {
	args := m.Called(ctx, startTime, endTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsUsecase.VerificationReport), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of usecase.AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuditRepository) Create(ctx context.Context, entry *secretsDomain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*secretsDomain.AuditEntry, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.AuditEntry), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockTxManager is a mock implementation of database.TxManager. Unless an error is
// configured it runs fn with the given context.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// WithSnapshot mocks the WithSnapshot method.
func (m *MockTxManager) WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
