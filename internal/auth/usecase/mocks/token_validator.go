// Package mocks provides testify doubles for the auth use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

// MockTokenValidator is a mock implementation of usecase.TokenValidator.
type MockTokenValidator struct {
	mock.Mock
}

// Validate mocks the Validate method.
func (m *MockTokenValidator) Validate(ctx context.Context, token string) authDomain.ValidationResult {
	args := m.Called(ctx, token)
	return args.Get(0).(authDomain.ValidationResult)
}
