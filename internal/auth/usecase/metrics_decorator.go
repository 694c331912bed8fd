package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	"github.com/allisson/secretgate/internal/metrics"
)

// tokenValidatorWithMetrics decorates TokenValidator with metrics instrumentation.
type tokenValidatorWithMetrics struct {
	next    TokenValidator
	metrics metrics.BusinessMetrics
}

// NewTokenValidatorWithMetrics wraps a TokenValidator with metrics recording.
func NewTokenValidatorWithMetrics(validator TokenValidator, m metrics.BusinessMetrics) TokenValidator {
	return &tokenValidatorWithMetrics{
		next:    validator,
		metrics: m,
	}
}

// Validate records metrics for token validations. Rejections are recorded as errors.
func (t *tokenValidatorWithMetrics) Validate(ctx context.Context, token string) authDomain.ValidationResult {
	start := time.Now()
	result := t.next.Validate(ctx, token)

	status := "success"
	if !result.Valid {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "token_validate", status)
	t.metrics.RecordDuration(ctx, "auth", "token_validate", time.Since(start), status)

	return result
}
