package usecase

import (
	"context"
	"time"

	"github.com/allisson/secretgate/internal/metrics"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// secretResolverWithMetrics decorates SecretResolver with metrics instrumentation.
type secretResolverWithMetrics struct {
	next    SecretResolver
	metrics metrics.BusinessMetrics
}

// NewSecretResolverWithMetrics wraps a SecretResolver with metrics recording.
func NewSecretResolverWithMetrics(resolver SecretResolver, m metrics.BusinessMetrics) SecretResolver {
	return &secretResolverWithMetrics{
		next:    resolver,
		metrics: m,
	}
}

// Resolve records metrics for secret resolution.
func (s *secretResolverWithMetrics) Resolve(
	ctx context.Context,
	input secretsDomain.ResolveInput,
) secretsDomain.ResolveOutput {
	start := time.Now()
	output := s.next.Resolve(ctx, input)
	s.record(ctx, "secret_resolve", start, output)
	return output
}

// Refresh records metrics for forced secret refreshes.
func (s *secretResolverWithMetrics) Refresh(
	ctx context.Context,
	input secretsDomain.ResolveInput,
) secretsDomain.ResolveOutput {
	start := time.Now()
	output := s.next.Refresh(ctx, input)
	s.record(ctx, "secret_refresh", start, output)
	return output
}

func (s *secretResolverWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	output secretsDomain.ResolveOutput,
) {
	status := "success"
	if !output.Success {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", operation, status)
	s.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
}
