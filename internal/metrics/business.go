package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records domain operations and resilience state changes.
type BusinessMetrics interface {
	// RecordOperation counts one operation. Domains are "auth" and "secrets";
	// operations include "token_validate", "secret_resolve" and "secret_refresh";
	// status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordStateChange counts a state transition of a resilience component such as the
	// vault circuit breaker.
	RecordStateChange(ctx context.Context, component, from, to string)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
type businessMetrics struct {
	operationCounter  metric.Int64Counter
	durationHisto     metric.Float64Histogram
	transitionCounter metric.Int64Counter
}

// NewBusinessMetrics creates a BusinessMetrics whose instrument names are prefixed with
// namespace (e.g. "secretgate_operations_total").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	transitionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_state_transitions_total", namespace),
		metric.WithDescription("Total number of resilience component state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create state transition counter: %w", err)
	}

	return &businessMetrics{
		operationCounter:  operationCounter,
		durationHisto:     durationHisto,
		transitionCounter: transitionCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1, metric.WithAttributes(operationAttrs(domain, operation, status)...))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(), metric.WithAttributes(operationAttrs(domain, operation, status)...))
}

func (b *businessMetrics) RecordStateChange(ctx context.Context, component, from, to string) {
	b.transitionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("component", component),
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

func operationAttrs(domain, operation, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	}
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordStateChange(ctx context.Context, component, from, to string) {}
