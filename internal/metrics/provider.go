// Package metrics provides OpenTelemetry metrics instrumentation with Prometheus export.
// Supports business operation metrics and HTTP request metrics for observability.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Provider owns the meter provider and the private registry the exporter writes into.
type Provider struct {
	meterProvider *metric.MeterProvider
	exporter      *promexporter.Exporter
	registry      *prometheus.Registry
}

// NewProvider creates a provider whose registry also carries the Go runtime, process and
// build info collectors. A non-empty namespace is reported as service.name on target_info;
// metric names get their prefix from the instrument constructors.
func NewProvider(namespace string) (*Provider, error) {
	registry := prometheus.NewRegistry()
	for name, collector := range map[string]prometheus.Collector{
		"go":         collectors.NewGoCollector(),
		"process":    collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		"build info": collectors.NewBuildInfoCollector(),
	} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register %s collector: %w", name, err)
		}
	}

	res := resource.Default()
	if namespace != "" {
		merged, err := resource.Merge(res, resource.NewSchemaless(attribute.String("service.name", namespace)))
		if err != nil {
			return nil, fmt.Errorf("failed to build metrics resource: %w", err)
		}
		res = merged
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return &Provider{
		meterProvider: metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res)),
		exporter:      exporter,
		registry:      registry,
	}, nil
}

// Handler serves the registry in Prometheus or OpenMetrics format, by content negotiation.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// MeterProvider returns the meter provider instruments are created from.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes and stops the meter provider. Safe on a zero Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
