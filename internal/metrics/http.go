package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// httpMetrics holds HTTP-specific metric instruments.
type httpMetrics struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
	inFlight       metric.Int64UpDownCounter
}

func newHTTPMetrics(meterProvider metric.MeterProvider, namespace string) (*httpMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_http_requests_in_flight", namespace),
		metric.WithDescription("Number of HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
		inFlight:       inFlight,
	}, nil
}

// HTTPMetricsMiddleware returns a Gin middleware that records request counts, durations and
// in-flight requests. Paths are reported as route patterns (e.g. /v1/secrets/:name) so that
// secret names never become label values.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	metrics, err := newHTTPMetrics(meterProvider, namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		path := sanitizePath(c.FullPath())
		pathAttr := metric.WithAttributes(attribute.String("path", path))

		metrics.inFlight.Add(ctx, 1, pathAttr)
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		metrics.inFlight.Add(ctx, -1, pathAttr)

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", path),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		metrics.requestCounter.Add(ctx, 1, attrs)
		metrics.durationHisto.Record(ctx, duration.Seconds(), attrs)
	}
}

// sanitizePath returns the route pattern, or "unknown" when no route matched.
func sanitizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}
