package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics defines the interface for recording HTTP request metrics.
type HTTPMetrics interface {
	// RecordRequest records one handled HTTP request. The route should be
	// the registered route template (e.g., "/v1/nodes/:node/secrets"), not
	// the raw path, to keep label cardinality bounded.
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// httpMetrics implements HTTPMetrics using OpenTelemetry metrics.
type httpMetrics struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
}

// NewHTTPMetrics creates a new HTTPMetrics implementation using the provided
// meter provider. Returns error if meters cannot be initialized.
func NewHTTPMetrics(meterProvider metric.MeterProvider, namespace string) (HTTPMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	return &httpMetrics{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
	}, nil
}

// RecordRequest increments the request counter and records the duration.
func (m *httpMetrics) RecordRequest(
	ctx context.Context,
	method, route string,
	status int,
	duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.requestCounter.Add(ctx, 1, attrs)
	m.durationHisto.Record(ctx, duration.Seconds(), attrs)
}
