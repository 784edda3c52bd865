package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	httpMetrics, err := NewHTTPMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, httpMetrics)
}

func TestHTTPMetrics_RecordRequest(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	hm, err := NewHTTPMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	hm.RecordRequest(context.Background(), http.MethodGet, "/v1/nodes/:node/secrets", http.StatusOK, 5*time.Millisecond)
	hm.RecordRequest(context.Background(), http.MethodGet, "/v1/nodes/:node/secrets", http.StatusOK, 7*time.Millisecond)
	hm.RecordRequest(context.Background(), http.MethodGet, "/v1/nodes", http.StatusOK, time.Millisecond)

	output := scrapeMetrics(t, provider)
	assertMetricLine(t, output, "test_app_http_requests_total", `route="/v1/nodes/:node/secrets"`, "2")
	assertMetricLine(t, output, "test_app_http_requests_total", `route="/v1/nodes"`, "1")
	assert.Contains(t, output, "test_app_http_request_duration_seconds")
}
