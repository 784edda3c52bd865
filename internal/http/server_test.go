package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsHTTP "github.com/allisson/nodesecrets/internal/secrets/http"
	"github.com/allisson/nodesecrets/internal/secrets/store"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestServer creates a server backed by a fixed secret store.
func createTestServer(t *testing.T, opts ServerOptions) *Server {
	t.Helper()

	logger := testLogger()
	nodeHandler := secretsHTTP.NewNodeHandler(store.NewFixedStore([]string{"sssshh"}), logger)

	server, err := NewServer(opts, logger, nodeHandler, nil)
	require.NoError(t, err)

	return server
}

func TestServer_Health(t *testing.T) {
	server := createTestServer(t, ServerOptions{
		Backend: "fixed",
		BootID:  "0198f6a2-9f3c-7000-8000-000000000000",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "fixed", response["backend"])
	assert.Equal(t, "0198f6a2-9f3c-7000-8000-000000000000", response["boot_id"])
}

func TestServer_GetNodeSecrets(t *testing.T) {
	server := createTestServer(t, ServerOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/nodes/phx23/secrets", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Node    string   `json:"node"`
		Secrets []string `json:"secrets"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "phx23", response.Node)
	assert.Equal(t, []string{"sssshh"}, response.Secrets)
}

func TestServer_ListNodes(t *testing.T) {
	server := createTestServer(t, ServerOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/nodes", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Nodes []string `json:"nodes"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Empty(t, response.Nodes)
}

func TestServer_UnknownRoute(t *testing.T) {
	server := createTestServer(t, ServerOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RateLimit(t *testing.T) {
	server := createTestServer(t, ServerOptions{
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 1,
		RateLimitBurst:          1,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	// First request passes, second exceeds the burst.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestServer_RelayRoute(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("upstream ok"))
	}))
	defer upstream.Close()

	server := createTestServer(t, ServerOptions{
		RelayEnabled:  true,
		RelayUpstream: upstream.URL,
		RelayTimeout:  time.Second,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/relay/anything", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upstream ok", w.Body.String())
}

func TestServer_RelayInvalidUpstream(t *testing.T) {
	logger := testLogger()
	nodeHandler := secretsHTTP.NewNodeHandler(store.NewFixedStore(nil), logger)

	_, err := NewServer(ServerOptions{
		RelayEnabled:  true,
		RelayUpstream: "://not-a-url",
		RelayTimeout:  time.Second,
	}, logger, nodeHandler, nil)
	assert.Error(t, err)
}

func TestMetricsServer_NoProvider(t *testing.T) {
	server := NewMetricsServer("localhost", 9090, "boot-id", testLogger(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsServer_Health(t *testing.T) {
	server := NewMetricsServer("localhost", 9090, "0198f6a2-9f3c-7000-8000-000000000000", testLogger(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "0198f6a2-9f3c-7000-8000-000000000000", response["boot_id"])
}
