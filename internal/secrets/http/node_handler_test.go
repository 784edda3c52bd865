package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nodesecrets/internal/secrets/http/dto"
	"github.com/allisson/nodesecrets/internal/secrets/store"
)

func newTestRouter(t *testing.T, secretStore store.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewNodeHandler(secretStore, slog.New(slog.DiscardHandler))
	router := gin.New()
	router.GET("/v1/nodes", handler.ListNodesHandler)
	router.GET("/v1/nodes/:node/secrets", handler.GetSecretsHandler)
	return router
}

func TestNodeHandler_GetSecretsHandler(t *testing.T) {
	router := newTestRouter(t, store.NewFixedStore([]string{"one", "two"}))

	t.Run("returns the ordered secrets", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/nodes/phx123/secrets", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.NodeSecretsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "phx123", resp.Node)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, []string{"one", "two"}, resp.Secrets)
	})

	t.Run("invalid node id is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/nodes/phx%3A1/secrets", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown node yields an empty list", func(t *testing.T) {
		fileStore, err := store.NewFileStore()
		require.NoError(t, err)
		emptyRouter := newTestRouter(t, fileStore)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/nodes/unknown/secrets", nil)
		emptyRouter.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.NodeSecretsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Secrets)
	})
}

func TestNodeHandler_ListNodesHandler(t *testing.T) {
	t.Run("file store lists loaded nodes", func(t *testing.T) {
		fileStore, err := store.NewFileStore()
		require.NoError(t, err)
		require.NoError(t, fileStore.Add("phx1", 32))
		require.NoError(t, fileStore.Add("phx2", 32))
		router := newTestRouter(t, fileStore)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/nodes", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.NodeListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, []string{"phx1", "phx2"}, resp.Nodes)
	})

	t.Run("derived store tracks no nodes", func(t *testing.T) {
		router := newTestRouter(t, store.NewDerivedStore([]string{"abcdef"}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/nodes", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.NodeListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
	})
}
