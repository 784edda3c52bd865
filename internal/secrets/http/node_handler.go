// Package http provides HTTP handlers for node secret resolution.
//
// The handlers expose the Store contract to service front-ends over a thin
// JSON API: resolved secrets travel in response bodies only and are never
// logged.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/allisson/nodesecrets/internal/httputil"
	"github.com/allisson/nodesecrets/internal/secrets/http/dto"
	"github.com/allisson/nodesecrets/internal/secrets/store"
	customValidation "github.com/allisson/nodesecrets/internal/validation"
)

// NodeHandler handles HTTP requests for node secret resolution.
type NodeHandler struct {
	store  store.Store
	logger *slog.Logger
}

// NewNodeHandler creates a new node handler with required dependencies.
func NewNodeHandler(secretStore store.Store, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{
		store:  secretStore,
		logger: logger,
	}
}

// GetSecretsHandler resolves the ordered secrets for one node.
// GET /v1/nodes/:node/secrets
// Returns 200 OK with the secrets oldest first; an unknown node is not an
// error and yields an empty list, matching the store contract.
func (h *NodeHandler) GetSecretsHandler(c *gin.Context) {
	node := c.Param("node")
	if err := validation.Validate(node, customValidation.NodeID{}); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secrets := h.store.Get(node)
	c.JSON(http.StatusOK, dto.MapNodeSecrets(node, secrets))
}

// ListNodesHandler enumerates the known node identifiers.
// GET /v1/nodes
// Fixed and derived stores track no per-node identity and return an empty set.
func (h *NodeHandler) ListNodesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapNodeList(h.store.Keys()))
}
