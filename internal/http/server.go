package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/allisson/nodesecrets/internal/metrics"
	secretsHTTP "github.com/allisson/nodesecrets/internal/secrets/http"
)

// ServerOptions configures the API server.
type ServerOptions struct {
	Host string
	Port int

	// Backend names the configured secret store; reported by /health.
	Backend string
	// BootID identifies this process instance; reported by /health.
	BootID string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	RelayEnabled  bool
	RelayUpstream string
	RelayTimeout  time.Duration
}

// Server is the API HTTP server exposing node secret resolution.
type Server struct {
	server        *http.Server
	logger        *slog.Logger
	rateLimitStop func()
}

// NewServer creates the API server and assembles its middleware chain and
// routes.
func NewServer(
	opts ServerOptions,
	logger *slog.Logger,
	nodeHandler *secretsHTTP.NodeHandler,
	httpMetrics metrics.HTTPMetrics,
) (*Server, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(RequestLoggerMiddleware(logger))

	if httpMetrics != nil {
		router.Use(MetricsMiddleware(httpMetrics))
	}

	if corsMiddleware := createCORSMiddleware(opts.CORSEnabled, opts.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	var rateLimitStop func()
	if opts.RateLimitEnabled {
		middleware, stop := RateLimitMiddleware(opts.RateLimitRequestsPerSec, opts.RateLimitBurst, logger)
		router.Use(middleware)
		rateLimitStop = stop
	}

	router.GET("/health", healthHandler(opts.Backend, opts.BootID))

	v1 := router.Group("/v1")
	v1.GET("/nodes", nodeHandler.ListNodesHandler)
	v1.GET("/nodes/:node/secrets", nodeHandler.GetSecretsHandler)

	if opts.RelayEnabled {
		relay, err := RelayHandler(opts.RelayUpstream, opts.RelayTimeout, logger)
		if err != nil {
			if rateLimitStop != nil {
				rateLimitStop()
			}
			return nil, fmt.Errorf("failed to configure relay upstream: %w", err)
		}
		router.Any("/relay/*path", relay)
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:        logger,
		rateLimitStop: rateLimitStop,
	}, nil
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.rateLimitStop != nil {
		s.rateLimitStop()
	}
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness together with the configured backend and
// process boot id.
func healthHandler(backend, bootID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"backend": backend,
			"boot_id": bootID,
		})
	}
}
