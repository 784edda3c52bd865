// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/allisson/nodesecrets/internal/config"
	"github.com/allisson/nodesecrets/internal/http"
	"github.com/allisson/nodesecrets/internal/metrics"
	secretsHTTP "github.com/allisson/nodesecrets/internal/secrets/http"
	"github.com/allisson/nodesecrets/internal/secrets/store"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	bootID string

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	httpMetrics     metrics.HTTPMetrics

	// Secret store
	secretStore store.Store

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	bootIDInit          sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	httpMetricsInit     sync.Once
	secretStoreInit     sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// BootID returns the identifier of this process instance, generated on
// first access.
func (c *Container) BootID() string {
	c.bootIDInit.Do(func() {
		c.bootID = uuid.Must(uuid.NewV7()).String()
	})
	return c.bootID
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder, or nil when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPMetrics returns the HTTP metrics recorder, or nil when metrics are
// disabled.
func (c *Container) HTTPMetrics() (metrics.HTTPMetrics, error) {
	var err error
	c.httpMetricsInit.Do(func() {
		c.httpMetrics, err = c.initHTTPMetrics()
		if err != nil {
			c.initErrors["httpMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpMetrics"]; exists {
		return nil, storedErr
	}
	return c.httpMetrics, nil
}

// SecretStore returns the secret store selected by the configured backend.
func (c *Container) SecretStore() (store.Store, error) {
	var err error
	c.secretStoreInit.Do(func() {
		c.secretStore, err = c.initSecretStore()
		if err != nil {
			c.initErrors["secretStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretStore"]; exists {
		return nil, storedErr
	}
	return c.secretStore, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPMetrics creates the HTTP metrics recorder.
func (c *Container) initHTTPMetrics() (metrics.HTTPMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http metrics: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return metrics.NewHTTPMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initSecretStore creates the secret store selected by the configured backend
// and wraps it with metrics instrumentation when metrics are enabled.
func (c *Container) initSecretStore() (store.Store, error) {
	var (
		secretStore store.Store
		err         error
	)

	switch c.config.SecretsBackend {
	case config.BackendFile:
		secretStore, err = store.NewFileStore(c.config.SecretsFiles...)
		if err != nil {
			return nil, fmt.Errorf("failed to load secrets files: %w", err)
		}
	case config.BackendFixed:
		secretStore = store.NewFixedStore(c.config.FixedSecrets)
	case config.BackendDerived:
		secretStore = store.NewDerivedStore(c.config.MasterSecrets)
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", c.config.SecretsBackend)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for secret store: %w", err)
	}
	if businessMetrics != nil {
		secretStore = store.NewStoreWithMetrics(secretStore, businessMetrics)
	}

	return secretStore, nil
}

// initHTTPServer creates the API HTTP server instance.
func (c *Container) initHTTPServer() (*http.Server, error) {
	secretStore, err := c.SecretStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret store for http server: %w", err)
	}

	httpMetrics, err := c.HTTPMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get http metrics for http server: %w", err)
	}

	logger := c.Logger()
	nodeHandler := secretsHTTP.NewNodeHandler(secretStore, logger)

	return http.NewServer(http.ServerOptions{
		Host:                    c.config.ServerHost,
		Port:                    c.config.ServerPort,
		Backend:                 c.config.SecretsBackend,
		BootID:                  c.BootID(),
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
		RelayEnabled:            c.config.RelayEnabled,
		RelayUpstream:           c.config.RelayUpstream,
		RelayTimeout:            c.config.RelayTimeout,
	}, logger, nodeHandler, httpMetrics)
}

// initMetricsServer creates the Prometheus metrics server instance.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.BootID(), c.Logger(), provider), nil
}
