// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/allisson/nodesecrets/internal/validation"
)

// Secret store backend names accepted in SECRETS_BACKEND.
const (
	BackendFile    = "file"
	BackendFixed   = "fixed"
	BackendDerived = "derived"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// SecretsBackend selects the store implementation: "file", "fixed" or "derived".
	SecretsBackend string
	// SecretsFiles lists the CSV files loaded by the file backend.
	SecretsFiles []string
	// FixedSecrets is the static secret list served by the fixed backend.
	FixedSecrets []string
	// MasterSecrets is the master secret list used by the derived backend.
	MasterSecrets []string
	// SecretSize is the number of random bytes drawn when rotating in a new secret.
	SecretSize int

	// RateLimitEnabled indicates whether per-client-IP rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// RelayEnabled indicates whether the outbound relay route is mounted.
	RelayEnabled bool
	// RelayUpstream is the upstream base URL requests are relayed to (e.g., "http://10.0.0.2:8080").
	RelayUpstream string
	// RelayTimeout bounds each relayed request.
	RelayTimeout time.Duration

	// ShutdownTimeout bounds graceful server shutdown.
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Secret store configuration
		SecretsBackend: env.GetString("SECRETS_BACKEND", BackendFile),
		SecretsFiles:   splitList(env.GetString("SECRETS_FILES", ""), ","),
		FixedSecrets:   strings.Fields(env.GetString("FIXED_SECRETS", "")),
		MasterSecrets:  strings.Fields(env.GetString("MASTER_SECRETS", "")),
		SecretSize:     env.GetInt("SECRET_SIZE", 256),

		// Rate Limiting (per client IP)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "nodesecrets"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Relay
		RelayEnabled:  env.GetBool("RELAY_ENABLED", false),
		RelayUpstream: env.GetString("RELAY_UPSTREAM", ""),
		RelayTimeout:  env.GetDuration("RELAY_TIMEOUT_SECONDS", 5, time.Second),

		// Shutdown
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 30, time.Second),
	}
}

// Validate checks that the configured secret backend is usable. Secrets are
// validated for file-format safety only; their content stays opaque.
func (c *Config) Validate() error {
	switch c.SecretsBackend {
	case BackendFile:
		// An empty file list is valid: the store starts empty and can be
		// populated via rotation.
	case BackendFixed:
		if len(c.FixedSecrets) == 0 {
			return fmt.Errorf("FIXED_SECRETS is required for the fixed backend")
		}
		if err := validateSecretList(c.FixedSecrets); err != nil {
			return fmt.Errorf("FIXED_SECRETS: %w", err)
		}
	case BackendDerived:
		if len(c.MasterSecrets) == 0 {
			return fmt.Errorf("MASTER_SECRETS is required for the derived backend")
		}
		if err := validateSecretList(c.MasterSecrets); err != nil {
			return fmt.Errorf("MASTER_SECRETS: %w", err)
		}
	default:
		return fmt.Errorf(
			"unsupported secrets backend: %s (valid options: file, fixed, derived)",
			c.SecretsBackend,
		)
	}

	if c.SecretSize <= 0 {
		return fmt.Errorf("SECRET_SIZE must be positive, got %d", c.SecretSize)
	}

	if c.RelayEnabled && c.RelayUpstream == "" {
		return fmt.Errorf("RELAY_UPSTREAM is required when RELAY_ENABLED is set")
	}

	return nil
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// validateSecretList applies the file-format safety rule to each secret.
func validateSecretList(secrets []string) error {
	for i, secret := range secrets {
		if err := validation.Validate(secret, customValidation.SecretToken{}); err != nil {
			return fmt.Errorf("secret %d: %w", i, err)
		}
	}
	return nil
}

// splitList splits a delimited string, trimming whitespace and dropping
// empty entries.
func splitList(value, sep string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
