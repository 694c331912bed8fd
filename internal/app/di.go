// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/secretgate/internal/config"
	"github.com/allisson/secretgate/internal/database"
	"github.com/allisson/secretgate/internal/http"
	"github.com/allisson/secretgate/internal/metrics"
	"github.com/allisson/secretgate/internal/ratelimit"
	"github.com/allisson/secretgate/internal/resilience"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	rateLimiter     *ratelimit.Limiter

	// Auth components
	authComponents

	// Secrets components
	secretsComponents

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	rateLimiterInit     sync.Once
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

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// MetricsProvider returns the OpenTelemetry provider backing the Prometheus endpoint.
// It returns nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
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

// BusinessMetrics returns the business metrics recorder, a no-op when metrics are disabled.
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

// RateLimiter returns the per-caller limiter, or nil when rate limiting is disabled.
func (c *Container) RateLimiter() *ratelimit.Limiter {
	c.rateLimiterInit.Do(func() {
		if !c.config.RateLimitEnabled {
			return
		}
		c.rateLimiter = ratelimit.New(ratelimit.Config{
			Window: c.config.RateLimitWindow,
			Ceilings: map[ratelimit.Category]int{
				ratelimit.CategoryAuth:    c.config.RateLimitAuthMaxRequests,
				ratelimit.CategorySecrets: c.config.RateLimitSecretsMaxRequests,
			},
		})
	})
	return c.rateLimiter
}

// HTTPServer returns the HTTP server instance with its router configured.
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

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
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

	if c.keeper != nil {
		if err := c.keeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
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

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the HTTP server and wires every route. The database is only
// opened when the audit trail is enabled.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	var db *sql.DB
	if c.config.AuditEnabled {
		var err error
		db, err = c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}
	}

	tokenValidator, err := c.TokenValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to get token validator for http server: %w", err)
	}
	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}
	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}
	auditLogHandler, err := c.AuditLogHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log handler for http server: %w", err)
	}
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	vaultProvider, err := c.VaultProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault provider for http server: %w", err)
	}

	var breakers []*resilience.CircuitBreaker
	if vaultProvider != nil {
		breakers = append(breakers, vaultProvider.Breaker())
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.config, http.RouterDeps{
		TokenValidator:  tokenValidator,
		TokenHandler:    tokenHandler,
		SecretHandler:   secretHandler,
		AuditLogHandler: auditLogHandler,
		RateLimiter:     c.RateLimiter(),
		MetricsProvider: metricsProvider,
		Breakers:        breakers,
	})

	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
