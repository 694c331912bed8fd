// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/secretgate/internal/auth/http"
	authUseCase "github.com/allisson/secretgate/internal/auth/usecase"
	"github.com/allisson/secretgate/internal/config"
	"github.com/allisson/secretgate/internal/metrics"
	"github.com/allisson/secretgate/internal/ratelimit"
	"github.com/allisson/secretgate/internal/resilience"
	secretsHTTP "github.com/allisson/secretgate/internal/secrets/http"
)

// RouterDeps carries the handlers and collaborators the router wires together.
// Optional members are nil when their feature is disabled.
type RouterDeps struct {
	TokenValidator  authUseCase.TokenValidator
	TokenHandler    *authHTTP.TokenHandler
	SecretHandler   *secretsHTTP.SecretHandler
	AuditLogHandler *secretsHTTP.AuditLogHandler
	RateLimiter     *ratelimit.Limiter
	MetricsProvider *metrics.Provider
	Breakers        []*resilience.CircuitBreaker
}

// Server represents the HTTP server
type Server struct {
	db       *sql.DB
	server   *http.Server
	router   *gin.Engine
	breakers []*resilience.CircuitBreaker
	logger   *slog.Logger
}

// NewServer creates a new HTTP server. db may be nil when the audit trail is disabled.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin engine with every route and middleware.
func (s *Server) SetupRouter(cfg *config.Config, deps RouterDeps) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	s.breakers = deps.Breakers

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authMiddleware := authHTTP.AuthenticationMiddleware(deps.TokenValidator, s.logger)
	rateLimit := func(category ratelimit.Category) []gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return nil
		}
		return []gin.HandlerFunc{authHTTP.RateLimitMiddleware(deps.RateLimiter, category, s.logger)}
	}

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth", rateLimit(ratelimit.CategoryAuth)...)
		auth.POST("/validate", deps.TokenHandler.ValidateHandler)

		secrets := v1.Group("/secrets", rateLimit(ratelimit.CategorySecrets)...)
		if cfg.AuthRequired {
			secrets.GET("/:name", authMiddleware, deps.SecretHandler.GetHandler)
		} else {
			secrets.GET("/:name", deps.SecretHandler.GetHandler)
		}
		secrets.POST("/:name/refresh", authMiddleware, deps.SecretHandler.RefreshHandler)

		if deps.AuditLogHandler != nil {
			v1.GET("/audit-logs", authMiddleware, deps.AuditLogHandler.ListHandler)
		}
	}

	s.router = router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized: call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness. The database must answer a ping when configured.
// Breaker states are reported but never fail readiness: an open vault circuit still
// serves environment values and safe defaults.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", "database"), slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	for _, breaker := range s.breakers {
		components[breaker.Name()] = "circuit_" + breaker.State().String()
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
