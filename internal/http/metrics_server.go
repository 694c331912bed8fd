package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/secretgate/internal/metrics"
)

// MetricsServer exposes the Prometheus scrape endpoint on its own port, away from the
// authenticated API.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer serves provider's registry at /metrics.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	provider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(scrapeFailureLogger(logger))

	router.GET("/metrics", gin.WrapH(provider.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// scrapeFailureLogger logs only failed requests. Scrapers poll every few seconds and a
// line per successful scrape would drown the API request log.
func scrapeFailureLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			logger.Warn("metrics request failed",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Int("status", status),
			)
		}
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start blocks serving scrapes until Shutdown is called.
func (s *MetricsServer) Start(ctx context.Context) error {
	s.logger.Info("starting metrics server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

// Shutdown stops accepting scrapes and waits for in-flight ones up to ctx's deadline.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
