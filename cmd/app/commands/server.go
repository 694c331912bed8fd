package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/secretgate/internal/app"
	"github.com/allisson/secretgate/internal/config"
)

// shutdownTimeout bounds the graceful shutdown of both servers.
const shutdownTimeout = 30 * time.Second

// runnable is a server RunServer starts and stops.
type runnable interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type namedServer struct {
	name   string
	server runnable
}

// RunServer serves the gateway API, plus the metrics endpoint when enabled, until
// SIGINT/SIGTERM or until either server fails.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("deployment_mode", cfg.DeploymentMode),
	)
	defer closeContainer(container, logger)

	// Building the API server resolves every dependency, so misconfiguration fails here.
	apiServer, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	servers := []namedServer{{name: "api server", server: apiServer}}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers = append(servers, namedServer{name: "metrics server", server: metricsServer})
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if limiter := container.RateLimiter(); limiter != nil {
		go limiter.Run(ctx, cfg.RateLimitWindow)
	}

	return serveUntilDone(ctx, logger, servers)
}

// serveUntilDone starts every server and, once ctx is done or one of them fails, shuts
// all of them down. The returned error joins the failure with any shutdown errors.
func serveUntilDone(ctx context.Context, logger *slog.Logger, servers []namedServer) error {
	serverErr := make(chan error, len(servers))
	for _, s := range servers {
		go func() {
			if err := s.server.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("%s error: %w", s.name, err)
			}
		}()
	}

	var errs []error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		errs = append(errs, err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", s.name, err))
		}
	}

	return errors.Join(errs...)
}
