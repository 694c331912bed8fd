package http

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns nil when CORS is off or no usable origin is configured.
// The gateway is meant for service-to-service calls, so this stays disabled unless a
// browser client must call it directly. A lone "*" allows any origin.
//
// Bearer tokens travel in the Authorization header, which is not a CORS credential,
// so credentials mode is never enabled.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr, logger)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After", "WWW-Authenticate"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))
	return cors.New(cfg)
}

// parseOrigins splits a comma-separated origin list. Entries that are not a bare
// scheme://host[:port] origin are dropped with a warning.
func parseOrigins(originsStr string, logger *slog.Logger) []string {
	var origins []string
	for _, part := range strings.Split(originsStr, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			return []string{"*"}
		}
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" {
			logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
