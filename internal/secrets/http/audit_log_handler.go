package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/secretgate/internal/httputil"
	"github.com/allisson/secretgate/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/secretgate/internal/secrets/usecase"
)

// AuditLogHandler handles HTTP requests for audit log operations.
type AuditLogHandler struct {
	auditLogUseCase secretsUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	auditLogUseCase secretsUseCase.AuditLogUseCase,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler retrieves audit logs with pagination support and optional time-based filtering.
// GET /v1/audit-logs?offset=0&limit=50&created_at_from=2026-02-01T00:00:00Z&created_at_to=2026-02-14T23:59:59Z
// Returns 200 OK ordered by created_at descending. Both boundaries are inclusive and converted to UTC.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	query, err := httputil.ParseListQuery(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.auditLogUseCase.List(
		c.Request.Context(),
		query.Offset,
		query.Limit,
		query.CreatedAtFrom,
		query.CreatedAtTo,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEntriesToListResponse(entries))
}
