package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	secretsUseCase "github.com/allisson/secretgate/internal/secrets/usecase"
)

type cleanResult struct {
	Days    int       `json:"days"`
	Cutoff  time.Time `json:"cutoff"`
	DryRun  bool      `json:"dry_run"`
	Matched int64     `json:"matched"`
}

// RunCleanAuditLogs removes resolution audit entries older than days. With dryRun set the
// entries are only counted.
func RunCleanAuditLogs(
	ctx context.Context,
	auditLogUseCase secretsUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must not be negative, got %d", days)
	}

	result := cleanResult{
		Days:   days,
		Cutoff: time.Now().UTC().AddDate(0, 0, -days).Truncate(time.Second),
		DryRun: dryRun,
	}

	matched, err := auditLogUseCase.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete audit logs: %w", err)
	}
	result.Matched = matched

	logger.Info("audit log retention applied",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
		slog.Int64("matched", matched),
	)

	if format == "json" {
		return writeJSON(writer, result)
	}

	verb := "deleted"
	if dryRun {
		verb = "would delete"
	}
	_, _ = fmt.Fprintf(writer, "cutoff    %s\n", result.Cutoff.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "%s %d entr%s\n", verb, matched, pluralY(matched))
	return nil
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
