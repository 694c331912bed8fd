package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	secretsUseCase "github.com/allisson/secretgate/internal/secrets/usecase"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// verifyResult is the JSON shape of a verification run.
type verifyResult struct {
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	TotalChecked  int64       `json:"total_checked"`
	SignedCount   int64       `json:"signed_count"`
	UnsignedCount int64       `json:"unsigned_count"`
	ValidCount    int64       `json:"valid_count"`
	InvalidCount  int64       `json:"invalid_count"`
	InvalidLogs   []uuid.UUID `json:"invalid_logs"`
	Passed        bool        `json:"passed"`
}

// RunVerifyAuditLogs checks the signature of every audit entry created between startDate and
// endDate, both inclusive and read as UTC. A date-only endDate covers that whole day.
// Returns an error when any signature is invalid, so scripts can alert on the exit code.
func RunVerifyAuditLogs(
	ctx context.Context,
	auditLogUseCase secretsUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	start, _, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, dateOnly, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Microsecond)
	}
	if end.Before(start) {
		return fmt.Errorf("end date must not be before start date")
	}

	logger.Info("verifying audit logs", slog.Time("start", start), slog.Time("end", end))

	report, err := auditLogUseCase.VerifyBatch(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify audit logs: %w", err)
	}

	result := verifyResult{
		Start:         start,
		End:           end,
		TotalChecked:  report.TotalChecked,
		SignedCount:   report.SignedCount,
		UnsignedCount: report.UnsignedCount,
		ValidCount:    report.ValidCount,
		InvalidCount:  report.InvalidCount,
		InvalidLogs:   report.InvalidLogs,
		Passed:        report.InvalidCount == 0,
	}
	if result.InvalidLogs == nil {
		result.InvalidLogs = []uuid.UUID{}
	}

	if format == "json" {
		if err := writeJSON(writer, result); err != nil {
			return err
		}
	} else {
		writeVerifyText(writer, result)
	}

	logger.Info("verification completed",
		slog.Int64("total_checked", result.TotalChecked),
		slog.Int64("valid", result.ValidCount),
		slog.Int64("invalid", result.InvalidCount),
		slog.Int64("unsigned", result.UnsignedCount),
	)

	if !result.Passed {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", result.InvalidCount)
	}
	return nil
}

// parseDate accepts "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" in UTC and reports which one matched.
func parseDate(value string) (time.Time, bool, error) {
	if t, err := time.Parse(dateTimeLayout, value); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf(
		"invalid date format (expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS): %s", value,
	)
}

func writeVerifyText(writer io.Writer, result verifyResult) {
	_, _ = fmt.Fprintf(writer, "Audit log verification %s .. %s (UTC)\n\n",
		result.Start.Format(dateTimeLayout), result.End.Format(dateTimeLayout))
	_, _ = fmt.Fprintf(writer, "  checked   %d\n", result.TotalChecked)
	_, _ = fmt.Fprintf(writer, "  valid     %d\n", result.ValidCount)
	_, _ = fmt.Fprintf(writer, "  invalid   %d\n", result.InvalidCount)
	_, _ = fmt.Fprintf(writer, "  unsigned  %d (written while signing was disabled)\n\n", result.UnsignedCount)

	switch {
	case !result.Passed:
		_, _ = fmt.Fprintf(writer, "FAILED: %d entry signature(s) do not match:\n", result.InvalidCount)
		for _, id := range result.InvalidLogs {
			_, _ = fmt.Fprintf(writer, "  %s\n", id)
		}
	case result.TotalChecked == 0:
		_, _ = fmt.Fprintln(writer, "PASSED: no entries in range")
	default:
		_, _ = fmt.Fprintln(writer, "PASSED")
	}
}
