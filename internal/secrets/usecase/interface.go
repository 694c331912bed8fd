// Package usecase orchestrates secret resolution: allow-list check, cache, provider cascade
// and the audit trail of every attempt.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// AuditRepository defines persistence for audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *secretsDomain.AuditEntry) error
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*secretsDomain.AuditEntry, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// SecretResolver resolves allow-listed secret names through the provider cascade.
// Failures are reported through ResolveOutput.ErrorKind, never as Go errors.
type SecretResolver interface {
	Resolve(ctx context.Context, input secretsDomain.ResolveInput) secretsDomain.ResolveOutput
	// Refresh evicts the cached value for the name and resolves it again.
	Refresh(ctx context.Context, input secretsDomain.ResolveInput) secretsDomain.ResolveOutput
}

// VerificationReport summarizes a batch signature check.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidLogs   []uuid.UUID
}

// AuditLogUseCase records and maintains the resolution audit trail.
type AuditLogUseCase interface {
	Record(ctx context.Context, input secretsDomain.ResolveInput, output secretsDomain.ResolveOutput) error
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*secretsDomain.AuditEntry, error)
	VerifyBatch(ctx context.Context, startTime, endTime time.Time) (*VerificationReport, error)
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
