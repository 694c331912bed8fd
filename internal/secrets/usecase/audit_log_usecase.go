package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/secretgate/internal/database"
	apperrors "github.com/allisson/secretgate/internal/errors"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
	secretsService "github.com/allisson/secretgate/internal/secrets/service"
)

// verifyBatchSize bounds how many entries VerifyBatch loads per query.
const verifyBatchSize = 500

// auditLogUseCase implements AuditLogUseCase.
type auditLogUseCase struct {
	txManager  database.TxManager
	auditRepo  AuditRepository
	signer     secretsService.AuditSigner
	signingKey []byte
	now        func() time.Time
}

// NewAuditLogUseCase creates a new AuditLogUseCase. Entries are signed when signingKey is non-empty.
func NewAuditLogUseCase(
	txManager database.TxManager,
	auditRepo AuditRepository,
	signer secretsService.AuditSigner,
	signingKey []byte,
) AuditLogUseCase {
	return &auditLogUseCase{
		txManager:  txManager,
		auditRepo:  auditRepo,
		signer:     signer,
		signingKey: signingKey,
		now:        time.Now,
	}
}

// Record persists one resolution attempt. The secret value is never part of the entry.
func (a *auditLogUseCase) Record(
	ctx context.Context,
	input secretsDomain.ResolveInput,
	output secretsDomain.ResolveOutput,
) error {
	requestID := input.RequestID
	if requestID == uuid.Nil {
		requestID = uuid.Must(uuid.NewV7())
	}

	// Truncated to the microsecond precision both databases store.
	entry := &secretsDomain.AuditEntry{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: requestID,
		Caller:    input.Caller,
		Name:      input.Name,
		Source:    output.Source,
		Outcome:   output.Outcome(),
		CreatedAt: a.now().UTC().Truncate(time.Microsecond),
	}

	if len(a.signingKey) > 0 {
		signature, err := a.signer.Sign(a.signingKey, entry)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign audit entry")
		}
		entry.Signature = signature
	}

	if err := a.auditRepo.Create(ctx, entry); err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// List retrieves audit entries ordered by created_at descending (newest first) with pagination
// and optional time-based filtering. Both boundaries are inclusive.
func (a *auditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*secretsDomain.AuditEntry, error) {
	entries, err := a.auditRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}

	return entries, nil
}

// VerifyBatch checks the signature of every entry created within [startTime, endTime].
func (a *auditLogUseCase) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	if len(a.signingKey) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit signing key is not configured")
	}

	report := &VerificationReport{InvalidLogs: []uuid.UUID{}}
	// Offset paging over created_at DESC shifts when rows are inserted mid-run.
	err := a.txManager.WithSnapshot(ctx, func(ctx context.Context) error {
		for offset := 0; ; offset += verifyBatchSize {
			entries, err := a.auditRepo.List(ctx, offset, verifyBatchSize, &startTime, &endTime)
			if err != nil {
				return apperrors.Wrap(err, "failed to list audit entries")
			}

			for _, entry := range entries {
				a.verifyEntry(report, entry)
			}

			if len(entries) < verifyBatchSize {
				return nil
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (a *auditLogUseCase) verifyEntry(report *VerificationReport, entry *secretsDomain.AuditEntry) {
	report.TotalChecked++
	if !entry.IsSigned() {
		report.UnsignedCount++
		return
	}
	report.SignedCount++
	if err := a.signer.Verify(a.signingKey, entry); err != nil {
		report.InvalidCount++
		report.InvalidLogs = append(report.InvalidLogs, entry.ID)
		return
	}
	report.ValidCount++
}

// DeleteOlderThan removes entries older than the given number of days.
// With dryRun it only counts them.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be greater than or equal to 0")
	}

	olderThan := a.now().UTC().AddDate(0, 0, -days)
	count, err := a.auditRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit entries: %w", err)
	}

	return count, nil
}
