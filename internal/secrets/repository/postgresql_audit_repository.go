// Package repository persists the resolution audit trail in PostgreSQL or MySQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/allisson/secretgate/internal/database"
	apperrors "github.com/allisson/secretgate/internal/errors"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// PostgreSQLAuditRepository implements audit entry persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// Create inserts a new audit entry. A nil signature is stored as NULL.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, entry *secretsDomain.AuditEntry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_logs (id, request_id, caller, name, source, outcome, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RequestID,
		entry.Caller,
		entry.Name,
		string(entry.Source),
		entry.Outcome,
		entry.Signature,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// List retrieves audit entries newest first, optionally bounded by created_at (inclusive).
func (p *PostgreSQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*secretsDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, request_id, caller, name, source, outcome, signature, created_at FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*secretsDomain.AuditEntry, 0)
	for rows.Next() {
		var entry secretsDomain.AuditEntry
		var source string

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.Caller,
			&entry.Name,
			&source,
			&entry.Outcome,
			&entry.Signature,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}

		entry.Source = secretsDomain.Source(source)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return entries, nil
}

// DeleteOlderThan removes entries created before olderThan. With dryRun it only counts them.
func (p *PostgreSQLAuditRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}

	return count, nil
}

// NewPostgreSQLAuditRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}
