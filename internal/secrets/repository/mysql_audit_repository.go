package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/allisson/secretgate/internal/database"
	apperrors "github.com/allisson/secretgate/internal/errors"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// MySQLAuditRepository implements audit entry persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLAuditRepository struct {
	db *sql.DB
}

// Create inserts a new audit entry. A nil signature is stored as NULL.
func (m *MySQLAuditRepository) Create(ctx context.Context, entry *secretsDomain.AuditEntry) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}
	requestID, err := entry.RequestID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal request id")
	}

	query := `INSERT INTO audit_logs (id, request_id, caller, name, source, outcome, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		requestID,
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
func (m *MySQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*secretsDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, request_id, caller, name, source, outcome, signature, created_at FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

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
		var id, requestID []byte
		var source string

		err := rows.Scan(
			&id,
			&requestID,
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

		if err := entry.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
		}
		if err := entry.RequestID.UnmarshalBinary(requestID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal request id")
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
func (m *MySQLAuditRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}

	return count, nil
}

// NewMySQLAuditRepository creates a new MySQL audit repository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}
