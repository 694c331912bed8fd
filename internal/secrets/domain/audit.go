package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records a single resolution attempt. It never carries the secret value.
type AuditEntry struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	Caller    string
	Name      string
	Source    Source
	Outcome   string
	Signature []byte
	CreatedAt time.Time
}

// IsSigned reports whether the entry carries a signature.
func (a *AuditEntry) IsSigned() bool {
	return len(a.Signature) > 0
}
