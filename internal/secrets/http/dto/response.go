// Package dto provides data transfer objects for the secret lookup and audit endpoints.
package dto

import (
	"time"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// SecretResponse is the lookup result. Value and Source are only present on success,
// Error only on failure.
type SecretResponse struct {
	Success bool   `json:"success"`
	Value   string `json:"value,omitempty"`
	Source  string `json:"source,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MapResolveOutputToResponse converts a resolution outcome to its API form.
func MapResolveOutputToResponse(output secretsDomain.ResolveOutput) SecretResponse {
	if !output.Success {
		return SecretResponse{Error: string(output.ErrorKind)}
	}
	return SecretResponse{
		Success: true,
		Value:   output.Value,
		Source:  string(output.Source),
		Cached:  output.Cached,
	}
}

// AuditLogResponse represents an audit entry in API responses.
type AuditLogResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Caller    string    `json:"caller"`
	Name      string    `json:"name"`
	Source    string    `json:"source,omitempty"`
	Outcome   string    `json:"outcome"`
	Signed    bool      `json:"signed"`
	CreatedAt time.Time `json:"created_at"`
}

// ListAuditLogsResponse represents a paginated list of audit entries.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditEntryToResponse converts a domain audit entry to an API response.
func MapAuditEntryToResponse(entry *secretsDomain.AuditEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:        entry.ID.String(),
		RequestID: entry.RequestID.String(),
		Caller:    entry.Caller,
		Name:      entry.Name,
		Source:    string(entry.Source),
		Outcome:   entry.Outcome,
		Signed:    entry.IsSigned(),
		CreatedAt: entry.CreatedAt,
	}
}

// MapAuditEntriesToListResponse converts domain audit entries to a list response.
func MapAuditEntriesToListResponse(entries []*secretsDomain.AuditEntry) ListAuditLogsResponse {
	data := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapAuditEntryToResponse(entry))
	}
	return ListAuditLogsResponse{Data: data}
}
