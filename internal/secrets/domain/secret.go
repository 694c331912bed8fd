package domain

import (
	"github.com/google/uuid"
)

// Source names the provider that produced a secret value.
type Source string

const (
	SourceOverride    Source = "override"
	SourceEnvironment Source = "environment"
	SourceVault       Source = "vault"
	SourceDefault     Source = "default"
)

// ErrorKind classifies why a resolution did not produce a value.
type ErrorKind string

const (
	ErrorKindNone           ErrorKind = ""
	ErrorKindNameNotAllowed ErrorKind = "name_not_allowed"
	ErrorKindNotFound       ErrorKind = "not_found"
	ErrorKindAccessDenied   ErrorKind = "access_denied"
	ErrorKindCircuitOpen    ErrorKind = "circuit_open"
	ErrorKindRateLimited    ErrorKind = "rate_limited"
	ErrorKindInternal       ErrorKind = "internal"
)

// ResolveInput identifies a secret lookup and who asked for it.
type ResolveInput struct {
	Name      string
	Caller    string
	RequestID uuid.UUID
}

// ResolveOutput is the outcome of a secret lookup. Value is only set when Success is true.
type ResolveOutput struct {
	Success   bool
	Value     string
	Source    Source
	Cached    bool
	ErrorKind ErrorKind
}

// Resolved builds a successful output.
func Resolved(value string, source Source, cached bool) ResolveOutput {
	return ResolveOutput{
		Success: true,
		Value:   value,
		Source:  source,
		Cached:  cached,
	}
}

// Failed builds an unsuccessful output carrying only the error kind.
func Failed(kind ErrorKind) ResolveOutput {
	return ResolveOutput{ErrorKind: kind}
}

// Outcome returns the audit outcome label: "success" or the error kind.
func (o ResolveOutput) Outcome() string {
	if o.Success {
		return "success"
	}
	return string(o.ErrorKind)
}
