package domain

import (
	"time"
)

// ValidationPolicy configures the semantic checks. Empty ExpectedAudience, AcceptedIssuers
// or RequiredScope disable the corresponding check.
type ValidationPolicy struct {
	ExpectedAudience string
	AcceptedIssuers  []string
	RequiredScope    string
	ClockSkew        time.Duration
	// Relaxed downgrades audience, issuer and scope mismatches to warnings. It is set from
	// the server-side deployment mode only.
	Relaxed bool
}

// AcceptsIssuer reports whether iss is one of the accepted issuer forms.
func (p ValidationPolicy) AcceptsIssuer(iss string) bool {
	for _, accepted := range p.AcceptedIssuers {
		if accepted == iss {
			return true
		}
	}
	return false
}
