package domain

import (
	"time"
)

// Header is the JOSE header of a compact token.
type Header struct {
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
	Type      string `json:"typ,omitempty"`
}

// Claims is the semantic content of a token. It is only trusted once a ValidationResult
// marks it valid.
type Claims struct {
	Subject   string
	Audience  []string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	NotBefore *time.Time
	// HasScope is false when the token carries neither "scope" nor "scp".
	HasScope bool
	Scopes   []string
	Email    string
	Name     string
}

// HasAudience reports whether aud is one of the audience values.
func (c *Claims) HasAudience(aud string) bool {
	for _, candidate := range c.Audience {
		if candidate == aud {
			return true
		}
	}
	return false
}

// HasScopeValue reports whether scope is one of the granted scopes.
func (c *Claims) HasScopeValue(scope string) bool {
	for _, candidate := range c.Scopes {
		if candidate == scope {
			return true
		}
	}
	return false
}

// DecodedToken is a structurally parsed token whose signature has not been checked yet.
type DecodedToken struct {
	Raw    string
	Header Header
	Claims Claims
}
