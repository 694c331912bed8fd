package domain

import (
	"fmt"
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/secretgate/internal/validation"
)

// credentialMarkers are name fragments that mark a secret as a credential.
// Credentials never fall back to a built-in default.
var credentialMarkers = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"key",
	"credential",
	"private",
	"cert",
	"dsn",
}

// CatalogEntry describes one allow-listed secret and where it may come from.
type CatalogEntry struct {
	// Name is the public identifier callers request.
	Name string
	// EnvVar is the process environment variable holding the value, if any.
	EnvVar string
	// VaultPath is the provider-specific vault location, if any.
	VaultPath string
	// Default is returned when no other provider has a value and the name is not credential-like.
	Default string
}

// Validate checks a single catalog entry.
func (e CatalogEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, customValidation.SecretName),
		validation.Field(&e.EnvVar, customValidation.NoWhitespace),
		validation.Field(&e.VaultPath, customValidation.NoWhitespace),
		validation.Field(&e.Default, validation.By(func(value interface{}) error {
			if value.(string) != "" && LooksLikeCredential(e.Name) {
				return validation.NewError("validation_credential_default", "must be empty for credential-like names")
			}
			return nil
		})),
	)
}

// Catalog is the allow-list of resolvable secret names.
type Catalog struct {
	entries map[string]CatalogEntry
	names   []string
}

// NewCatalog builds a catalog after validating every entry. Duplicate names are rejected.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]CatalogEntry, len(entries)),
		names:   make([]string, 0, len(entries)),
	}
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, exists := c.entries[entry.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidCatalog, entry.Name)
		}
		c.entries[entry.Name] = entry
		c.names = append(c.names, entry.Name)
	}
	return c, nil
}

// Allowed reports whether name is in the allow-list. Matching is exact.
func (c *Catalog) Allowed(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (CatalogEntry, bool) {
	entry, ok := c.entries[name]
	return entry, ok
}

// Names returns the allow-listed names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// LooksLikeCredential reports whether name suggests a credential.
func LooksLikeCredential(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range credentialMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
