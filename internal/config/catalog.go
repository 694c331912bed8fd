package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// catalogFile is the on-disk shape of SECRET_CATALOG_PATH.
//
//	secrets:
//	  - name: db-password
//	    env: DB_PASSWORD
//	    vault_path: app/db#password
//	  - name: region
//	    env: APP_REGION
//	    default: us-east-1
type catalogFile struct {
	Secrets []catalogFileEntry `yaml:"secrets"`
}

type catalogFileEntry struct {
	Name      string `yaml:"name"`
	Env       string `yaml:"env"`
	VaultPath string `yaml:"vault_path"`
	Default   string `yaml:"default"`
}

// DefaultCatalogEntries is the catalog used when no file is configured.
func DefaultCatalogEntries() []secretsDomain.CatalogEntry {
	return []secretsDomain.CatalogEntry{
		{Name: "region", EnvVar: "APP_REGION", Default: "us-east-1"},
		{Name: "demo-banner", EnvVar: "DEMO_BANNER", Default: "secretgate"},
		{Name: "feature.ui", EnvVar: "FEATURE_UI", Default: "disabled"},
		{Name: "db-password", EnvVar: "DB_PASSWORD", VaultPath: "app/db#password"},
		{Name: "api-key", EnvVar: "API_KEY", VaultPath: "app/api#key"},
	}
}

// LoadCatalog builds the secret catalog from path, or the built-in one when path is empty.
func LoadCatalog(path string) (*secretsDomain.Catalog, error) {
	if path == "" {
		return secretsDomain.NewCatalog(DefaultCatalogEntries())
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read secret catalog: %w", err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document. Unknown fields are rejected so that typos
// do not silently drop a mapping.
func ParseCatalog(data []byte) (*secretsDomain.Catalog, error) {
	var file catalogFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", secretsDomain.ErrInvalidCatalog, err)
	}

	entries := make([]secretsDomain.CatalogEntry, 0, len(file.Secrets))
	for _, item := range file.Secrets {
		entries = append(entries, secretsDomain.CatalogEntry{
			Name:      item.Name,
			EnvVar:    item.Env,
			VaultPath: item.VaultPath,
			Default:   item.Default,
		})
	}

	return secretsDomain.NewCatalog(entries)
}
