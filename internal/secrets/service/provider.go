package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/allisson/secretgate/internal/resilience"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// SealedValuePrefix marks an environment value as base64 ciphertext to be opened by the keeper.
const SealedValuePrefix = "enc:"

// demoOverrides is the fixed table served in demo mode. It only holds non-sensitive values.
var demoOverrides = map[string]string{
	"region":      "us-east-1",
	"demo-banner": "secretgate demo mode",
	"feature.ui":  "enabled",
}

type overrideProvider struct {
	table map[string]string
}

// NewDemoOverrideProvider returns the provider backed by the built-in demo table.
func NewDemoOverrideProvider() Provider {
	return newOverrideProvider(demoOverrides)
}

func newOverrideProvider(table map[string]string) *overrideProvider {
	copied := make(map[string]string, len(table))
	for name, value := range table {
		copied[name] = value
	}
	return &overrideProvider{table: copied}
}

func (p *overrideProvider) Source() secretsDomain.Source {
	return secretsDomain.SourceOverride
}

func (p *overrideProvider) Attempt(_ context.Context, name string) (string, error) {
	value, ok := p.table[name]
	if !ok || value == "" {
		return "", secretsDomain.ErrNotInProvider
	}
	return value, nil
}

type environmentProvider struct {
	catalog   *secretsDomain.Catalog
	decrypter Decrypter
	lookupEnv func(string) (string, bool)
}

// EnvironmentOption customizes the environment provider.
type EnvironmentOption func(*environmentProvider)

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) EnvironmentOption {
	return func(p *environmentProvider) {
		p.lookupEnv = fn
	}
}

// NewEnvironmentProvider maps catalog names to environment variables. decrypter may be nil,
// in which case sealed values are reported as invalid.
func NewEnvironmentProvider(
	catalog *secretsDomain.Catalog,
	decrypter Decrypter,
	opts ...EnvironmentOption,
) Provider {
	p := &environmentProvider{
		catalog:   catalog,
		decrypter: decrypter,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *environmentProvider) Source() secretsDomain.Source {
	return secretsDomain.SourceEnvironment
}

func (p *environmentProvider) Attempt(ctx context.Context, name string) (string, error) {
	entry, ok := p.catalog.Lookup(name)
	if !ok || entry.EnvVar == "" {
		return "", secretsDomain.ErrNotInProvider
	}

	raw, ok := p.lookupEnv(entry.EnvVar)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", secretsDomain.ErrNotInProvider
	}

	if !strings.HasPrefix(raw, SealedValuePrefix) {
		return raw, nil
	}
	return p.unseal(ctx, strings.TrimPrefix(raw, SealedValuePrefix))
}

func (p *environmentProvider) unseal(ctx context.Context, encoded string) (string, error) {
	if p.decrypter == nil {
		return "", fmt.Errorf("%w: no keeper configured", secretsDomain.ErrSealedValueInvalid)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", secretsDomain.ErrSealedValueInvalid, err)
	}

	plaintext, err := p.decrypter.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", secretsDomain.ErrSealedValueInvalid, err)
	}
	if len(plaintext) == 0 {
		return "", secretsDomain.ErrNotInProvider
	}
	return string(plaintext), nil
}

// VaultProvider reads catalog vault paths through a circuit breaker.
type VaultProvider struct {
	catalog *secretsDomain.Catalog
	client  VaultClient
	breaker *resilience.CircuitBreaker
}

// IsVaultFailure decides what counts against the vault breaker. A definite "not found"
// answer means the vault is healthy.
func IsVaultFailure(err error) bool {
	return err != nil && !errors.Is(err, secretsDomain.ErrVaultNotFound)
}

// NewVaultProvider wires client behind a breaker named "vault". The failure predicate is
// always IsVaultFailure; opts may add a state change hook or a clock.
func NewVaultProvider(
	catalog *secretsDomain.Catalog,
	client VaultClient,
	config resilience.BreakerConfig,
	opts ...resilience.BreakerOption,
) *VaultProvider {
	opts = append(opts, resilience.WithIsFailure(IsVaultFailure))
	return &VaultProvider{
		catalog: catalog,
		client:  client,
		breaker: resilience.NewCircuitBreaker("vault", config, opts...),
	}
}

// Breaker exposes the breaker for readiness reporting.
func (p *VaultProvider) Breaker() *resilience.CircuitBreaker {
	return p.breaker
}

func (p *VaultProvider) Source() secretsDomain.Source {
	return secretsDomain.SourceVault
}

func (p *VaultProvider) Attempt(ctx context.Context, name string) (string, error) {
	entry, ok := p.catalog.Lookup(name)
	if !ok || entry.VaultPath == "" {
		return "", secretsDomain.ErrNotInProvider
	}

	value, err := resilience.Call(ctx, p.breaker, func(ctx context.Context) (string, error) {
		return p.client.GetSecret(ctx, entry.VaultPath)
	})
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", secretsDomain.ErrNotInProvider
	}
	return value, nil
}

type defaultProvider struct {
	catalog *secretsDomain.Catalog
}

// NewDefaultProvider serves catalog safe defaults. Credential-like names are never served.
func NewDefaultProvider(catalog *secretsDomain.Catalog) Provider {
	return &defaultProvider{catalog: catalog}
}

func (p *defaultProvider) Source() secretsDomain.Source {
	return secretsDomain.SourceDefault
}

func (p *defaultProvider) Attempt(_ context.Context, name string) (string, error) {
	entry, ok := p.catalog.Lookup(name)
	if !ok || entry.Default == "" || secretsDomain.LooksLikeCredential(name) {
		return "", secretsDomain.ErrNotInProvider
	}
	return entry.Default, nil
}
