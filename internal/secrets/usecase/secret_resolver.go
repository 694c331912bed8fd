package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/allisson/secretgate/internal/logging"
	"github.com/allisson/secretgate/internal/resilience"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
	secretsService "github.com/allisson/secretgate/internal/secrets/service"
)

type secretResolver struct {
	catalog   *secretsDomain.Catalog
	providers []secretsService.Provider
	cache     *secretsService.SecretCache
	auditLog  AuditLogUseCase
	logger    *slog.Logger
}

// ResolverOption customizes the secret resolver.
type ResolverOption func(*secretResolver)

// WithAuditLog records every resolution attempt.
func WithAuditLog(auditLog AuditLogUseCase) ResolverOption {
	return func(r *secretResolver) {
		r.auditLog = auditLog
	}
}

// NewSecretResolver creates a resolver trying providers in the given order.
func NewSecretResolver(
	catalog *secretsDomain.Catalog,
	providers []secretsService.Provider,
	cache *secretsService.SecretCache,
	logger *slog.Logger,
	opts ...ResolverOption,
) SecretResolver {
	r := &secretResolver{
		catalog:   catalog,
		providers: providers,
		cache:     cache,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the cached value when fresh, otherwise walks the provider cascade.
func (r *secretResolver) Resolve(
	ctx context.Context,
	input secretsDomain.ResolveInput,
) secretsDomain.ResolveOutput {
	output := r.resolve(ctx, input, false)
	r.record(ctx, input, output)
	return output
}

// Refresh bypasses the cache for a single name.
func (r *secretResolver) Refresh(
	ctx context.Context,
	input secretsDomain.ResolveInput,
) secretsDomain.ResolveOutput {
	output := r.resolve(ctx, input, true)
	r.record(ctx, input, output)
	return output
}

func (r *secretResolver) resolve(
	ctx context.Context,
	input secretsDomain.ResolveInput,
	refresh bool,
) secretsDomain.ResolveOutput {
	name := input.Name
	if !r.catalog.Allowed(name) {
		r.logger.Warn("secret name not allowed",
			logging.MaskedAttr("name", name),
			logging.MaskedAttr("caller", input.Caller),
		)
		return secretsDomain.Failed(secretsDomain.ErrorKindNameNotAllowed)
	}

	if refresh {
		r.cache.Delete(name)
	} else if value, source, ok := r.cache.Get(name); ok {
		return secretsDomain.Resolved(value, source, true)
	}

	var failure secretsDomain.ErrorKind
	for _, provider := range r.providers {
		value, err := provider.Attempt(ctx, name)
		if err == nil {
			r.cache.Set(name, value, provider.Source())
			r.logger.Debug("secret resolved",
				slog.String("name", name),
				slog.String("source", string(provider.Source())),
			)
			return secretsDomain.Resolved(value, provider.Source(), false)
		}
		if errors.Is(err, secretsDomain.ErrNotInProvider) {
			continue
		}

		kind := classifyProviderError(err)
		r.logger.Warn("secret provider failed",
			slog.String("name", name),
			slog.String("source", string(provider.Source())),
			slog.String("error_kind", string(kind)),
			slog.Any("error", err),
		)
		if kind == secretsDomain.ErrorKindNotFound {
			return secretsDomain.Failed(kind)
		}
		if failure == secretsDomain.ErrorKindNone {
			failure = kind
		}
	}

	if failure == secretsDomain.ErrorKindNone {
		failure = secretsDomain.ErrorKindNotFound
	}
	return secretsDomain.Failed(failure)
}

// classifyProviderError maps a provider error to an error kind. Only a definite vault
// "not found" is terminal; every other failure falls through to the next provider.
func classifyProviderError(err error) secretsDomain.ErrorKind {
	switch {
	case errors.Is(err, secretsDomain.ErrVaultNotFound):
		return secretsDomain.ErrorKindNotFound
	case errors.Is(err, secretsDomain.ErrVaultAccessDenied):
		return secretsDomain.ErrorKindAccessDenied
	case errors.Is(err, resilience.ErrCircuitOpen):
		return secretsDomain.ErrorKindCircuitOpen
	default:
		return secretsDomain.ErrorKindInternal
	}
}

func (r *secretResolver) record(
	ctx context.Context,
	input secretsDomain.ResolveInput,
	output secretsDomain.ResolveOutput,
) {
	if r.auditLog == nil {
		return
	}
	if err := r.auditLog.Record(ctx, input, output); err != nil {
		r.logger.Error("failed to record audit entry",
			slog.String("name", input.Name),
			slog.Any("error", err),
		)
	}
}
