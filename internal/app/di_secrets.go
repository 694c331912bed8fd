package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	"github.com/allisson/secretgate/internal/config"
	"github.com/allisson/secretgate/internal/database"
	"github.com/allisson/secretgate/internal/resilience"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
	secretsHTTP "github.com/allisson/secretgate/internal/secrets/http"
	secretsRepository "github.com/allisson/secretgate/internal/secrets/repository"
	secretsService "github.com/allisson/secretgate/internal/secrets/service"
	secretsUseCase "github.com/allisson/secretgate/internal/secrets/usecase"
)

// secretsComponents groups the lazily built secret resolution collaborators.
type secretsComponents struct {
	catalog         *secretsDomain.Catalog
	keeper          *secretsService.KeeperDecrypter
	vaultProvider   *secretsService.VaultProvider
	secretCache     *secretsService.SecretCache
	auditRepository secretsUseCase.AuditRepository
	auditLogUseCase secretsUseCase.AuditLogUseCase
	secretResolver  secretsUseCase.SecretResolver
	secretHandler   *secretsHTTP.SecretHandler
	auditLogHandler *secretsHTTP.AuditLogHandler

	catalogInit         sync.Once
	keeperInit          sync.Once
	vaultProviderInit   sync.Once
	secretCacheInit     sync.Once
	auditRepositoryInit sync.Once
	auditLogUseCaseInit sync.Once
	secretResolverInit  sync.Once
	secretHandlerInit   sync.Once
	auditLogHandlerInit sync.Once
}

// Catalog returns the allow-list of resolvable secret names.
func (c *Container) Catalog() (*secretsDomain.Catalog, error) {
	var err error
	c.catalogInit.Do(func() {
		c.catalog, err = c.initCatalog()
		if err != nil {
			c.initErrors["catalog"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["catalog"]; exists {
		return nil, storedErr
	}
	return c.catalog, nil
}

// Keeper returns the KMS keeper for sealed environment values, or nil when KMS_KEY_URI is unset.
func (c *Container) Keeper() (*secretsService.KeeperDecrypter, error) {
	var err error
	c.keeperInit.Do(func() {
		c.keeper, err = c.initKeeper()
		if err != nil {
			c.initErrors["keeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keeper"]; exists {
		return nil, storedErr
	}
	return c.keeper, nil
}

// VaultProvider returns the breaker-guarded vault provider, or nil when no vault is configured.
func (c *Container) VaultProvider() (*secretsService.VaultProvider, error) {
	var err error
	c.vaultProviderInit.Do(func() {
		c.vaultProvider, err = c.initVaultProvider()
		if err != nil {
			c.initErrors["vaultProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultProvider"]; exists {
		return nil, storedErr
	}
	return c.vaultProvider, nil
}

// SecretCache returns the in-memory cache of resolved values.
func (c *Container) SecretCache() *secretsService.SecretCache {
	c.secretCacheInit.Do(func() {
		c.secretCache = secretsService.NewSecretCache(c.config.SecretCacheTTL)
	})
	return c.secretCache
}

// AuditRepository returns the audit repository based on database driver.
func (c *Container) AuditRepository() (secretsUseCase.AuditRepository, error) {
	var err error
	c.auditRepositoryInit.Do(func() {
		c.auditRepository, err = c.initAuditRepository()
		if err != nil {
			c.initErrors["auditRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepository"]; exists {
		return nil, storedErr
	}
	return c.auditRepository, nil
}

// AuditLogUseCase returns the audit trail use case.
func (c *Container) AuditLogUseCase() (secretsUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// SecretResolver returns the secret resolver.
func (c *Container) SecretResolver() (secretsUseCase.SecretResolver, error) {
	var err error
	c.secretResolverInit.Do(func() {
		c.secretResolver, err = c.initSecretResolver()
		if err != nil {
			c.initErrors["secretResolver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretResolver"]; exists {
		return nil, storedErr
	}
	return c.secretResolver, nil
}

// SecretHandler returns the HTTP handler for secret lookups.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	var err error
	c.secretHandlerInit.Do(func() {
		c.secretHandler, err = c.initSecretHandler()
		if err != nil {
			c.initErrors["secretHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

// AuditLogHandler returns the HTTP handler for audit log listing, or nil when the audit
// trail is disabled.
func (c *Container) AuditLogHandler() (*secretsHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		c.auditLogHandler, err = c.initAuditLogHandler()
		if err != nil {
			c.initErrors["auditLogHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

func (c *Container) initCatalog() (*secretsDomain.Catalog, error) {
	if c.config.SecretCatalogPath != "" {
		catalog, err := config.LoadCatalog(c.config.SecretCatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load secret catalog: %w", err)
		}
		return catalog, nil
	}
	catalog, err := secretsDomain.NewCatalog(config.DefaultCatalogEntries())
	if err != nil {
		return nil, fmt.Errorf("failed to build default secret catalog: %w", err)
	}
	return catalog, nil
}

func (c *Container) initKeeper() (*secretsService.KeeperDecrypter, error) {
	if c.config.KMSKeyURI == "" {
		return nil, nil
	}
	keeper, err := secretsService.OpenKeeperDecrypter(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	return keeper, nil
}

// initVaultProvider selects the vault client by VAULT_PROVIDER and guards it with a breaker
// whose transitions are logged and counted.
func (c *Container) initVaultProvider() (*secretsService.VaultProvider, error) {
	logger := c.Logger()

	catalog, err := c.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog for vault provider: %w", err)
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = c.config.RetryMaxAttempts

	var client secretsService.VaultClient
	switch c.config.VaultProvider {
	case config.VaultProviderNone:
		return nil, nil
	case config.VaultProviderHashiCorp:
		client, err = secretsService.NewHashiCorpVaultClient(secretsService.HashiCorpVaultConfig{
			Address:   c.config.VaultAddress,
			Token:     c.config.VaultToken,
			Namespace: c.config.VaultNamespace,
			Mount:     c.config.VaultKVMount,
			Retry:     retry,
		}, logger)
	case config.VaultProviderAWS:
		client, err = secretsService.NewAWSSecretsManagerClient(
			context.Background(),
			secretsService.AWSSecretsManagerConfig{Region: c.config.AWSRegion, Retry: retry},
			logger,
		)
	default:
		return nil, fmt.Errorf("unsupported vault provider: %s", c.config.VaultProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for vault provider: %w", err)
	}

	breakerConfig := resilience.BreakerConfig{
		FailureThreshold: c.config.BreakerFailureThreshold,
		Cooldown:         c.config.BreakerCooldown,
		SuccessThreshold: c.config.BreakerSuccessThreshold,
	}
	onStateChange := resilience.WithOnStateChange(func(name string, from, to resilience.State) {
		logger.Warn("circuit breaker state changed",
			slog.String("breaker", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
		businessMetrics.RecordStateChange(context.Background(), name, from.String(), to.String())
	})

	return secretsService.NewVaultProvider(catalog, client, breakerConfig, onStateChange), nil
}

// Providers returns the resolution cascade: demo overrides (demo mode only), environment,
// vault (when configured) and catalog defaults.
func (c *Container) Providers() ([]secretsService.Provider, error) {
	catalog, err := c.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog for providers: %w", err)
	}
	keeper, err := c.Keeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get keeper for providers: %w", err)
	}
	vaultProvider, err := c.VaultProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault provider for providers: %w", err)
	}

	var providers []secretsService.Provider
	if c.config.DemoMode {
		providers = append(providers, secretsService.NewDemoOverrideProvider())
	}

	var decrypter secretsService.Decrypter
	if keeper != nil {
		decrypter = keeper
	}
	providers = append(providers, secretsService.NewEnvironmentProvider(catalog, decrypter))

	if vaultProvider != nil {
		providers = append(providers, vaultProvider)
	}
	providers = append(providers, secretsService.NewDefaultProvider(catalog))

	return providers, nil
}

func (c *Container) initAuditRepository() (secretsUseCase.AuditRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return secretsRepository.NewMySQLAuditRepository(db), nil
	case database.DriverPostgres:
		return secretsRepository.NewPostgreSQLAuditRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditLogUseCase() (secretsUseCase.AuditLogUseCase, error) {
	auditRepository, err := c.AuditRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit repository for audit log use case: %w", err)
	}

	signingKey, err := decodeSigningKey(c.config.AuditSigningKey)
	if err != nil {
		return nil, err
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log use case: %w", err)
	}

	return secretsUseCase.NewAuditLogUseCase(
		database.NewTxManager(db),
		auditRepository,
		secretsService.NewAuditSigner(),
		signingKey,
	), nil
}

// initSecretResolver creates the resolver and wraps it with metrics if enabled.
func (c *Container) initSecretResolver() (secretsUseCase.SecretResolver, error) {
	catalog, err := c.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog for secret resolver: %w", err)
	}
	providers, err := c.Providers()
	if err != nil {
		return nil, fmt.Errorf("failed to get providers for secret resolver: %w", err)
	}

	var opts []secretsUseCase.ResolverOption
	if c.config.AuditEnabled {
		auditLogUseCase, err := c.AuditLogUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get audit log use case for secret resolver: %w", err)
		}
		opts = append(opts, secretsUseCase.WithAuditLog(auditLogUseCase))
	}

	baseResolver := secretsUseCase.NewSecretResolver(catalog, providers, c.SecretCache(), c.Logger(), opts...)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secret resolver: %w", err)
		}
		return secretsUseCase.NewSecretResolverWithMetrics(baseResolver, businessMetrics), nil
	}

	return baseResolver, nil
}

func (c *Container) initSecretHandler() (*secretsHTTP.SecretHandler, error) {
	resolver, err := c.SecretResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret resolver for secret handler: %w", err)
	}
	return secretsHTTP.NewSecretHandler(resolver, c.Logger()), nil
}

func (c *Container) initAuditLogHandler() (*secretsHTTP.AuditLogHandler, error) {
	if !c.config.AuditEnabled {
		return nil, nil
	}
	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
	}
	return secretsHTTP.NewAuditLogHandler(auditLogUseCase, c.Logger()), nil
}

// decodeSigningKey decodes the base64 audit signing key. An empty key disables signing.
func decodeSigningKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audit signing key: %w", err)
	}
	return key, nil
}
