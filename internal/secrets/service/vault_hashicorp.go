package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/allisson/secretgate/internal/resilience"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// HashiCorpVaultConfig configures the KV v2 client.
type HashiCorpVaultConfig struct {
	Address   string
	Token     string
	Namespace string
	Mount     string
	Timeout   time.Duration
	Retry     resilience.RetryConfig
}

// defaultKVField is read when a KV path has no #field suffix.
const defaultKVField = "value"

type hashiCorpVaultClient struct {
	client *api.Client
	mount  string
	retry  resilience.RetryConfig
	logger *slog.Logger
}

// NewHashiCorpVaultClient creates a VaultClient reading KV v2 secrets. Paths use the form
// "app/db#password"; the field defaults to "value".
func NewHashiCorpVaultClient(config HashiCorpVaultConfig, logger *slog.Logger) (VaultClient, error) {
	apiConfig := api.DefaultConfig()
	if apiConfig.Error != nil {
		return nil, fmt.Errorf("failed to read vault environment: %w", apiConfig.Error)
	}
	apiConfig.Address = config.Address
	// retries are owned by resilience.Retry
	apiConfig.MaxRetries = 0
	if config.Timeout > 0 {
		apiConfig.Timeout = config.Timeout
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(config.Token)
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	mount := config.Mount
	if mount == "" {
		mount = "secret"
	}

	return &hashiCorpVaultClient{
		client: client,
		mount:  mount,
		retry:  config.Retry,
		logger: logger,
	}, nil
}

// GetSecret reads one field of a KV v2 secret.
func (h *hashiCorpVaultClient) GetSecret(ctx context.Context, path string) (string, error) {
	location, field := splitVaultPath(path)
	if field == "" {
		field = defaultKVField
	}

	var value string
	err := resilience.Retry(ctx, h.retry, func(ctx context.Context) error {
		secret, err := h.client.KVv2(h.mount).Get(ctx, location)
		if err != nil {
			classified := classifyHashiCorpError(err)
			if !resilience.IsPermanent(classified) {
				h.logger.Debug("vault read failed, retrying",
					slog.String("mount", h.mount),
					slog.Any("error", err),
				)
			}
			return classified
		}
		if secret == nil || secret.Data == nil {
			return resilience.Permanent(secretsDomain.ErrVaultNotFound)
		}

		raw, ok := secret.Data[field]
		if !ok {
			return resilience.Permanent(
				fmt.Errorf("%w: field %q missing", secretsDomain.ErrVaultNotFound, field),
			)
		}
		str, ok := raw.(string)
		if !ok {
			return resilience.Permanent(
				fmt.Errorf("%w: field %q is not a string", secretsDomain.ErrVaultNotFound, field),
			)
		}
		value = str
		return nil
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// classifyHashiCorpError maps vault api errors to the vault outcome classes.
// Client-class answers are permanent; everything else may be retried.
func classifyHashiCorpError(err error) error {
	if errors.Is(err, api.ErrSecretNotFound) {
		return resilience.Permanent(secretsDomain.ErrVaultNotFound)
	}

	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusNotFound:
			return resilience.Permanent(secretsDomain.ErrVaultNotFound)
		case respErr.StatusCode == http.StatusForbidden || respErr.StatusCode == http.StatusUnauthorized:
			return resilience.Permanent(
				fmt.Errorf("%w: status %d", secretsDomain.ErrVaultAccessDenied, respErr.StatusCode),
			)
		case respErr.StatusCode >= 400 && respErr.StatusCode < 500:
			return resilience.Permanent(
				fmt.Errorf("%w: status %d", secretsDomain.ErrVaultUnavailable, respErr.StatusCode),
			)
		}
		return fmt.Errorf("%w: status %d", secretsDomain.ErrVaultUnavailable, respErr.StatusCode)
	}

	return fmt.Errorf("%w: %v", secretsDomain.ErrVaultUnavailable, err)
}
