package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"

	"github.com/allisson/secretgate/internal/resilience"
	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// secretsManagerAPI is the subset of the Secrets Manager client used here.
type secretsManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManagerConfig configures the Secrets Manager client.
type AWSSecretsManagerConfig struct {
	Region string
	Retry  resilience.RetryConfig
}

type awsSecretsManagerClient struct {
	api    secretsManagerAPI
	retry  resilience.RetryConfig
	logger *slog.Logger
}

// NewAWSSecretsManagerClient creates a VaultClient backed by AWS Secrets Manager using the
// default credential chain. Paths are secret ids, optionally followed by #field to select a
// key from a JSON secret string.
func NewAWSSecretsManagerClient(
	ctx context.Context,
	cfg AWSSecretsManagerConfig,
	logger *slog.Logger,
) (VaultClient, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsConfig, func(o *secretsmanager.Options) {
		// retries are owned by resilience.Retry
		o.RetryMaxAttempts = 1
	})

	return newAWSSecretsManagerClient(client, cfg.Retry, logger), nil
}

func newAWSSecretsManagerClient(
	api secretsManagerAPI,
	retry resilience.RetryConfig,
	logger *slog.Logger,
) *awsSecretsManagerClient {
	return &awsSecretsManagerClient{
		api:    api,
		retry:  retry,
		logger: logger,
	}
}

// GetSecret reads a secret string, selecting a JSON field when one is given.
func (a *awsSecretsManagerClient) GetSecret(ctx context.Context, path string) (string, error) {
	secretID, field := splitVaultPath(path)

	var secretString string
	err := resilience.Retry(ctx, a.retry, func(ctx context.Context) error {
		out, err := a.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretID),
		})
		if err != nil {
			classified := classifyAWSError(err)
			if !resilience.IsPermanent(classified) {
				a.logger.Debug("secrets manager read failed, retrying", slog.Any("error", err))
			}
			return classified
		}

		switch {
		case out.SecretString != nil:
			secretString = aws.ToString(out.SecretString)
		case len(out.SecretBinary) > 0:
			secretString = string(out.SecretBinary)
		default:
			return resilience.Permanent(secretsDomain.ErrVaultNotFound)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if field == "" {
		return secretString, nil
	}
	return selectJSONField(secretString, field)
}

func selectJSONField(secretString, field string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(secretString), &data); err != nil {
		return "", fmt.Errorf("%w: secret is not a JSON object", secretsDomain.ErrVaultNotFound)
	}

	raw, ok := data[field]
	if !ok {
		return "", fmt.Errorf("%w: field %q missing", secretsDomain.ErrVaultNotFound, field)
	}
	str, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is not a string", secretsDomain.ErrVaultNotFound, field)
	}
	return str, nil
}

// classifyAWSError maps Secrets Manager errors to the vault outcome classes.
func classifyAWSError(err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return resilience.Permanent(secretsDomain.ErrVaultNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "AccessDenied", "UnrecognizedClientException":
			return resilience.Permanent(
				fmt.Errorf("%w: %s", secretsDomain.ErrVaultAccessDenied, apiErr.ErrorCode()),
			)
		}
		if apiErr.ErrorFault() == smithy.FaultClient {
			return resilience.Permanent(
				fmt.Errorf("%w: %s", secretsDomain.ErrVaultUnavailable, apiErr.ErrorCode()),
			)
		}
		return fmt.Errorf("%w: %s", secretsDomain.ErrVaultUnavailable, apiErr.ErrorCode())
	}

	return fmt.Errorf("%w: %v", secretsDomain.ErrVaultUnavailable, err)
}
