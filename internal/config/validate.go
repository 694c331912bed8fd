package config

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/secretgate/internal/validation"
)

// minAuditSigningKeyBytes is the shortest decoded AUDIT_SIGNING_KEY accepted.
const minAuditSigningKeyBytes = 32

// Validate checks the loaded configuration before any component is built.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.DeploymentMode,
			validation.Required,
			validation.In(DeploymentModeProduction, DeploymentModeDevelopment),
		),
		validation.Field(&c.JWKSURI, validation.Required, customValidation.AbsoluteURL),
		validation.Field(&c.JWKSAlternateURI, customValidation.AbsoluteURL),
		validation.Field(&c.AuthExpectedAudience, validation.Required, customValidation.NotBlank),
		validation.Field(&c.AuthClockSkew, validation.Min(0)),
		validation.Field(&c.JWKSCacheTTL, validation.Required),
		validation.Field(&c.JWKSHTTPTimeout, validation.Required),
		validation.Field(&c.BreakerFailureThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.BreakerCooldown, validation.Required),
		validation.Field(&c.BreakerSuccessThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.RateLimitWindow, validation.When(c.RateLimitEnabled, validation.Required)),
		validation.Field(&c.RateLimitAuthMaxRequests,
			validation.When(c.RateLimitEnabled, validation.Required, validation.Min(1)),
		),
		validation.Field(&c.RateLimitSecretsMaxRequests,
			validation.When(c.RateLimitEnabled, validation.Required, validation.Min(1)),
		),
		validation.Field(&c.SecretCacheTTL, validation.Required),
		validation.Field(&c.VaultProvider,
			validation.In(VaultProviderNone, VaultProviderHashiCorp, VaultProviderAWS),
		),
		validation.Field(&c.VaultAddress,
			validation.When(c.VaultProvider == VaultProviderHashiCorp,
				validation.Required, customValidation.AbsoluteURL),
		),
		validation.Field(&c.VaultToken,
			validation.When(c.VaultProvider == VaultProviderHashiCorp, validation.Required),
		),
		validation.Field(&c.AWSRegion,
			validation.When(c.VaultProvider == VaultProviderAWS, validation.Required),
		),
		validation.Field(&c.RetryMaxAttempts, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.AuditSigningKey, customValidation.Base64Key(minAuditSigningKeyBytes)),
		validation.Field(&c.DBDriver, validation.When(c.AuditEnabled,
			validation.Required, validation.In("postgres", "mysql"))),
		validation.Field(&c.DBConnectionString, validation.When(c.AuditEnabled, validation.Required)),
		validation.Field(&c.MetricsPort, validation.When(c.MetricsEnabled,
			validation.Required, validation.Min(1), validation.Max(65535))),
	)
	return customValidation.WrapValidationError(err)
}
