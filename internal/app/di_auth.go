package app

import (
	"fmt"
	nethttp "net/http"
	"sync"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	authHTTP "github.com/allisson/secretgate/internal/auth/http"
	authService "github.com/allisson/secretgate/internal/auth/service"
	authUseCase "github.com/allisson/secretgate/internal/auth/usecase"
)

// authComponents groups the lazily built token validation collaborators.
type authComponents struct {
	keyResolver    authService.KeyResolver
	tokenValidator authUseCase.TokenValidator
	tokenHandler   *authHTTP.TokenHandler

	keyResolverInit    sync.Once
	tokenValidatorInit sync.Once
	tokenHandlerInit   sync.Once
}

// KeyResolver returns the JWKS-backed signing key resolver.
func (c *Container) KeyResolver() authService.KeyResolver {
	c.keyResolverInit.Do(func() {
		c.keyResolver = authService.NewKeyResolver(
			authService.KeyResolverConfig{
				URI:                c.config.JWKSURI,
				AlternateURI:       c.config.JWKSAlternateURI,
				CacheTTL:           c.config.JWKSCacheTTL,
				MinRefreshInterval: c.config.JWKSMinRefreshInterval,
			},
			&nethttp.Client{Timeout: c.config.JWKSHTTPTimeout},
			c.Logger(),
		)
	})
	return c.keyResolver
}

// ValidationPolicy returns the token policy built from configuration. Relaxed checks are
// only enabled by the development deployment mode.
func (c *Container) ValidationPolicy() authDomain.ValidationPolicy {
	return authDomain.ValidationPolicy{
		ExpectedAudience: c.config.AuthExpectedAudience,
		AcceptedIssuers:  c.config.AuthAcceptedIssuers,
		RequiredScope:    c.config.AuthRequiredScope,
		ClockSkew:        c.config.AuthClockSkew,
		Relaxed:          c.config.IsDevelopment(),
	}
}

// TokenValidator returns the bearer token validator.
func (c *Container) TokenValidator() (authUseCase.TokenValidator, error) {
	var err error
	c.tokenValidatorInit.Do(func() {
		c.tokenValidator, err = c.initTokenValidator()
		if err != nil {
			c.initErrors["tokenValidator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenValidator"]; exists {
		return nil, storedErr
	}
	return c.tokenValidator, nil
}

// TokenHandler returns the HTTP handler for the token validation endpoint.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// initTokenValidator creates the validator and wraps it with metrics if enabled.
func (c *Container) initTokenValidator() (authUseCase.TokenValidator, error) {
	baseValidator := authUseCase.NewTokenValidator(
		c.KeyResolver(),
		authService.NewTokenParser(),
		c.ValidationPolicy(),
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token validator: %w", err)
		}
		return authUseCase.NewTokenValidatorWithMetrics(baseValidator, businessMetrics), nil
	}

	return baseValidator, nil
}

func (c *Container) initTokenHandler() (*authHTTP.TokenHandler, error) {
	validator, err := c.TokenValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to get token validator for token handler: %w", err)
	}
	return authHTTP.NewTokenHandler(validator, c.Logger()), nil
}
