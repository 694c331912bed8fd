// Package usecase implements business logic orchestration for bearer-token validation.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	authService "github.com/allisson/secretgate/internal/auth/service"
	"github.com/allisson/secretgate/internal/logging"
)

// errClaimRejected pairs a rejection kind with the text used when relaxed mode turns it into
// a warning.
type errClaimRejected struct {
	kind    authDomain.ErrorKind
	message string
}

func (e *errClaimRejected) Error() string { return e.message }

// tokenValidator implements TokenValidator.
type tokenValidator struct {
	keyResolver authService.KeyResolver
	tokenParser authService.TokenParser
	policy      authDomain.ValidationPolicy
	logger      *slog.Logger
	now         func() time.Time
}

// Validate decodes the token, checks its algorithm, resolves a key and verifies the
// signature before looking at any claim. The first failing check decides the rejection.
func (v *tokenValidator) Validate(ctx context.Context, token string) authDomain.ValidationResult {
	decoded, err := v.tokenParser.Decode(token)
	if err != nil {
		return v.reject(token, authDomain.ErrorKindMalformedToken, err)
	}

	if decoded.Header.Algorithm == "" {
		return v.reject(token, authDomain.ErrorKindMissingAlgorithm, nil)
	}
	if !authDomain.IsSupportedAlgorithm(decoded.Header.Algorithm) {
		return v.reject(token, authDomain.ErrorKindInvalidSignature,
			fmt.Errorf("algorithm %q is not accepted", decoded.Header.Algorithm))
	}

	if kind, err := v.verifySignature(ctx, decoded); err != nil {
		return v.reject(token, kind, err)
	}

	warnings, err := v.checkClaims(&decoded.Claims)
	if err != nil {
		var rejected *errClaimRejected
		if errors.As(err, &rejected) {
			return v.reject(token, rejected.kind, nil)
		}
		return v.reject(token, authDomain.ErrorKindMalformedToken, err)
	}

	for _, warning := range warnings {
		v.logger.Warn("token accepted under relaxed validation",
			logging.TokenAttr(token),
			slog.String("warning", warning),
		)
	}
	return authDomain.Accepted(decoded.Claims, warnings)
}

// verifySignature resolves the key by id when the header names one, and otherwise tries every
// signing key of the set until one verifies.
func (v *tokenValidator) verifySignature(
	ctx context.Context,
	decoded *authDomain.DecodedToken,
) (authDomain.ErrorKind, error) {
	alg := decoded.Header.Algorithm

	if decoded.Header.KeyID != "" {
		key, err := v.keyResolver.Resolve(ctx, decoded.Header.KeyID)
		if err != nil {
			return authDomain.ErrorKindKeyResolutionFailed, err
		}
		if key.Algorithm != "" && key.Algorithm != alg {
			return authDomain.ErrorKindInvalidSignature,
				fmt.Errorf("key %q is bound to %s, token uses %s", key.ID, key.Algorithm, alg)
		}
		if err := v.tokenParser.Verify(decoded.Raw, key); err != nil {
			return authDomain.ErrorKindInvalidSignature, err
		}
		return authDomain.ErrorKindNone, nil
	}

	_, err := v.keyResolver.ResolveByTrial(ctx, func(key authDomain.SigningKey) error {
		if key.Algorithm != "" && key.Algorithm != alg {
			return authDomain.ErrInvalidSignature
		}
		return v.tokenParser.Verify(decoded.Raw, key)
	})
	switch {
	case err == nil:
		return authDomain.ErrorKindNone, nil
	case errors.Is(err, authDomain.ErrNoMatchingKey):
		return authDomain.ErrorKindInvalidSignature, err
	default:
		return authDomain.ErrorKindKeyResolutionFailed, err
	}
}

// checkClaims applies subject, audience, expiry, not-before, issuer and scope checks in that
// order. Audience, issuer and scope failures become warnings under a relaxed policy.
func (v *tokenValidator) checkClaims(claims *authDomain.Claims) ([]string, error) {
	var warnings []string
	soft := func(kind authDomain.ErrorKind, message string) error {
		if v.policy.Relaxed {
			warnings = append(warnings, message)
			return nil
		}
		return &errClaimRejected{kind: kind, message: message}
	}

	if claims.Subject == "" {
		return nil, &errClaimRejected{kind: authDomain.ErrorKindMissingSubject, message: "subject is missing"}
	}

	if v.policy.ExpectedAudience != "" && !claims.HasAudience(v.policy.ExpectedAudience) {
		if err := soft(authDomain.ErrorKindAudienceMismatch, "audience does not include the expected value"); err != nil {
			return nil, err
		}
	}

	now := v.now()
	skew := v.policy.ClockSkew
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Add(skew)) {
		return nil, &errClaimRejected{kind: authDomain.ErrorKindTokenExpired, message: "token is expired"}
	}
	if claims.NotBefore != nil && claims.NotBefore.After(now.Add(skew)) {
		return nil, &errClaimRejected{kind: authDomain.ErrorKindTokenNotYetValid, message: "token is not valid yet"}
	}

	if len(v.policy.AcceptedIssuers) > 0 && !v.policy.AcceptsIssuer(claims.Issuer) {
		if err := soft(authDomain.ErrorKindIssuerMismatch, "issuer is not accepted"); err != nil {
			return nil, err
		}
	}

	if v.policy.RequiredScope != "" && claims.HasScope && !claims.HasScopeValue(v.policy.RequiredScope) {
		if err := soft(authDomain.ErrorKindMissingRequiredScope, "required scope is missing"); err != nil {
			return nil, err
		}
	}

	return warnings, nil
}

func (v *tokenValidator) reject(token string, kind authDomain.ErrorKind, cause error) authDomain.ValidationResult {
	attrs := []any{
		logging.TokenAttr(token),
		slog.String("error_kind", string(kind)),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}
	v.logger.Info("token rejected", attrs...)
	return authDomain.Rejected(kind)
}

// ValidatorOption customizes the token validator.
type ValidatorOption func(*tokenValidator)

// WithValidatorClock replaces time.Now, mainly for tests.
func WithValidatorClock(now func() time.Time) ValidatorOption {
	return func(v *tokenValidator) {
		v.now = now
	}
}

// NewTokenValidator creates a TokenValidator enforcing policy.
func NewTokenValidator(
	keyResolver authService.KeyResolver,
	tokenParser authService.TokenParser,
	policy authDomain.ValidationPolicy,
	logger *slog.Logger,
	opts ...ValidatorOption,
) TokenValidator {
	v := &tokenValidator{
		keyResolver: keyResolver,
		tokenParser: tokenParser,
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}
