package usecase

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	authService "github.com/allisson/secretgate/internal/auth/service"
)

const (
	testAudience = "api://secretgate"
	testIssuer   = "https://login.example.com/tenant/v2.0"
	testScope    = "secrets.read"
)

var (
	keysOnce sync.Once
	keyA     *rsa.PrivateKey
	keyB     *rsa.PrivateKey
	testNow  = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
)

func signingKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		var err error
		if keyA, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
		if keyB, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
	})
	return keyA, keyB
}

func jwk(kid string, key *rsa.PrivateKey) map[string]any {
	return map[string]any{
		"kty": "RSA",
		"use": "sig",
		"kid": kid,
		"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}
}

// keySetServer serves a JWKS document that tests can replace between calls.
type keySetServer struct {
	*httptest.Server
	mu   sync.Mutex
	keys []map[string]any
}

func newKeySetServer(t *testing.T, keys ...map[string]any) *keySetServer {
	t.Helper()
	s := &keySetServer{keys: keys}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": s.keys})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *keySetServer) SetKeys(keys ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = keys
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-42",
		"aud":   testAudience,
		"iss":   testIssuer,
		"iat":   testNow.Add(-time.Minute).Unix(),
		"nbf":   testNow.Add(-time.Minute).Unix(),
		"exp":   testNow.Add(time.Hour).Unix(),
		"scope": "openid " + testScope,
		"email": "user@example.com",
	}
}

func sign(t *testing.T, kid string, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func strictPolicy() authDomain.ValidationPolicy {
	return authDomain.ValidationPolicy{
		ExpectedAudience: testAudience,
		AcceptedIssuers:  []string{testIssuer, "https://sts.example.com/tenant/"},
		RequiredScope:    testScope,
	}
}

type validatorFixture struct {
	validator TokenValidator
	resolver  authService.KeyResolver
	server    *keySetServer
}

func newFixture(t *testing.T, policy authDomain.ValidationPolicy, keys ...map[string]any) validatorFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := newKeySetServer(t, keys...)
	resolver := authService.NewKeyResolver(
		authService.KeyResolverConfig{URI: server.URL, CacheTTL: time.Hour},
		server.Client(),
		logger,
	)
	validator := NewTokenValidator(resolver, authService.NewTokenParser(), policy, logger,
		WithValidatorClock(func() time.Time { return testNow }))
	return validatorFixture{validator: validator, resolver: resolver, server: server}
}

func TestTokenValidator_Validate(t *testing.T) {
	ctx := context.Background()
	a, b := signingKeys(t)

	t.Run("Success_ValidToken", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))

		result := f.validator.Validate(ctx, sign(t, "k1", a, validClaims()))

		require.True(t, result.Valid)
		assert.Equal(t, "user-42", result.UserID)
		assert.Equal(t, []string{"openid", testScope}, result.Scopes)
		require.NotNil(t, result.Claims)
		assert.Equal(t, "user@example.com", result.Claims.Email)
		assert.Equal(t, authDomain.ErrorKindNone, result.ErrorKind)
		assert.Empty(t, result.Warnings)
	})

	t.Run("Success_NoKidSingleKeyTrial", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))

		result := f.validator.Validate(ctx, sign(t, "", a, validClaims()))

		assert.True(t, result.Valid)
	})

	t.Run("Success_NoKidMultiKeyTrial", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a), jwk("k2", b))

		result := f.validator.Validate(ctx, sign(t, "", b, validClaims()))

		assert.True(t, result.Valid)
	})

	t.Run("Error_NoKidNoKeyVerifies", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))

		result := f.validator.Validate(ctx, sign(t, "", b, validClaims()))

		assert.False(t, result.Valid)
		assert.Equal(t, authDomain.ErrorKindInvalidSignature, result.ErrorKind)
	})

	t.Run("Error_SignatureFromAnotherKey", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))

		result := f.validator.Validate(ctx, sign(t, "k1", b, validClaims()))

		assert.Equal(t, authDomain.Rejected(authDomain.ErrorKindInvalidSignature), result)
	})

	t.Run("Success_KeyRotationAfterRefresh", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k2", b))
		token := sign(t, "k1", a, validClaims())

		first := f.validator.Validate(ctx, token)
		require.False(t, first.Valid)
		assert.Equal(t, authDomain.ErrorKindKeyResolutionFailed, first.ErrorKind)

		f.server.SetKeys(jwk("k1", a), jwk("k2", b))
		require.NoError(t, f.resolver.Refresh(ctx))

		second := f.validator.Validate(ctx, token)
		assert.True(t, second.Valid)
	})

	t.Run("Success_UnknownKidPicksUpRotatedKeyWithoutExplicitRefresh", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k2", b))
		require.NoError(t, f.resolver.Refresh(ctx))
		f.server.SetKeys(jwk("k1", a))

		result := f.validator.Validate(ctx, sign(t, "k1", a, validClaims()))

		assert.True(t, result.Valid)
	})

	t.Run("Error_KeySetUnreachable", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))
		f.server.Close()

		withKid := f.validator.Validate(ctx, sign(t, "k1", a, validClaims()))
		withoutKid := f.validator.Validate(ctx, sign(t, "", a, validClaims()))

		assert.Equal(t, authDomain.ErrorKindKeyResolutionFailed, withKid.ErrorKind)
		assert.Equal(t, authDomain.ErrorKindKeyResolutionFailed, withoutKid.ErrorKind)
	})

	t.Run("Error_MalformedToken", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))

		for _, token := range []string{"", "abc", "a.b", "!!!.###.$$$"} {
			result := f.validator.Validate(ctx, token)
			assert.Equal(t, authDomain.ErrorKindMalformedToken, result.ErrorKind, token)
		}
	})

	t.Run("Error_MissingAlgorithm", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"kid":"k1","typ":"JWT"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"user-42"}`))

		result := f.validator.Validate(ctx, header+"."+payload+".c2ln")

		assert.Equal(t, authDomain.ErrorKindMissingAlgorithm, result.ErrorKind)
	})

	t.Run("Error_NoneAlgorithm", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))
		token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
		token.Header["kid"] = "k1"
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		result := f.validator.Validate(ctx, signed)

		assert.Equal(t, authDomain.ErrorKindInvalidSignature, result.ErrorKind)
	})

	t.Run("Error_HS256WithPublicModulusAsSecret", func(t *testing.T) {
		f := newFixture(t, strictPolicy(), jwk("k1", a))
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
		token.Header["kid"] = "k1"
		signed, err := token.SignedString(a.N.Bytes())
		require.NoError(t, err)

		result := f.validator.Validate(ctx, signed)

		assert.Equal(t, authDomain.ErrorKindInvalidSignature, result.ErrorKind)
	})

	t.Run("Error_KeyBoundToOtherAlgorithm", func(t *testing.T) {
		bound := jwk("k1", a)
		bound["alg"] = "RS512"
		f := newFixture(t, strictPolicy(), bound)

		result := f.validator.Validate(ctx, sign(t, "k1", a, validClaims()))

		assert.Equal(t, authDomain.ErrorKindInvalidSignature, result.ErrorKind)
	})
}

func TestTokenValidator_Claims(t *testing.T) {
	ctx := context.Background()
	a, _ := signingKeys(t)

	tests := []struct {
		name   string
		policy authDomain.ValidationPolicy
		mutate func(jwt.MapClaims)
		valid  bool
		kind   authDomain.ErrorKind
	}{
		{
			name:   "Error_MissingSubject",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { delete(c, "sub") },
			kind:   authDomain.ErrorKindMissingSubject,
		},
		{
			name:   "Error_EmptySubject",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["sub"] = "" },
			kind:   authDomain.ErrorKindMissingSubject,
		},
		{
			name:   "Success_AudienceArrayContainsExpected",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["aud"] = []string{"other", testAudience} },
			valid:  true,
		},
		{
			name:   "Error_AudienceArrayOmitsExpected",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["aud"] = []string{"other", "another"} },
			kind:   authDomain.ErrorKindAudienceMismatch,
		},
		{
			name:   "Error_AudienceStringMismatch",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["aud"] = "other" },
			kind:   authDomain.ErrorKindAudienceMismatch,
		},
		{
			name:   "Error_ExpiredOneSecondAgo",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["exp"] = testNow.Add(-time.Second).Unix() },
			kind:   authDomain.ErrorKindTokenExpired,
		},
		{
			name:   "Success_ExpiresInOneSecond",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["exp"] = testNow.Add(time.Second).Unix() },
			valid:  true,
		},
		{
			name: "Success_ExpiredWithinSkew",
			policy: func() authDomain.ValidationPolicy {
				p := strictPolicy()
				p.ClockSkew = 30 * time.Second
				return p
			}(),
			mutate: func(c jwt.MapClaims) { c["exp"] = testNow.Add(-10 * time.Second).Unix() },
			valid:  true,
		},
		{
			name: "Error_ExpiredBeyondSkew",
			policy: func() authDomain.ValidationPolicy {
				p := strictPolicy()
				p.ClockSkew = 30 * time.Second
				return p
			}(),
			mutate: func(c jwt.MapClaims) { c["exp"] = testNow.Add(-31 * time.Second).Unix() },
			kind:   authDomain.ErrorKindTokenExpired,
		},
		{
			name:   "Error_MissingExpiry",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { delete(c, "exp") },
			kind:   authDomain.ErrorKindTokenExpired,
		},
		{
			name:   "Error_NotYetValid",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["nbf"] = testNow.Add(time.Minute).Unix() },
			kind:   authDomain.ErrorKindTokenNotYetValid,
		},
		{
			name: "Success_NotBeforeWithinSkew",
			policy: func() authDomain.ValidationPolicy {
				p := strictPolicy()
				p.ClockSkew = time.Minute
				return p
			}(),
			mutate: func(c jwt.MapClaims) { c["nbf"] = testNow.Add(30 * time.Second).Unix() },
			valid:  true,
		},
		{
			name:   "Success_AlternateIssuerForm",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["iss"] = "https://sts.example.com/tenant/" },
			valid:  true,
		},
		{
			name:   "Error_IssuerMismatch",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com/" },
			kind:   authDomain.ErrorKindIssuerMismatch,
		},
		{
			name:   "Error_ScopeLacksRequiredValue",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["scope"] = "openid profile" },
			kind:   authDomain.ErrorKindMissingRequiredScope,
		},
		{
			name:   "Success_RequiredScopeListedFirst",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["scope"] = testScope + " openid" },
			valid:  true,
		},
		{
			name:   "Error_ScopeSubstringDoesNotCount",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { c["scope"] = testScope + ".all" },
			kind:   authDomain.ErrorKindMissingRequiredScope,
		},
		{
			name:   "Success_NoScopeClaimSkipsCheck",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) { delete(c, "scope") },
			valid:  true,
		},
		{
			name:   "Success_ScpArrayClaim",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) {
				delete(c, "scope")
				c["scp"] = []string{testScope}
			},
			valid: true,
		},
		{
			name:   "Error_SubjectCheckedBeforeAudience",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) {
				delete(c, "sub")
				c["aud"] = "other"
			},
			kind: authDomain.ErrorKindMissingSubject,
		},
		{
			name:   "Error_AudienceCheckedBeforeExpiry",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) {
				c["aud"] = "other"
				c["exp"] = testNow.Add(-time.Hour).Unix()
			},
			kind: authDomain.ErrorKindAudienceMismatch,
		},
		{
			name:   "Error_ExpiryCheckedBeforeIssuer",
			policy: strictPolicy(),
			mutate: func(c jwt.MapClaims) {
				c["iss"] = "https://evil.example.com/"
				c["exp"] = testNow.Add(-time.Hour).Unix()
			},
			kind: authDomain.ErrorKindTokenExpired,
		},
		{
			name:   "Success_EmptyPolicySkipsOptionalChecks",
			policy: authDomain.ValidationPolicy{},
			mutate: func(c jwt.MapClaims) {
				c["aud"] = "anything"
				c["iss"] = "anyone"
				c["scope"] = "nothing"
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.policy, jwk("k1", a))
			claims := validClaims()
			tt.mutate(claims)

			result := f.validator.Validate(ctx, sign(t, "k1", a, claims))

			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.kind, result.ErrorKind)
			if tt.valid {
				assert.NotEmpty(t, result.UserID)
			} else {
				assert.Nil(t, result.Claims)
			}
		})
	}
}

func TestTokenValidator_RelaxedPolicy(t *testing.T) {
	ctx := context.Background()
	a, _ := signingKeys(t)
	policy := strictPolicy()
	policy.Relaxed = true

	t.Run("Success_MismatchesBecomeWarnings", func(t *testing.T) {
		f := newFixture(t, policy, jwk("k1", a))
		claims := validClaims()
		claims["aud"] = "other"
		claims["iss"] = "https://localhost/"
		claims["scope"] = "openid"

		result := f.validator.Validate(ctx, sign(t, "k1", a, claims))

		require.True(t, result.Valid)
		assert.Len(t, result.Warnings, 3)
	})

	t.Run("Error_ExpiryStillEnforced", func(t *testing.T) {
		f := newFixture(t, policy, jwk("k1", a))
		claims := validClaims()
		claims["exp"] = testNow.Add(-time.Hour).Unix()

		result := f.validator.Validate(ctx, sign(t, "k1", a, claims))

		assert.Equal(t, authDomain.ErrorKindTokenExpired, result.ErrorKind)
	})

	t.Run("Error_SignatureStillEnforced", func(t *testing.T) {
		_, b := signingKeys(t)
		f := newFixture(t, policy, jwk("k1", a))

		result := f.validator.Validate(ctx, sign(t, "k1", b, validClaims()))

		assert.Equal(t, authDomain.ErrorKindInvalidSignature, result.ErrorKind)
	})
}
