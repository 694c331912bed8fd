package service

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

func TestTokenParser_Decode(t *testing.T) {
	parser := NewTokenParser()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	t.Run("Success_HeaderAndClaims", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodRS256, "k1", testKey(t, 0), jwt.MapClaims{
			"sub":   "user-1",
			"aud":   []string{"api", "secretgate"},
			"iss":   "https://issuer.example.com/",
			"exp":   exp.Unix(),
			"nbf":   exp.Add(-2 * time.Hour).Unix(),
			"iat":   exp.Add(-2 * time.Hour).Unix(),
			"scope": "openid secrets:read",
			"email": "user@example.com",
			"name":  "User One",
		})

		decoded, err := parser.Decode(token)

		require.NoError(t, err)
		assert.Equal(t, "RS256", decoded.Header.Algorithm)
		assert.Equal(t, "k1", decoded.Header.KeyID)
		assert.Equal(t, "JWT", decoded.Header.Type)
		assert.Equal(t, "user-1", decoded.Claims.Subject)
		assert.Equal(t, []string{"api", "secretgate"}, decoded.Claims.Audience)
		assert.Equal(t, "https://issuer.example.com/", decoded.Claims.Issuer)
		require.NotNil(t, decoded.Claims.ExpiresAt)
		assert.True(t, exp.Equal(*decoded.Claims.ExpiresAt))
		require.NotNil(t, decoded.Claims.NotBefore)
		require.NotNil(t, decoded.Claims.IssuedAt)
		assert.True(t, decoded.Claims.HasScope)
		assert.Equal(t, []string{"openid", "secrets:read"}, decoded.Claims.Scopes)
		assert.Equal(t, "user@example.com", decoded.Claims.Email)
		assert.Equal(t, "User One", decoded.Claims.Name)
		assert.Equal(t, token, decoded.Raw)
	})

	t.Run("Success_SingleAudienceAndScpArray", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodRS256, "", testKey(t, 0), jwt.MapClaims{
			"sub": "user-1",
			"aud": "secretgate",
			"scp": []string{"secrets:read", "secrets:write"},
		})

		decoded, err := parser.Decode(token)

		require.NoError(t, err)
		assert.Empty(t, decoded.Header.KeyID)
		assert.Equal(t, []string{"secretgate"}, decoded.Claims.Audience)
		assert.Equal(t, []string{"secrets:read", "secrets:write"}, decoded.Claims.Scopes)
		assert.Nil(t, decoded.Claims.ExpiresAt)
	})

	t.Run("Success_NoScopeClaim", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodRS256, "k1", testKey(t, 0), jwt.MapClaims{"sub": "user-1"})

		decoded, err := parser.Decode(token)

		require.NoError(t, err)
		assert.False(t, decoded.Claims.HasScope)
		assert.Empty(t, decoded.Claims.Scopes)
	})

	t.Run("Success_MissingAlgorithmStillDecodes", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT","kid":"k1"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"user-1"}`))

		decoded, err := parser.Decode(header + "." + payload + ".c2ln")

		require.NoError(t, err)
		assert.Empty(t, decoded.Header.Algorithm)
	})

	tests := []struct {
		name  string
		token string
	}{
		{name: "Error_Empty", token: ""},
		{name: "Error_TwoSegments", token: "abc.def"},
		{name: "Error_FourSegments", token: "a.b.c.d"},
		{name: "Error_HeaderNotBase64", token: "***.e30.sig"},
		{name: "Error_HeaderNotJSON", token: base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".e30.sig"},
		{name: "Error_PayloadNotJSON", token: "eyJhbGciOiJSUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("[1,2")) + ".sig"},
		{name: "Error_ExpNotNumeric", token: "eyJhbGciOiJSUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":"tomorrow"}`)) + ".sig"},
		{name: "Error_ScopeWrongType", token: "eyJhbGciOiJSUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(`{"scope":42}`)) + ".sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Decode(tt.token)

			assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
		})
	}
}

func TestTokenParser_Verify(t *testing.T) {
	parser := NewTokenParser()
	claims := jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}
	signer := authDomain.SigningKey{ID: "k1", Key: &testKey(t, 0).PublicKey}
	other := authDomain.SigningKey{ID: "k2", Key: &testKey(t, 1).PublicKey}

	t.Run("Success_IgnoresClaimTimes", func(t *testing.T) {
		for _, method := range []jwt.SigningMethod{jwt.SigningMethodRS256, jwt.SigningMethodRS384, jwt.SigningMethodRS512} {
			token := signToken(t, method, "k1", testKey(t, 0), claims)

			assert.NoError(t, parser.Verify(token, signer), method.Alg())
		}
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodRS256, "k1", testKey(t, 0), claims)

		err := parser.Verify(token, other)

		assert.ErrorIs(t, err, authDomain.ErrInvalidSignature)
	})

	t.Run("Error_TamperedPayload", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodRS256, "k1", testKey(t, 0), claims)
		parts := strings.Split(token, ".")
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin"}`))

		err := parser.Verify(strings.Join(parts, "."), signer)

		assert.ErrorIs(t, err, authDomain.ErrInvalidSignature)
	})

	t.Run("Error_HMACAlgorithmRefused", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, "k1", []byte("shared-secret"), claims)

		err := parser.Verify(token, signer)

		assert.ErrorIs(t, err, authDomain.ErrInvalidSignature)
	})

	t.Run("Error_NoneAlgorithmRefused", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodNone, "k1", jwt.UnsafeAllowNoneSignatureType, claims)

		err := parser.Verify(token, signer)

		assert.Error(t, err)
	})

	t.Run("Error_NilKey", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodRS256, "k1", testKey(t, 0), claims)

		err := parser.Verify(token, authDomain.SigningKey{ID: "k1"})

		assert.ErrorIs(t, err, authDomain.ErrInvalidSignature)
	})
}
