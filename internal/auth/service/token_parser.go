package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

// tokenClaims maps the JSON payload. Scope claims stay raw because issuers send them either as
// a space-delimited string or as an array.
type tokenClaims struct {
	jwt.RegisteredClaims
	Scope json.RawMessage `json:"scope,omitempty"`
	Scp   json.RawMessage `json:"scp,omitempty"`
	Email string          `json:"email,omitempty"`
	Name  string          `json:"name,omitempty"`
}

type tokenParser struct {
	parser *jwt.Parser
}

// NewTokenParser creates a TokenParser restricted to the RS-family algorithms. Claim checks
// are left to the validator so that each failure is reported with its own kind.
func NewTokenParser() TokenParser {
	return &tokenParser{
		parser: jwt.NewParser(
			jwt.WithValidMethods(authDomain.SupportedAlgorithms),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Decode implements TokenParser.
func (p *tokenParser) Decode(token string) (*authDomain.DecodedToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, authDomain.ErrMalformedToken
	}

	headerBytes, err := p.parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", authDomain.ErrMalformedToken, err)
	}
	var header authDomain.Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", authDomain.ErrMalformedToken, err)
	}

	payloadBytes, err := p.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", authDomain.ErrMalformedToken, err)
	}
	var raw tokenClaims
	if err := json.Unmarshal(payloadBytes, &raw); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", authDomain.ErrMalformedToken, err)
	}

	claims, err := raw.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", authDomain.ErrMalformedToken, err)
	}

	return &authDomain.DecodedToken{
		Raw:    token,
		Header: header,
		Claims: claims,
	}, nil
}

// Verify implements TokenParser.
func (p *tokenParser) Verify(token string, key authDomain.SigningKey) error {
	if key.Key == nil {
		return authDomain.ErrInvalidSignature
	}

	_, err := p.parser.ParseWithClaims(token, &tokenClaims{}, func(*jwt.Token) (any, error) {
		return key.Key, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", authDomain.ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", authDomain.ErrInvalidSignature, err)
	}
}

func (c *tokenClaims) toDomain() (authDomain.Claims, error) {
	claims := authDomain.Claims{
		Subject:  c.Subject,
		Audience: []string(c.Audience),
		Issuer:   c.Issuer,
		Email:    c.Email,
		Name:     c.Name,
	}
	if c.IssuedAt != nil {
		t := c.IssuedAt.Time
		claims.IssuedAt = &t
	}
	if c.ExpiresAt != nil {
		t := c.ExpiresAt.Time
		claims.ExpiresAt = &t
	}
	if c.NotBefore != nil {
		t := c.NotBefore.Time
		claims.NotBefore = &t
	}

	for _, raw := range []json.RawMessage{c.Scope, c.Scp} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		scopes, err := parseScopeClaim(raw)
		if err != nil {
			return authDomain.Claims{}, err
		}
		claims.HasScope = true
		claims.Scopes = append(claims.Scopes, scopes...)
	}
	return claims, nil
}

// parseScopeClaim accepts "a b c" or ["a", "b", "c"].
func parseScopeClaim(raw json.RawMessage) ([]string, error) {
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return strings.Fields(joined), nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("scope claim must be a string or an array of strings")
	}
	scopes := make([]string, 0, len(list))
	for _, item := range list {
		scopes = append(scopes, strings.Fields(item)...)
	}
	return scopes, nil
}
