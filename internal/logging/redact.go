// Package logging provides helpers that keep credentials out of structured logs.
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	masker "github.com/goliatone/go-masker"
)

const maskRule = "preserveEnds(2,2)"

var sensitiveFields = []string{
	"token", "access_token", "authorization",
	"secret", "value", "vault_token", "signing_key",
}

func init() {
	for _, field := range sensitiveFields {
		masker.Default.RegisterMaskField(field, maskRule)
	}
}

// Mask hides all but the first and last two characters of value.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String(maskRule, value); err == nil && masked != value {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}

// Fingerprint returns a short stable digest for correlating a token across log lines.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

// MaskedAttr builds a slog attribute with a masked value.
func MaskedAttr(key, value string) slog.Attr {
	return slog.String(key, Mask(value))
}

// TokenAttr builds a slog attribute carrying the token fingerprint under "token_fp".
func TokenAttr(token string) slog.Attr {
	return slog.String("token_fp", Fingerprint(token))
}
