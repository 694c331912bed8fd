package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "simple name",
			input:     "db-password",
			shouldErr: false,
		},
		{
			name:      "dotted and underscored",
			input:     "payments.api_key",
			shouldErr: false,
		},
		{
			name:      "leading dash",
			input:     "-db",
			shouldErr: true,
		},
		{
			name:      "slash not allowed",
			input:     "app/db",
			shouldErr: true,
		},
		{
			name:      "space not allowed",
			input:     "db password",
			shouldErr: true,
		},
		{
			name:      "too long",
			input:     strings.Repeat("a", 129),
			shouldErr: true,
		},
		{
			name:      "max length",
			input:     strings.Repeat("a", 128),
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SecretName.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "https url",
			input:     "https://idp.example.com/.well-known/jwks.json",
			shouldErr: false,
		},
		{
			name:      "http url with port",
			input:     "http://127.0.0.1:8200",
			shouldErr: false,
		},
		{
			name:      "relative path",
			input:     "/jwks.json",
			shouldErr: true,
		},
		{
			name:      "unsupported scheme",
			input:     "ftp://example.com/jwks.json",
			shouldErr: true,
		},
		{
			name:      "missing host",
			input:     "https://",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AbsoluteURL.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "no whitespace",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "leading whitespace",
			input:     " validstring",
			shouldErr: true,
		},
		{
			name:      "trailing whitespace",
			input:     "validstring ",
			shouldErr: true,
		},
		{
			name:      "both leading and trailing",
			input:     " validstring ",
			shouldErr: true,
		},
		{
			name:      "internal spaces allowed",
			input:     "valid string",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoWhitespace.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "valid string",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "only spaces",
			input:     "   ",
			shouldErr: true,
		},
		{
			name:      "only tabs",
			input:     "\t\t",
			shouldErr: true,
		},
		{
			name:      "only newlines",
			input:     "\n\n",
			shouldErr: true,
		},
		{
			name:      "mixed whitespace",
			input:     " \t\n ",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error returns nil",
			err:      nil,
			expected: false,
		},
		{
			name:     "wraps validation error",
			err:      assert.AnError,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapValidationError(tt.err)
			if tt.expected {
				assert.Error(t, result)
				assert.Contains(t, result.Error(), "invalid input")
			} else {
				assert.NoError(t, result)
			}
		})
	}
}
