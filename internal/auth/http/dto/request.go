// Package dto provides data transfer objects for the token validation endpoint.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/secretgate/internal/validation"
)

// maxTokenLength bounds the accepted compact JWS size.
const maxTokenLength = 16384

// ValidateTokenRequest carries a token in the body when no Authorization header is sent.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the validate token request is well formed.
func (r *ValidateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, maxTokenLength),
		),
	)
}
