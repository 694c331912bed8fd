package dto

import (
	"time"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

// ClaimsResponse is the public view of verified claims.
type ClaimsResponse struct {
	Subject   string     `json:"sub"`
	Audience  []string   `json:"aud,omitempty"`
	Issuer    string     `json:"iss,omitempty"`
	IssuedAt  *time.Time `json:"iat,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
	NotBefore *time.Time `json:"nbf,omitempty"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name,omitempty"`
}

// ValidateTokenResponse is the verdict returned by the validation endpoint.
type ValidateTokenResponse struct {
	Valid    bool            `json:"valid"`
	UserID   string          `json:"user_id,omitempty"`
	Scopes   []string        `json:"scopes,omitempty"`
	Claims   *ClaimsResponse `json:"claims,omitempty"`
	Error    string          `json:"error,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// MapValidationResultToResponse converts a verdict to its API form.
func MapValidationResultToResponse(result authDomain.ValidationResult) ValidateTokenResponse {
	response := ValidateTokenResponse{
		Valid:    result.Valid,
		UserID:   result.UserID,
		Scopes:   result.Scopes,
		Error:    string(result.ErrorKind),
		Warnings: result.Warnings,
	}

	if result.Claims != nil {
		response.Claims = &ClaimsResponse{
			Subject:   result.Claims.Subject,
			Audience:  result.Claims.Audience,
			Issuer:    result.Claims.Issuer,
			IssuedAt:  result.Claims.IssuedAt,
			ExpiresAt: result.Claims.ExpiresAt,
			NotBefore: result.Claims.NotBefore,
			Email:     result.Claims.Email,
			Name:      result.Claims.Name,
		}
	}

	return response
}
