// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/secretgate/internal/errors"
)

var (
	// secretNameRegex allows dotted, dashed and underscored identifiers up to 128 characters
	secretNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretName validates the shape of a catalog secret name
var SecretName = validation.NewStringRuleWithError(
	func(s string) bool {
		return secretNameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_secret_name",
		"must start with a letter or digit and contain only letters, digits, '.', '_' or '-'",
	),
)

// AbsoluteURL validates that a string is an absolute http or https URL
var AbsoluteURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
	validation.NewError("validation_absolute_url", "must be an absolute http or https URL"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
