package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
	authUseCase "github.com/allisson/secretgate/internal/auth/usecase"
)

// RunValidateToken validates a bearer token against the configured key set and policy and
// prints the verdict. A rejected token is returned as an error.
func RunValidateToken(
	ctx context.Context,
	validator authUseCase.TokenValidator,
	writer io.Writer,
	token string,
	format string,
) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required")
	}

	result := validator.Validate(ctx, token)

	if format == "json" {
		if err := writeJSON(writer, validationOutput(result)); err != nil {
			return err
		}
	} else {
		outputValidateText(writer, result)
	}

	if !result.Valid {
		return fmt.Errorf("token rejected: %s", result.ErrorKind)
	}
	return nil
}

func validationOutput(result authDomain.ValidationResult) map[string]any {
	output := map[string]any{"valid": result.Valid}
	if !result.Valid {
		output["error"] = result.ErrorKind
		return output
	}
	output["subject"] = result.UserID
	output["scopes"] = result.Scopes
	if result.Claims != nil && result.Claims.ExpiresAt != nil {
		output["expires_at"] = result.Claims.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if len(result.Warnings) > 0 {
		output["warnings"] = result.Warnings
	}
	return output
}

func outputValidateText(writer io.Writer, result authDomain.ValidationResult) {
	if !result.Valid {
		_, _ = fmt.Fprintf(writer, "Token: INVALID (%s)\n", result.ErrorKind)
		return
	}

	_, _ = fmt.Fprintf(writer, "Token: VALID\n")
	_, _ = fmt.Fprintf(writer, "Subject:  %s\n", result.UserID)
	if len(result.Scopes) > 0 {
		_, _ = fmt.Fprintf(writer, "Scopes:   %s\n", strings.Join(result.Scopes, " "))
	}
	if result.Claims != nil && result.Claims.ExpiresAt != nil {
		_, _ = fmt.Fprintf(writer, "Expires:  %s\n", result.Claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintf(writer, "Warning:  %s\n", warning)
	}
}
