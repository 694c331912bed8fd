package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
	secretsUseCase "github.com/allisson/secretgate/internal/secrets/usecase"
)

// RunResolveSecret resolves one allow-listed name through the full provider cascade and
// prints the value with its source. A failed resolution is returned as an error carrying
// the error kind.
func RunResolveSecret(
	ctx context.Context,
	resolver secretsUseCase.SecretResolver,
	logger *slog.Logger,
	writer io.Writer,
	name, caller string,
	format string,
) error {
	requestID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate request id: %w", err)
	}

	output := resolver.Resolve(ctx, secretsDomain.ResolveInput{
		Name:      name,
		Caller:    caller,
		RequestID: requestID,
	})

	logger.Info("secret resolution finished",
		slog.String("name", name),
		slog.String("outcome", output.Outcome()),
		slog.String("source", string(output.Source)),
	)

	if !output.Success {
		return fmt.Errorf("failed to resolve %q: %s", name, output.ErrorKind)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"name":   name,
			"value":  output.Value,
			"source": output.Source,
		})
	}

	_, _ = fmt.Fprintf(writer, "%s (source: %s)\n", output.Value, output.Source)
	return nil
}
