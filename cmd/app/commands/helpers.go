// Package commands implements the secretgate subcommands. Each Run function takes its
// collaborators and an output writer so it can be tested without a container.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/secretgate/internal/app"
)

// IOTuple is the input and output a command talks to.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO is stdin and stdout.
func DefaultIO() IOTuple {
	return IOTuple{Reader: os.Stdin, Writer: os.Stdout}
}

func closeContainer(container *app.Container, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := container.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	if sourceErr, databaseErr := m.Close(); sourceErr != nil || databaseErr != nil {
		logger.Error("failed to close migrate",
			slog.Any("source_error", sourceErr),
			slog.Any("database_error", databaseErr),
		)
	}
}

// writeJSON writes v as two-space indented JSON and a trailing newline.
func writeJSON(writer io.Writer, v any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
