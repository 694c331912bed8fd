package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	secretsService "github.com/allisson/secretgate/internal/secrets/service"
)

// Sealer encrypts plaintext with the configured KMS key.
type Sealer interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
}

// RunSealValue encrypts a value so it can be stored as an enc: environment variable.
// When value is empty the plaintext is read from the reader, minus a trailing newline.
func RunSealValue(ctx context.Context, sealer Sealer, streams IOTuple, value string) error {
	if sealer == nil {
		return fmt.Errorf("KMS_KEY_URI must be configured to seal values")
	}

	plaintext := value
	if plaintext == "" {
		data, err := readAllLimited(streams.Reader)
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		plaintext = strings.TrimRight(string(data), "\r\n")
	}
	if plaintext == "" {
		return fmt.Errorf("value is required")
	}

	ciphertext, err := sealer.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return fmt.Errorf("failed to seal value: %w", err)
	}

	_, _ = fmt.Fprintln(streams.Writer, secretsService.SealedValuePrefix+base64.StdEncoding.EncodeToString(ciphertext))
	return nil
}

// maxSealInput bounds how much is read from stdin.
const maxSealInput = 64 << 10

func readAllLimited(reader io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(reader, maxSealInput))
}
