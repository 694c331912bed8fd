package validation

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// Base64Key validates a standard base64 string that decodes to at least minBytes bytes.
// Empty strings pass; combine with Required when the key is mandatory.
func Base64Key(minBytes int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_base64_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_base64", "must be valid base64-encoded data")
		}
		if len(decoded) < minBytes {
			return validation.NewError("validation_base64_key_length", "decoded key is too short").
				SetParams(map[string]interface{}{"min": minBytes})
		}
		return nil
	})
}
