// Package domain defines the bearer-token validation model: decoded tokens, claims,
// signing keys, the validation policy and the verdict returned to callers.
package domain

// Supported RS-family signature algorithms. Anything else, including "none" and the HMAC
// family, is refused before a key is resolved.
const (
	AlgorithmRS256 = "RS256"
	AlgorithmRS384 = "RS384"
	AlgorithmRS512 = "RS512"
)

// SupportedAlgorithms lists the accepted "alg" header values.
var SupportedAlgorithms = []string{AlgorithmRS256, AlgorithmRS384, AlgorithmRS512}

// IsSupportedAlgorithm reports whether alg is one of SupportedAlgorithms.
func IsSupportedAlgorithm(alg string) bool {
	for _, supported := range SupportedAlgorithms {
		if alg == supported {
			return true
		}
	}
	return false
}

// ErrorKind classifies why a token was rejected.
type ErrorKind string

const (
	ErrorKindNone                 ErrorKind = ""
	ErrorKindMalformedToken       ErrorKind = "malformed_token"
	ErrorKindMissingAlgorithm     ErrorKind = "missing_algorithm"
	ErrorKindKeyResolutionFailed  ErrorKind = "key_resolution_failed"
	ErrorKindInvalidSignature     ErrorKind = "invalid_signature"
	ErrorKindTokenExpired         ErrorKind = "token_expired"
	ErrorKindTokenNotYetValid     ErrorKind = "token_not_yet_valid"
	ErrorKindAudienceMismatch     ErrorKind = "audience_mismatch"
	ErrorKindIssuerMismatch       ErrorKind = "issuer_mismatch"
	ErrorKindMissingRequiredScope ErrorKind = "missing_required_scope"
	ErrorKindMissingSubject       ErrorKind = "missing_subject"
)
