package domain

// ValidationResult is the verdict of one validation call. Accepted results carry claims and
// no error kind, rejected results carry an error kind and nothing else.
type ValidationResult struct {
	Valid     bool
	Claims    *Claims
	UserID    string
	Scopes    []string
	ErrorKind ErrorKind
	Warnings  []string
}

// Accepted builds the valid shape from fully checked claims.
func Accepted(claims Claims, warnings []string) ValidationResult {
	return ValidationResult{
		Valid:    true,
		Claims:   &claims,
		UserID:   claims.Subject,
		Scopes:   claims.Scopes,
		Warnings: warnings,
	}
}

// Rejected builds the invalid shape.
func Rejected(kind ErrorKind) ValidationResult {
	return ValidationResult{ErrorKind: kind}
}
