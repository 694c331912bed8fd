package service

import (
	"strings"
)

// splitVaultPath splits "location#field" into its parts. field is empty when absent.
func splitVaultPath(path string) (string, string) {
	location, field, _ := strings.Cut(path, "#")
	return strings.Trim(location, "/"), field
}
