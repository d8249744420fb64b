package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GeneratePassID creates a short, human-readable pass history ID.
// Format: {catalog}-{8charHexUUID}
//
// Example:
//   - Input: catalogName="Base Recipes"
//   - Output: "base-recipes-a3f8e2b1"
//
// Passes run without a named catalog get the "adhoc" prefix.
func GeneratePassID(catalogName string) string {
	return slug(catalogName) + "-" + generateShortUUID()
}

// slug lowercases name and collapses every run of other characters to a hyphen
func slug(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if b.Len() > 0 && !hyphen {
			b.WriteByte('-')
			hyphen = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "adhoc"
	}
	return s
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
