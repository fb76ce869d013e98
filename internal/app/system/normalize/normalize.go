// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Code uppercases and trims a discount code. Codes are matched
// case-insensitively; the folded form is what gets stored in code_ci.
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
