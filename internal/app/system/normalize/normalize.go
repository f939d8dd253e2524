// internal/app/system/normalize/normalize.go
//
// Package normalize puts user-supplied fields into their canonical stored
// form before validation and persistence.
package normalize

import "strings"

// Name trims surrounding whitespace; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a member role ("father", "mother", "child").
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreationType lowercases and trims a family creation type.
func CreationType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JoinCode uppercases and trims a join code so user-typed codes match the
// stored form.
func JoinCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
