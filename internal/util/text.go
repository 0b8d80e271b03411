package util

import "strings"

// SanitizePostgresText strips NUL bytes and invalid UTF-8 sequences,
// neither of which Postgres text columns accept.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}
	return strings.ReplaceAll(strings.ToValidUTF8(value, ""), "\x00", "")
}
