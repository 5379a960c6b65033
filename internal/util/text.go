package util

import "strings"

// SanitizeText strips invalid UTF-8 and NUL bytes so values can be stored
// in Postgres text columns.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
