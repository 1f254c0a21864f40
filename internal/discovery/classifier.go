package discovery

import "strings"

// IsScript reports whether a file name looks like a SQL script (*.sql, any case)
func IsScript(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".sql")
}
