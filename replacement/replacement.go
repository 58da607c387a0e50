// Package replacement implements the recovery hook for "no such table"
// errors that correspond to a recognizable external file by extension.
package replacement

import (
	"fmt"
	"path/filepath"
	"strings"
)

// extensionModules maps a case-insensitive file extension to the
// virtual-table module (and arguments) that can stand in for it. Only
// .csv and .tsv are recognized, matching the original implementation's
// replacement_scans.rs exactly — no extra extensions are added.
var extensionModules = map[string]string{
	".csv": "csv",
	".tsv": "tsv(flexible=true)",
}

// Scan examines tableName (the NAME from a "no such table: NAME" error)
// and, if its extension is recognized, returns the CREATE VIRTUAL TABLE
// statement that would let the original query succeed on retry.
func Scan(tableName string) (createSQL string, ok bool) {
	ext := strings.ToLower(filepath.Ext(tableName))
	module, ok := extensionModules[ext]
	if !ok {
		return "", false
	}
	return fmt.Sprintf(`CREATE VIRTUAL TABLE temp.%s USING %s`, quoteIdentifier(tableName), module), true
}

// quoteIdentifier double-quotes name, doubling any embedded quote, the
// way SQLite identifiers are escaped.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
