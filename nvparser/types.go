package nvparser

import (
	"regexp"
	"strings"
)

var typeSynonyms = map[string]string{
	"INT":       "int",
	"INTEGER":   "int",
	"SMALLINT":  "int",
	"BIGINT":    "int",
	"TINYINT":   "int",
	"VARCHAR":   "varchar",
	"CHAR":      "char",
	"TEXT":      "text",
	"STRING":    "varchar",
	"BOOLEAN":   "bool",
	"BOOL":      "bool",
	"DATETIME":  "datetime",
	"TIMESTAMP": "timestamp",
	"DATE":      "date",
	"TIME":      "time",
	"DECIMAL":   "decimal",
	"NUMERIC":   "decimal",
	"FLOAT":     "float",
	"DOUBLE":    "float",
	"REAL":      "float",
	"BLOB":      "blob",
	"BINARY":    "blob",
	"JSON":      "json",
	"UUID":      "uuid",
}

var typeRegex = regexp.MustCompile(`^(\w+)(\([^)]+\))?$`)

// NormalizeType maps the base of a column type through the synonym table
// case-insensitively and keeps any parenthesized size suffix verbatim.
// Unknown base types are lowercased.
func NormalizeType(t string) string {
	m := typeRegex.FindStringSubmatch(strings.TrimSpace(t))
	if m == nil {
		return strings.ToLower(t)
	}
	base := strings.ToUpper(m[1])
	mapped, ok := typeSynonyms[base]
	if !ok {
		mapped = strings.ToLower(base)
	}
	return mapped + m[2]
}
