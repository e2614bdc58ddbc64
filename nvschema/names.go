package nvschema

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonIdentRegex   = regexp.MustCompile(`[^a-z0-9_]`)
	underscoreRegex = regexp.MustCompile(`_+`)
)

// SanitizeColumnName lowercases name and reduces it to [a-z0-9_]. An empty
// result becomes fk_id.
func SanitizeColumnName(name string) string {
	s := strings.ToLower(name)
	s = nonIdentRegex.ReplaceAllString(s, "_")
	s = underscoreRegex.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "fk_id"
	}
	return s
}

// SuggestFKName is the default name of a column referencing table.column.
func SuggestFKName(table, column string) string {
	return SanitizeColumnName(table + "_" + column)
}

// UniqueColumnName appends _2, _3, ... to base until no column of t has that
// name case-insensitively.
func UniqueColumnName(t *Table, base string) string {
	candidate := base
	for i := 2; t.HasColumnFold(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	return candidate
}

// UniqueTableName appends _2, _3, ... to base until no table has that name.
func (s *Schema) UniqueTableName(base string) string {
	candidate := base
	for i := 2; s.Table(candidate) != nil; i++ {
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	return candidate
}
