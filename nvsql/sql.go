// Package nvsql emits best-effort CREATE TABLE statements for a schema.
package nvsql

import (
	"strings"

	"oss.terrastruct.com/navani/nvschema"
)

var sqlTypes = map[string]string{
	"int":       "INT",
	"varchar":   "VARCHAR",
	"text":      "TEXT",
	"bool":      "BOOLEAN",
	"datetime":  "DATETIME",
	"date":      "DATE",
	"timestamp": "TIMESTAMP",
	"decimal":   "DECIMAL",
	"float":     "FLOAT",
	"blob":      "BLOB",
	"json":      "JSON",
	"uuid":      "VARCHAR(36)",
}

// Type maps a normalized column type to SQL. Sized types are upper-cased
// as-is.
func Type(t string) string {
	if s, ok := sqlTypes[strings.ToLower(t)]; ok {
		return s
	}
	return strings.ToUpper(t)
}

// Generate returns one CREATE TABLE statement per table. Foreign keys are
// taken from the relationship list and emitted inline after their column;
// primary key columns are collected into a trailing PRIMARY KEY clause.
func Generate(s *nvschema.Schema) string {
	var sb strings.Builder
	for _, t := range s.Tables {
		sb.WriteString("CREATE TABLE ")
		sb.WriteString(t.Name)
		sb.WriteString(" (\n")

		var defs []string
		var pks []string
		for _, c := range t.Columns {
			defs = append(defs, columnDef(s, t, c))
			if c.PK {
				pks = append(pks, c.Name)
			}
		}
		if len(pks) > 0 {
			defs = append(defs, "    PRIMARY KEY ("+strings.Join(pks, ", ")+")")
		}

		sb.WriteString(strings.Join(defs, ",\n"))
		sb.WriteString("\n);\n\n")
	}
	return sb.String()
}

func columnDef(s *nvschema.Schema, t *nvschema.Table, c *nvschema.Column) string {
	var sb strings.Builder
	sb.WriteString("    ")
	sb.WriteString(c.Name)
	sb.WriteByte(' ')
	sb.WriteString(Type(c.Type))
	if c.Increment {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if c.Unique {
		sb.WriteString(" UNIQUE")
	}
	if c.Default != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default)
	}
	for _, r := range s.Relationships {
		if r.FromTable == t.Name && r.FromColumn == c.Name {
			sb.WriteString(",\n    FOREIGN KEY (")
			sb.WriteString(c.Name)
			sb.WriteString(") REFERENCES ")
			sb.WriteString(r.ToTable)
			sb.WriteByte('(')
			sb.WriteString(r.ToColumn)
			sb.WriteByte(')')
			break
		}
	}
	return sb.String()
}
