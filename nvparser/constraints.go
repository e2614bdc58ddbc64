package nvparser

import (
	"strings"
)

type Ref struct {
	Table  string
	Column string
}

type Constraints struct {
	PK        bool
	Increment bool
	NotNull   bool
	Unique    bool
	Default   string
	Ref       *Ref
	Note      string
}

// ParseConstraints reads the bracketed settings that follow a column type,
// e.g. "[pk, increment]" or "[ref: > users.id, note: 'owner']".
// Unknown settings are ignored.
func ParseConstraints(s string) Constraints {
	var c Constraints

	s = strings.TrimSpace(s)
	if start := strings.IndexByte(s, '['); start >= 0 {
		s = s[start+1:]
		if end := strings.LastIndexByte(s, ']'); end >= 0 {
			s = s[:end]
		}
	}

	for _, part := range splitOutsideQuotes(s, ',') {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)

		switch {
		case lower == "pk" || lower == "primary key":
			c.PK = true
		case lower == "increment" || lower == "auto_increment" || lower == "autoincrement":
			c.Increment = true
			c.PK = true
		case lower == "not null":
			c.NotNull = true
		case lower == "unique":
			c.Unique = true
		case strings.HasPrefix(lower, "default:"):
			c.Default = strings.TrimSpace(part[len("default:"):])
		case strings.HasPrefix(lower, "ref:"), strings.HasPrefix(lower, "references:"):
			if ref := parseRef(part[strings.IndexByte(part, ':')+1:]); ref != nil {
				c.Ref = ref
				c.NotNull = true
			}
		case strings.HasPrefix(lower, "note:"):
			note := strings.TrimSpace(part[len("note:"):])
			c.Note = strings.NewReplacer(`'`, "", `"`, "").Replace(note)
		}
	}
	return c
}

// parseRef reads "> table.column". The column defaults to id.
func parseRef(s string) *Ref {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, ">"))
	parts := strings.SplitN(s, ".", 2)
	if strings.TrimSpace(parts[0]) == "" {
		return nil
	}
	ref := &Ref{
		Table:  strings.TrimSpace(parts[0]),
		Column: "id",
	}
	if len(parts) == 2 {
		if col := strings.TrimSpace(parts[1]); col != "" {
			ref.Column = col
		}
	}
	return ref
}

// splitOutsideQuotes splits s on sep, ignoring separators inside single or
// double quotes.
func splitOutsideQuotes(s string, sep rune) []string {
	var parts []string
	var quote rune
	start := 0
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
