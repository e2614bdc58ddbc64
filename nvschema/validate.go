package nvschema

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Errors []error
}

func (ve *ValidationError) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func (ve *ValidationError) errorf(f string, v ...interface{}) {
	ve.Errors = append(ve.Errors, fmt.Errorf(f, v...))
}

// Validate checks the model invariants: table names are unique and
// non-empty, column names are unique per table case-insensitively, and every
// relationship agrees with the FK fields of its source column and vice versa.
//
// Relationships whose target table is missing are not errors. The router
// skips them.
func (s *Schema) Validate() error {
	ve := &ValidationError{}

	seen := make(map[string]struct{})
	for _, t := range s.Tables {
		if t.Name == "" {
			ve.errorf("table with empty name")
		}
		if _, ok := seen[t.Name]; ok {
			ve.errorf("duplicate table %q", t.Name)
		}
		seen[t.Name] = struct{}{}

		cols := make(map[string]struct{})
		for _, c := range t.Columns {
			k := strings.ToLower(c.Name)
			if _, ok := cols[k]; ok {
				ve.errorf("duplicate column %q in table %q", c.Name, t.Name)
			}
			cols[k] = struct{}{}
		}
	}

	type key struct{ table, column string }
	byColumn := make(map[key]*Relationship)
	for _, r := range s.Relationships {
		k := key{r.FromTable, r.FromColumn}
		if _, ok := byColumn[k]; ok {
			ve.errorf("column %s.%s is the source of more than one relationship", r.FromTable, r.FromColumn)
		}
		byColumn[k] = r

		t := s.Table(r.FromTable)
		if t == nil {
			ve.errorf("relationship %s: missing source table", r)
			continue
		}
		c := t.Column(r.FromColumn)
		if c == nil {
			ve.errorf("relationship %s: missing source column", r)
			continue
		}
		if !c.FK || c.RefTable != r.ToTable || c.RefColumn != r.ToColumn {
			ve.errorf("relationship %s: column %s.%s references %q.%q", r, t.Name, c.Name, c.RefTable, c.RefColumn)
		}
	}

	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if !c.FK {
				continue
			}
			if _, ok := byColumn[key{t.Name, c.Name}]; !ok {
				ve.errorf("column %s.%s is marked as a foreign key but has no relationship", t.Name, c.Name)
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
