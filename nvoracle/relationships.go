package nvoracle

import (
	"errors"
	"fmt"
	"strings"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

// RelationshipSpec is the relation editor form.
type RelationshipSpec struct {
	// ToColumn defaults to the reference column of the target table.
	ToColumn string
	// Name of the FK column. Defaults to <toTable>_<toColumn>.
	Name     string
	Kind     nvstate.Kind
	Required bool
}

// CreateRelationship adds a foreign key column to from referencing to and
// records the relationship.
func CreateRelationship(st *nvstate.State, from, to string, spec RelationshipSpec) (_ *nvschema.Relationship, err error) {
	defer xdefer.Errorf(&err, "failed to connect %q to %q", from, to)

	if from == to {
		return nil, errors.New("cannot connect a table to itself")
	}
	fromT := st.Schema.Table(from)
	toT := st.Schema.Table(to)
	if fromT == nil || toT == nil {
		return nil, errors.New("invalid tables for relationship")
	}

	var toC *nvschema.Column
	if spec.ToColumn != "" {
		toC = toT.Column(spec.ToColumn)
	} else {
		toC = toT.ReferenceColumn()
	}
	if toC == nil {
		return nil, fmt.Errorf("table %q has no column to reference", to)
	}

	for _, r := range st.Schema.Relationships {
		if r.FromTable == from && r.ToTable == to && r.ToColumn == toC.Name {
			return nil, fmt.Errorf("relationship %s -> %s already exists", from, to)
		}
	}

	name := strings.TrimSpace(spec.Name)
	if name != "" {
		name = nvschema.SanitizeColumnName(name)
	} else {
		name = nvschema.SuggestFKName(to, toC.Name)
	}
	name = nvschema.UniqueColumnName(fromT, name)

	typ := toC.Type
	if typ == "" {
		typ = "int"
	}
	fromT.Columns = append(fromT.Columns, &nvschema.Column{
		Name:      name,
		Type:      typ,
		NotNull:   spec.Required,
		Unique:    spec.Kind == nvstate.OneToOne,
		FK:        true,
		RefTable:  to,
		RefColumn: toC.Name,
	})
	r := &nvschema.Relationship{
		FromTable:  from,
		FromColumn: name,
		ToTable:    to,
		ToColumn:   toC.Name,
	}
	st.Schema.Relationships = append(st.Schema.Relationships, r)
	return r, nil
}

func findRelationship(s *nvschema.Schema, fromTable, fromColumn string) (int, *nvschema.Relationship) {
	for i, r := range s.Relationships {
		if r.FromTable == fromTable && r.FromColumn == fromColumn {
			return i, r
		}
	}
	return -1, nil
}

// EditRelationship renames the FK column fromTable.fromColumn and updates
// its target column, cardinality and nullability.
func EditRelationship(st *nvstate.State, fromTable, fromColumn string, spec RelationshipSpec) (err error) {
	defer xdefer.Errorf(&err, "failed to edit %s.%s", fromTable, fromColumn)

	_, r := findRelationship(st.Schema, fromTable, fromColumn)
	if r == nil {
		return fmt.Errorf("relationship: %w", ErrNotFound)
	}
	fromT, fromC, toT, _, ok := st.Schema.Resolve(r)
	if !ok {
		return fmt.Errorf("relationship %s is dangling", r)
	}

	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return errors.New("FK column name cannot be empty")
	}
	sanitized := nvschema.SanitizeColumnName(name)
	for _, c := range fromT.Columns {
		if c == fromC {
			continue
		}
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.Name, sanitized) {
			return fmt.Errorf("column %q already exists in %s", name, fromTable)
		}
	}

	toColumn := spec.ToColumn
	if toColumn == "" {
		toColumn = r.ToColumn
	}
	if toT.Column(toColumn) == nil {
		return fmt.Errorf("column %s.%s: %w", toT.Name, toColumn, ErrNotFound)
	}

	if old := fromC.Name; old != sanitized {
		renameColumnRefs(st, fromTable, old, sanitized)
	}
	fromC.Name = sanitized
	fromC.Unique = spec.Kind == nvstate.OneToOne
	fromC.NotNull = spec.Required
	fromC.RefColumn = toColumn
	r.FromColumn = sanitized
	r.ToColumn = toColumn

	if e := st.Editor; e != nil && e.FromTable == fromTable && e.FromColumn == fromColumn {
		e.FromColumn = sanitized
	}
	return nil
}

// renameColumnRefs points every relationship and FK column that targets
// table.oldName at table.newName.
func renameColumnRefs(st *nvstate.State, table, oldName, newName string) {
	for _, r := range st.Schema.Relationships {
		if r.ToTable == table && r.ToColumn == oldName {
			r.ToColumn = newName
		}
	}
	for _, t := range st.Schema.Tables {
		for _, c := range t.Columns {
			if c.FK && c.RefTable == table && c.RefColumn == oldName {
				c.RefColumn = newName
			}
		}
	}
	if e := st.Editor; e != nil && e.ToTable == table && e.ToColumn == oldName {
		e.ToColumn = newName
	}
}

// DeleteRelationship removes the relationship whose source is
// fromTable.fromColumn along with the FK column itself.
func DeleteRelationship(st *nvstate.State, fromTable, fromColumn string) (err error) {
	defer xdefer.Errorf(&err, "failed to delete %s.%s", fromTable, fromColumn)

	i, r := findRelationship(st.Schema, fromTable, fromColumn)
	if r == nil {
		return fmt.Errorf("relationship: %w", ErrNotFound)
	}
	if t := st.Schema.Table(fromTable); t != nil {
		if ci := t.ColumnIndex(fromColumn); ci >= 0 {
			t.Columns = append(t.Columns[:ci], t.Columns[ci+1:]...)
		}
	}
	st.Schema.Relationships = append(st.Schema.Relationships[:i], st.Schema.Relationships[i+1:]...)
	if e := st.Editor; e != nil && e.Mode == nvstate.EditorEdit && e.FromTable == fromTable && e.FromColumn == fromColumn {
		st.CloseEditor()
	}
	return nil
}

// OpenCreateEditor opens the relation editor for a new foreign key in from
// referencing to, prefilled with the suggested column name.
func OpenCreateEditor(st *nvstate.State, from, to string) (err error) {
	defer xdefer.Errorf(&err, "failed to open relation editor")

	fromT := st.Schema.Table(from)
	toT := st.Schema.Table(to)
	if fromT == nil || toT == nil {
		return errors.New("invalid tables for relationship")
	}
	ref := toT.ReferenceColumn()
	if ref == nil {
		return fmt.Errorf("table %s has no columns", to)
	}
	st.OpenEditor(&nvstate.Editor{
		Mode:      nvstate.EditorCreate,
		FromTable: from,
		ToTable:   to,
		ToColumn:  ref.Name,
		Name:      nvschema.UniqueColumnName(fromT, nvschema.SuggestFKName(to, ref.Name)),
		Kind:      nvstate.ManyToOne,
	})
	return nil
}

// OpenEditEditor opens the relation editor on an existing relationship,
// prefilled from its FK column.
func OpenEditEditor(st *nvstate.State, fromTable, fromColumn string) (err error) {
	defer xdefer.Errorf(&err, "failed to open relation editor")

	_, r := findRelationship(st.Schema, fromTable, fromColumn)
	if r == nil {
		return fmt.Errorf("relationship: %w", ErrNotFound)
	}
	_, fromC, _, _, ok := st.Schema.Resolve(r)
	if !ok {
		return fmt.Errorf("relationship %s is dangling", r)
	}
	kind := nvstate.ManyToOne
	if fromC.Unique {
		kind = nvstate.OneToOne
	}
	st.OpenEditor(&nvstate.Editor{
		Mode:       nvstate.EditorEdit,
		FromTable:  r.FromTable,
		FromColumn: r.FromColumn,
		ToTable:    r.ToTable,
		ToColumn:   r.ToColumn,
		Name:       r.FromColumn,
		Kind:       kind,
		Required:   fromC.NotNull,
	})
	return nil
}

// CommitEditor applies the open relation editor and closes it. On error the
// editor stays open.
func CommitEditor(st *nvstate.State) error {
	e := st.Editor
	if e == nil {
		return errors.New("no relation editor is open")
	}
	spec := RelationshipSpec{
		ToColumn: e.ToColumn,
		Name:     e.Name,
		Kind:     e.Kind,
		Required: e.Required,
	}
	var err error
	switch e.Mode {
	case nvstate.EditorEdit:
		err = EditRelationship(st, e.FromTable, e.FromColumn, spec)
	default:
		_, err = CreateRelationship(st, e.FromTable, e.ToTable, spec)
	}
	if err != nil {
		return err
	}
	st.CloseEditor()
	return nil
}
