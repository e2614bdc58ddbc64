// Package nvoracle is the only writer of tables, columns and relationships.
//
// Every function either applies its whole change or returns an error and
// leaves the state untouched. Relationship records and the FK fields of
// their source columns are always updated together.
package nvoracle

import (
	"errors"
	"fmt"
	"strings"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

var ErrNotFound = errors.New("not found")

// ColumnSpec is one row of the add/edit table form.
type ColumnSpec struct {
	Name string
	Type string
	PK   bool
}

// TableSpec is the add/edit table form.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
	Icon    string
	Color   string
}

// ApplyParse replaces the schema with the one parsed from text. Icons and
// colors of tables that keep their name are carried over, then the pending
// share/library maps are applied on top.
//
// When text defines no tables nvparser.ErrNoTables is returned and st is left
// untouched.
func ApplyParse(st *nvstate.State, text string) error {
	s, err := nvparser.Parse(text)
	if err != nil {
		return err
	}

	prevIcons := make(map[string]string)
	prevColors := make(map[string]string)
	for _, t := range st.Schema.Tables {
		if t.Icon != "" {
			prevIcons[t.Name] = t.Icon
		}
		if t.Color != "" {
			prevColors[t.Name] = t.Color
		}
	}

	pendingIcons, pendingColors := st.ConsumePending()
	for _, t := range s.Tables {
		if icon, ok := pendingIcons[t.Name]; ok {
			t.Icon = icon
		} else if icon, ok := prevIcons[t.Name]; ok && t.Icon == "" {
			t.Icon = icon
		}
		if t.Color != "" {
			continue
		}
		if color, ok := pendingColors[t.Name]; ok {
			t.Color = color
		} else if color, ok := prevColors[t.Name]; ok {
			t.Color = color
		}
	}

	// Positions survive a reparse so editing the text does not scatter the
	// diagram.
	for _, t := range s.Tables {
		if prev := st.Schema.Table(t.Name); prev != nil {
			t.X, t.Y, t.Width = prev.X, prev.Y, prev.Width
		}
	}

	st.Schema = s
	st.CancelDraft()
	st.CloseEditor()
	pruneTransient(st)
	return nil
}

// pruneTransient forgets selection and hover entries for tables that no
// longer exist.
func pruneTransient(st *nvstate.State) {
	sel := st.Selection[:0]
	for _, n := range st.Selection {
		if st.Schema.Table(n) != nil {
			sel = append(sel, n)
		}
	}
	st.Selection = sel
	if st.Hover != "" && st.Schema.Table(st.Hover) == nil {
		st.Hover = ""
	}
}

func buildColumns(specs []ColumnSpec) ([]*nvschema.Column, error) {
	var cols []*nvschema.Column
	seen := make(map[string]bool)
	for _, cs := range specs {
		name := strings.TrimSpace(cs.Name)
		if name == "" {
			continue
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[strings.ToLower(name)] = true

		typ := nvparser.NormalizeType(strings.TrimSpace(cs.Type))
		if typ == "" {
			typ = "int"
		}
		cols = append(cols, &nvschema.Column{
			Name: name,
			Type: typ,
			PK:   cs.PK,
		})
	}
	if len(cols) == 0 {
		return nil, errors.New("a table needs at least one column")
	}
	return cols, nil
}

func checkStyle(icon, color string) error {
	if icon != "" && !nvschema.IsIcon(icon) {
		return fmt.Errorf("unknown icon %q", icon)
	}
	if !nvschema.IsColor(color) {
		return fmt.Errorf("invalid color %q", color)
	}
	return nil
}

// CreateTable appends a new table at the origin.
func CreateTable(st *nvstate.State, spec TableSpec) (_ *nvschema.Table, err error) {
	defer xdefer.Errorf(&err, "failed to create table %q", spec.Name)

	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, errors.New("table name is required")
	}
	if st.Schema.Table(name) != nil {
		return nil, fmt.Errorf("table %q already exists", name)
	}
	if err := checkStyle(spec.Icon, spec.Color); err != nil {
		return nil, err
	}
	cols, err := buildColumns(spec.Columns)
	if err != nil {
		return nil, err
	}

	t := &nvschema.Table{
		Name:    name,
		Columns: cols,
		Icon:    spec.Icon,
		Color:   spec.Color,
	}
	st.Schema.Tables = append(st.Schema.Tables, t)
	st.CloseEditor()
	return t, nil
}

// AddTemplate adds a copy of the named template under a unique name. Template
// foreign keys into existing tables become relationships; the others are
// cleared.
func AddTemplate(st *nvstate.State, name string) (_ *nvschema.Table, err error) {
	defer xdefer.Errorf(&err, "failed to add template %q", name)

	t := nvschema.Template(name)
	if t == nil {
		return nil, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	t.Name = st.Schema.UniqueTableName(t.Name)

	var rels []*nvschema.Relationship
	for _, c := range t.Columns {
		if !c.FK {
			continue
		}
		target := st.Schema.Table(c.RefTable)
		if target == nil || target.Column(c.RefColumn) == nil {
			c.ClearRef()
			continue
		}
		rels = append(rels, &nvschema.Relationship{
			FromTable:  t.Name,
			FromColumn: c.Name,
			ToTable:    c.RefTable,
			ToColumn:   c.RefColumn,
		})
	}

	st.Schema.Tables = append(st.Schema.Tables, t)
	st.Schema.Relationships = append(st.Schema.Relationships, rels...)
	return t, nil
}

// EditTable replaces the name, columns and style of table. Columns that keep
// their name keep their foreign key and other settings not on the form.
// Relationships through columns that were removed are dropped.
func EditTable(st *nvstate.State, table string, spec TableSpec) (err error) {
	defer xdefer.Errorf(&err, "failed to edit table %q", table)

	t := st.Schema.Table(table)
	if t == nil {
		return fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	newName := strings.TrimSpace(spec.Name)
	if newName == "" {
		return errors.New("table name is required")
	}
	if newName != table && st.Schema.Table(newName) != nil {
		return fmt.Errorf("table %q already exists", newName)
	}
	if err := checkStyle(spec.Icon, spec.Color); err != nil {
		return err
	}
	cols, err := buildColumns(spec.Columns)
	if err != nil {
		return err
	}

	for _, c := range cols {
		old := t.Column(c.Name)
		if old == nil {
			continue
		}
		merged := old.Copy()
		merged.Type = c.Type
		merged.PK = c.PK
		if !c.PK {
			merged.Increment = false
		}
		*c = *merged
	}

	kept := make(map[string]*nvschema.Column)
	for _, c := range cols {
		kept[c.Name] = c
	}
	rels := st.Schema.Relationships[:0]
	for _, r := range st.Schema.Relationships {
		switch {
		case r.FromTable == table && kept[r.FromColumn] == nil:
			continue
		case r.ToTable == table && kept[r.ToColumn] == nil:
			// A self reference lives in the new columns; t.Columns is
			// about to be replaced.
			if r.FromTable == table {
				kept[r.FromColumn].ClearRef()
			} else if src := st.Schema.Table(r.FromTable); src != nil {
				if c := src.Column(r.FromColumn); c != nil {
					c.ClearRef()
				}
			}
			continue
		}
		rels = append(rels, r)
	}
	st.Schema.Relationships = rels

	t.Columns = cols
	t.Icon = spec.Icon
	t.Color = spec.Color
	st.CloseEditor()

	if newName != table {
		renameTable(st, table, newName)
	}
	return nil
}

// RenameTable renames table and every reference to it.
func RenameTable(st *nvstate.State, table, newName string) (err error) {
	defer xdefer.Errorf(&err, "failed to rename %q", table)

	newName = strings.TrimSpace(newName)
	if st.Schema.Table(table) == nil {
		return fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	if newName == "" {
		return errors.New("table name is required")
	}
	if newName == table {
		return nil
	}
	if st.Schema.Table(newName) != nil {
		return fmt.Errorf("table %q already exists", newName)
	}
	renameTable(st, table, newName)
	return nil
}

func renameTable(st *nvstate.State, oldName, newName string) {
	st.Schema.Table(oldName).Name = newName
	for _, t := range st.Schema.Tables {
		for _, c := range t.Columns {
			if c.RefTable == oldName {
				c.RefTable = newName
				c.FK = true
			}
		}
	}
	for _, r := range st.Schema.Relationships {
		if r.FromTable == oldName {
			r.FromTable = newName
		}
		if r.ToTable == oldName {
			r.ToTable = newName
		}
	}
	for i, n := range st.Selection {
		if n == oldName {
			st.Selection[i] = newName
		}
	}
	if st.Hover == oldName {
		st.Hover = newName
	}
	if d := st.Draft; d != nil {
		if d.FromTable == oldName {
			d.FromTable = newName
		}
		if d.TargetTable == oldName {
			d.TargetTable = newName
		}
	}
	if e := st.Editor; e != nil {
		if e.FromTable == oldName {
			e.FromTable = newName
		}
		if e.ToTable == oldName {
			e.ToTable = newName
		}
	}
}

// DeleteTable removes table with its relationships and strips foreign keys
// into it from other tables.
func DeleteTable(st *nvstate.State, table string) (err error) {
	defer xdefer.Errorf(&err, "failed to delete %q", table)

	i := st.Schema.TableIndex(table)
	if i < 0 {
		return fmt.Errorf("table %q: %w", table, ErrNotFound)
	}

	if st.Draft != nil && (st.Draft.FromTable == table || st.Draft.TargetTable == table) {
		st.CancelDraft()
	}
	st.CloseEditor()

	st.Schema.Tables = append(st.Schema.Tables[:i], st.Schema.Tables[i+1:]...)

	rels := st.Schema.Relationships[:0]
	for _, r := range st.Schema.Relationships {
		if !r.Touches(table) {
			rels = append(rels, r)
		}
	}
	st.Schema.Relationships = rels

	for _, t := range st.Schema.Tables {
		for _, c := range t.Columns {
			if c.RefTable == table {
				c.ClearRef()
			}
		}
	}

	st.Deselect(table)
	if st.Hover == table {
		st.Hover = ""
	}
	return nil
}

// DeleteSelected deletes every selected table.
func DeleteSelected(st *nvstate.State) (deleted []string, err error) {
	for _, n := range append([]string(nil), st.Selection...) {
		if st.Schema.Table(n) == nil {
			continue
		}
		if err := DeleteTable(st, n); err != nil {
			return deleted, err
		}
		deleted = append(deleted, n)
	}
	st.ClearSelection()
	return deleted, nil
}

// SetTableStyle sets the icon and accent color of table. An empty icon
// restores the default.
func SetTableStyle(st *nvstate.State, table, icon, color string) (err error) {
	defer xdefer.Errorf(&err, "failed to style %q", table)

	t := st.Schema.Table(table)
	if t == nil {
		return fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	if err := checkStyle(icon, color); err != nil {
		return err
	}
	t.Icon = icon
	t.Color = color
	return nil
}

// MoveTable places the top-left corner of table at (x, y).
func MoveTable(st *nvstate.State, table string, x, y float64) (err error) {
	defer xdefer.Errorf(&err, "failed to move %q", table)

	t := st.Schema.Table(table)
	if t == nil {
		return fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	t.X, t.Y = x, y
	return nil
}
