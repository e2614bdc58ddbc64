// Package nvschema defines the tables, columns and relationships of an ER
// diagram.
//
// Relationships are stored twice: once in Schema.Relationships and once as
// the FK fields of the source column. The two must never diverge. Callers
// outside of nvoracle and nvparser treat a Schema as read-only.
package nvschema

import (
	"strings"
)

const DefaultIcon = "fa-table"

type Column struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	PK        bool   `json:"pk"`
	Increment bool   `json:"increment"`
	NotNull   bool   `json:"notNull"`
	Unique    bool   `json:"unique"`
	Default   string `json:"default,omitempty"`
	FK        bool   `json:"fk"`
	RefTable  string `json:"refTable,omitempty"`
	RefColumn string `json:"refColumn,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Optional reports whether the column may hold NULL.
func (c *Column) Optional() bool {
	return !c.NotNull && !c.PK
}

// One reports whether each value of the column appears at most once.
func (c *Column) One() bool {
	return c.Unique || c.PK
}

// ClearRef strips the foreign key markers.
func (c *Column) ClearRef() {
	c.FK = false
	c.RefTable = ""
	c.RefColumn = ""
}

func (c *Column) Copy() *Column {
	if c == nil {
		return nil
	}
	c2 := *c
	return &c2
}

type Table struct {
	Name    string     `json:"name"`
	Columns []*Column  `json:"columns"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	Icon    string     `json:"icon,omitempty"`
	Color   string     `json:"color,omitempty"`
	Note    string     `json:"note,omitempty"`
	Indexes [][]string `json:"indexes,omitempty"`

	// Width is the last measured rendered width. Zero means unmeasured.
	Width float64 `json:"-"`
}

func (t *Table) Column(name string) *Column {
	if i := t.ColumnIndex(name); i >= 0 {
		return t.Columns[i]
	}
	return nil
}

func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// HasColumnFold is a case-insensitive column lookup.
func (t *Table) HasColumnFold(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ReferenceColumn is the column a new foreign key into t points at: the
// primary key, else a column named id, else the first column.
func (t *Table) ReferenceColumn() *Column {
	for _, c := range t.Columns {
		if c.PK {
			return c
		}
	}
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, "id") {
			return c
		}
	}
	if len(t.Columns) > 0 {
		return t.Columns[0]
	}
	return nil
}

// IconOrDefault never returns "".
func (t *Table) IconOrDefault() string {
	if t.Icon == "" {
		return DefaultIcon
	}
	return t.Icon
}

func (t *Table) Copy() *Table {
	if t == nil {
		return nil
	}
	t2 := *t
	t2.Columns = make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		t2.Columns[i] = c.Copy()
	}
	t2.Indexes = nil
	for _, idx := range t.Indexes {
		t2.Indexes = append(t2.Indexes, append([]string(nil), idx...))
	}
	return &t2
}

type Relationship struct {
	FromTable  string `json:"fromTable"`
	FromColumn string `json:"fromColumn"`
	ToTable    string `json:"toTable"`
	ToColumn   string `json:"toColumn"`
}

func (r *Relationship) IsSelf() bool {
	return r.FromTable == r.ToTable
}

// Touches reports whether the relationship has table on either end.
func (r *Relationship) Touches(table string) bool {
	return r.FromTable == table || r.ToTable == table
}

func (r *Relationship) String() string {
	return r.FromTable + "." + r.FromColumn + " -> " + r.ToTable + "." + r.ToColumn
}

type Schema struct {
	// Tables are in z-order: later tables are drawn on top.
	Tables        []*Table        `json:"tables"`
	Relationships []*Relationship `json:"relationships"`
}

func New() *Schema {
	return &Schema{
		Tables:        []*Table{},
		Relationships: []*Relationship{},
	}
}

func (s *Schema) Table(name string) *Table {
	if i := s.TableIndex(name); i >= 0 {
		return s.Tables[i]
	}
	return nil
}

func (s *Schema) TableIndex(name string) int {
	for i, t := range s.Tables {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// Resolve looks up both ends of r. ok is false if any of them is missing.
func (s *Schema) Resolve(r *Relationship) (fromT *Table, fromC *Column, toT *Table, toC *Column, ok bool) {
	fromT = s.Table(r.FromTable)
	toT = s.Table(r.ToTable)
	if fromT == nil || toT == nil {
		return nil, nil, nil, nil, false
	}
	fromC = fromT.Column(r.FromColumn)
	toC = toT.Column(r.ToColumn)
	if fromC == nil || toC == nil {
		return nil, nil, nil, nil, false
	}
	return fromT, fromC, toT, toC, true
}

// RelationshipsOf returns every relationship with table on either end.
func (s *Schema) RelationshipsOf(table string) []*Relationship {
	var rels []*Relationship
	for _, r := range s.Relationships {
		if r.Touches(table) {
			rels = append(rels, r)
		}
	}
	return rels
}

// Icons returns the non-default icons keyed by table name.
func (s *Schema) Icons() map[string]string {
	icons := make(map[string]string)
	for _, t := range s.Tables {
		if t.Icon != "" && t.Icon != DefaultIcon {
			icons[t.Name] = t.Icon
		}
	}
	return icons
}

// Colors returns the accent colors keyed by table name.
func (s *Schema) Colors() map[string]string {
	colors := make(map[string]string)
	for _, t := range s.Tables {
		if t.Color != "" {
			colors[t.Name] = t.Color
		}
	}
	return colors
}

// AllAtOrigin reports whether no table has ever been positioned.
func (s *Schema) AllAtOrigin() bool {
	for _, t := range s.Tables {
		if t.X != 0 || t.Y != 0 {
			return false
		}
	}
	return true
}

func (s *Schema) Copy() *Schema {
	s2 := New()
	for _, t := range s.Tables {
		s2.Tables = append(s2.Tables, t.Copy())
	}
	for _, r := range s.Relationships {
		r2 := *r
		s2.Relationships = append(s2.Relationships, &r2)
	}
	return s2
}
