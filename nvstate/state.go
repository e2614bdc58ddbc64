// Package nvstate holds the application context of an open diagram: the
// schema plus the transient interaction state around it.
//
// A State is owned by exactly one caller at a time and is not safe for
// concurrent use.
package nvstate

import (
	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/nvschema"
)

const DefaultName = "Untitled Schema"

// Kind is the cardinality a new relationship is created with.
type Kind string

const (
	ManyToOne Kind = "many_to_one"
	OneToOne  Kind = "one_to_one"
)

// Draft is an in-progress connection dragged out of FromTable.
type Draft struct {
	GestureID int
	FromTable string
	FromSide  geo.Side
	// FromPoint is the midpoint of FromSide in world coordinates.
	FromPoint *geo.Point
	Current   *geo.Point
	// TargetTable is the table under Current, never FromTable. "" if none.
	TargetTable string
}

type EditorMode int

const (
	// EditorCreate defines a new relationship from FromTable to ToTable.
	EditorCreate EditorMode = iota
	// EditorEdit changes the relationship whose source is FromTable.FromColumn.
	EditorEdit
)

// Editor is the open relation editor. The zero values of Name, ToColumn,
// Kind and Required are what the form is prefilled with.
type Editor struct {
	Mode       EditorMode
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
	Name       string
	Kind       Kind
	Required   bool
	// Anchor is where the editor was opened, in screen coordinates.
	Anchor *geo.Point
}

// Bound reports whether the editor references table on either end.
func (e *Editor) Bound(table string) bool {
	return e.FromTable == table || e.ToTable == table
}

type State struct {
	Name     string
	Schema   *nvschema.Schema
	Viewport Viewport

	// Selection is in insertion order.
	Selection []string
	Draft     *Draft
	Editor    *Editor
	Hover     string

	// PendingIcons and PendingColors are merged into the next parse by table
	// name. They are filled by share links and library loads.
	PendingIcons  map[string]string
	PendingColors map[string]string
}

func New() *State {
	return &State{
		Name:     DefaultName,
		Schema:   nvschema.New(),
		Viewport: NewViewport(),
	}
}

func (st *State) IsSelected(name string) bool {
	for _, n := range st.Selection {
		if n == name {
			return true
		}
	}
	return false
}

// Select replaces the selection with name. With additive, name is toggled
// instead.
func (st *State) Select(name string, additive bool) {
	if !additive {
		st.Selection = []string{name}
		return
	}
	if st.IsSelected(name) {
		st.Deselect(name)
		return
	}
	st.Selection = append(st.Selection, name)
}

// AddToSelection appends the names not already selected.
func (st *State) AddToSelection(names ...string) {
	for _, n := range names {
		if !st.IsSelected(n) {
			st.Selection = append(st.Selection, n)
		}
	}
}

func (st *State) Deselect(name string) {
	sel := st.Selection[:0]
	for _, n := range st.Selection {
		if n != name {
			sel = append(sel, n)
		}
	}
	st.Selection = sel
}

func (st *State) ClearSelection() {
	st.Selection = nil
}

// SelectedTables returns the selected tables that exist, in selection order.
func (st *State) SelectedTables() []*nvschema.Table {
	var tables []*nvschema.Table
	for _, n := range st.Selection {
		if t := st.Schema.Table(n); t != nil {
			tables = append(tables, t)
		}
	}
	return tables
}

func (st *State) CancelDraft() {
	st.Draft = nil
}

func (st *State) CloseEditor() {
	st.Editor = nil
}

// OpenEditor closes any open editor before opening e.
func (st *State) OpenEditor(e *Editor) {
	st.CloseEditor()
	st.Editor = e
}

// Reset drops every piece of transient state that refers to tables.
func (st *State) Reset() {
	st.Selection = nil
	st.Draft = nil
	st.Editor = nil
	st.Hover = ""
}

// ConsumePending returns the pending icon and color maps and clears them.
func (st *State) ConsumePending() (icons, colors map[string]string) {
	icons, colors = st.PendingIcons, st.PendingColors
	st.PendingIcons = nil
	st.PendingColors = nil
	return icons, colors
}
