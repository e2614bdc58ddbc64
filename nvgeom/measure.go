package nvgeom

import (
	"math"

	"oss.terrastruct.com/navani/lib/textmeasure"
	"oss.terrastruct.com/navani/nvschema"
)

// Measurer reports the pixel extents of text. *textmeasure.Ruler is the
// production implementation.
type Measurer interface {
	Measure(font textmeasure.Font, s string) (width, height int)
}

var (
	HeaderFont = textmeasure.Font{Size: 14, Bold: true}
	ColumnFont = textmeasure.Font{Size: 12}
	TypeFont   = textmeasure.Font{Size: 11}
)

const (
	// NameOffset is where column names start, after the PK/FK tag.
	NameOffset = 28.
	// TypeOffset is the minimum x of the type column.
	TypeOffset = 130.

	columnGap      = 16.
	rowPadRight    = 14.
	headerChrome   = 86.
	typePadMinimum = NameOffset + columnGap
)

// Layout is the horizontal layout of a table's text.
type Layout struct {
	Width float64
	// TypeX is the offset of the type column from the table's left edge.
	TypeX float64
}

// MeasureLayout computes the width a table needs to fit its text without
// shrinking below DefaultWidth. With a nil Measurer the defaults are used.
func MeasureLayout(t *nvschema.Table, m Measurer) Layout {
	l := Layout{Width: DefaultWidth, TypeX: TypeOffset}
	if m == nil {
		return l
	}

	headerW, _ := m.Measure(HeaderFont, t.Name)
	l.Width = math.Max(l.Width, float64(headerW)+headerChrome)

	maxName := 0
	for _, c := range t.Columns {
		w, _ := m.Measure(ColumnFont, c.Name)
		if w > maxName {
			maxName = w
		}
	}
	l.TypeX = math.Max(TypeOffset, typePadMinimum+float64(maxName))

	for _, c := range t.Columns {
		w, _ := m.Measure(TypeFont, c.Type)
		l.Width = math.Max(l.Width, l.TypeX+float64(w)+rowPadRight)
	}
	l.Width = math.Ceil(l.Width)
	return l
}
