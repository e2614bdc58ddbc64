// Package nvformat renders a schema back into DSL text.
package nvformat

import (
	"strings"

	"oss.terrastruct.com/navani/nvschema"
)

type Options struct {
	// IncludeStyle emits the icon and color table attributes.
	IncludeStyle bool
}

// DefaultOptions is used when Format is passed nil options.
var DefaultOptions = Options{IncludeStyle: true}

// Format returns the DSL for every table of s in order. Relationships are
// expressed through the ref constraints of their source columns.
func Format(s *nvschema.Schema, opts *Options) string {
	if opts == nil {
		opts = &DefaultOptions
	}
	p := printer{opts: opts}
	for _, t := range s.Tables {
		p.table(t)
	}
	return p.sb.String()
}

type printer struct {
	sb   strings.Builder
	opts *Options
}

func (p *printer) table(t *nvschema.Table) {
	p.sb.WriteString("Table ")
	p.sb.WriteString(t.Name)

	if attrs := p.attrs(t); len(attrs) > 0 {
		p.sb.WriteString(" [")
		p.sb.WriteString(strings.Join(attrs, ", "))
		p.sb.WriteString("]")
	}
	p.sb.WriteString(" {\n")

	for _, c := range t.Columns {
		p.column(c)
	}

	if len(t.Indexes) > 0 {
		p.sb.WriteString("\n  Indexes {\n")
		for _, idx := range t.Indexes {
			p.sb.WriteString("    (")
			p.sb.WriteString(strings.Join(idx, ", "))
			p.sb.WriteString(")\n")
		}
		p.sb.WriteString("  }\n")
	}

	if t.Note != "" {
		p.sb.WriteString("\n  note: '")
		p.sb.WriteString(t.Note)
		p.sb.WriteString("'\n")
	}

	p.sb.WriteString("}\n\n")
}

func (p *printer) attrs(t *nvschema.Table) []string {
	if !p.opts.IncludeStyle {
		return nil
	}
	var attrs []string
	if t.Icon != "" && t.Icon != nvschema.DefaultIcon {
		attrs = append(attrs, "icon: "+t.Icon)
	}
	if t.Color != "" {
		attrs = append(attrs, "color: "+t.Color)
	}
	return attrs
}

func (p *printer) column(c *nvschema.Column) {
	p.sb.WriteString("  ")
	p.sb.WriteString(c.Name)
	p.sb.WriteByte(' ')
	p.sb.WriteString(c.Type)
	if cons := Constraints(c); len(cons) > 0 {
		p.sb.WriteString(" [")
		p.sb.WriteString(strings.Join(cons, ", "))
		p.sb.WriteByte(']')
	}
	p.sb.WriteByte('\n')
}

// Constraints returns the settings of c in canonical order: pk or
// increment, not null, unique, default, ref, note. not null and unique are
// implied by pk and omitted.
func Constraints(c *nvschema.Column) []string {
	var cons []string
	if c.PK {
		if c.Increment {
			cons = append(cons, "increment")
		} else {
			cons = append(cons, "pk")
		}
	}
	if c.NotNull && !c.PK {
		cons = append(cons, "not null")
	}
	if c.Unique && !c.PK {
		cons = append(cons, "unique")
	}
	if c.Default != "" {
		cons = append(cons, "default: "+c.Default)
	}
	if c.FK || c.RefTable != "" {
		refTable := c.RefTable
		if refTable == "" {
			refTable = "table"
		}
		refColumn := c.RefColumn
		if refColumn == "" {
			refColumn = "id"
		}
		cons = append(cons, "ref: > "+refTable+"."+refColumn)
	}
	if c.Note != "" {
		cons = append(cons, "note: '"+c.Note+"'")
	}
	return cons
}
