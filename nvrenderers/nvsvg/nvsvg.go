// nvsvg renders a diagram as an SVG document.
//
// Connectors come exclusively from nvrouter so the output agrees with the
// interaction hit tests and the raster renderer.
package nvsvg

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvrenderers/nvthemes"
	"oss.terrastruct.com/navani/nvrouter"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

const (
	DEFAULT_PADDING = 60

	tableRadius  = 8.
	stripeHeight = 4.
	fontFamily   = `"Go", "Helvetica Neue", Arial, sans-serif`
)

type RenderOpts struct {
	Pad   *int64
	Theme *nvthemes.Theme
	// the svg will be scaled by this factor, if unset the svg has its natural size
	Scale    *float64
	NoXMLTag *bool

	// Viewport renders the canvas as seen through the state's viewport at its
	// screen size instead of cropping to the diagram.
	Viewport bool
	// Measurer positions the type column. nil uses the default offsets.
	Measurer nvgeom.Measurer
	Router   *nvrouter.Options

	// Preview is the in-progress connection, in world coordinates.
	Preview *nvrouter.Preview
	// Marquee is the selection rectangle, in screen coordinates.
	Marquee *geo.Box
}

func Render(st *nvstate.State, opts *RenderOpts) ([]byte, error) {
	pad := DEFAULT_PADDING
	theme := &nvthemes.Light
	if opts != nil {
		if opts.Pad != nil {
			pad = int(*opts.Pad)
		}
		if opts.Theme != nil {
			theme = opts.Theme
		}
	} else {
		opts = &RenderOpts{}
	}

	routed := nvrouter.Route(st.Schema, opts.Router)

	var left, top, w, h int
	if opts.Viewport {
		w = int(math.Ceil(st.Viewport.Width))
		h = int(math.Ceil(st.Viewport.Height))
	} else if b := nvrouter.Bounds(st.Schema, routed); b != nil {
		left = int(math.Floor(b.TopLeft.X)) - pad
		top = int(math.Floor(b.TopLeft.Y)) - pad
		w = int(math.Ceil(b.Right())) + pad - left
		h = int(math.Ceil(b.Bottom())) + pad - top
	} else {
		w, h = pad*2, pad*2
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, `<style type="text/css"><![CDATA[%s]]></style>`, stylesheet(theme))

	bg := newElement("rect")
	bg.X, bg.Y = float64(left), float64(top)
	bg.Width, bg.Height = float64(w), float64(h)
	bg.Fill = theme.Colors.Background
	bg.ClassName = "background"
	buf.WriteString(bg.render())

	content := newElement("g")
	content.ClassName = "content"
	if opts.Viewport {
		vp := st.Viewport
		content.Transform = fmt.Sprintf("translate(%s %s) scale(%s)", num(vp.PanX), num(vp.PanY), num(vp.Zoom))
	}

	inner := &bytes.Buffer{}
	// SVG has no notion of z-index, so connectors go first and tables are drawn
	// in model order on top of them.
	for _, r := range routed {
		drawRelationship(inner, r, r.Touches(st.Hover), theme)
	}
	if opts.Preview != nil {
		drawPreview(inner, opts.Preview, theme)
	}
	for _, t := range st.Schema.Tables {
		drawTable(inner, t, st.IsSelected(t.Name), st.Hover == t.Name, opts.Measurer, theme)
	}
	content.Content = inner.String()
	buf.WriteString(content.render())

	if len(st.Schema.Tables) == 0 {
		empty := newElement("text")
		empty.X = float64(left + w/2)
		empty.Y = float64(top + h/2)
		empty.ClassName = "empty"
		empty.Content = "No tables"
		buf.WriteString(empty.render())
	}

	if opts.Viewport && opts.Marquee != nil {
		m := newElement("rect")
		m.X, m.Y = opts.Marquee.TopLeft.X, opts.Marquee.TopLeft.Y
		m.Width, m.Height = opts.Marquee.Width, opts.Marquee.Height
		m.Fill = theme.Colors.Marquee
		m.Stroke = theme.Colors.Marquee
		m.ClassName = "marquee"
		m.Style = "fill-opacity:0.1"
		m.DashArray = "4 3"
		buf.WriteString(m.render())
	}

	var dimensions string
	if opts.Scale != nil {
		dimensions = fmt.Sprintf(` width="%d" height="%d"`,
			int(math.Ceil((*opts.Scale)*float64(w))),
			int(math.Ceil((*opts.Scale)*float64(h))),
		)
	}
	xmlTag := ""
	if opts.NoXMLTag == nil || !*opts.NoXMLTag {
		xmlTag = `<?xml version="1.0" encoding="utf-8"?>`
	}
	doc := fmt.Sprintf(`%s<svg xmlns="http://www.w3.org/2000/svg" class="navani" data-theme="%s" data-name="%s" viewBox="%d %d %d %d"%s>%s</svg>`,
		xmlTag,
		theme.Name,
		escape(st.Name),
		left, top, w, h,
		dimensions,
		buf.String(),
	)
	return []byte(doc), nil
}

func stylesheet(theme *nvthemes.Theme) string {
	c := theme.Colors
	return strings.Join([]string{
		fmt.Sprintf(`.navani text{font-family:%s;fill:%s}`, fontFamily, c.Text),
		`.navani .table-name{font-size:14px;font-weight:bold}`,
		`.navani .column-name{font-size:12px}`,
		fmt.Sprintf(`.navani .column-type{font-size:11px;fill:%s}`, c.Muted),
		`.navani .badge{font-size:9px;font-weight:bold}`,
		fmt.Sprintf(`.navani .badge-pk{fill:%s}`, c.PK),
		fmt.Sprintf(`.navani .badge-fk{fill:%s}`, c.FK),
		fmt.Sprintf(`.navani .rel-label{font-size:10px;fill:%s}`, c.Muted),
		fmt.Sprintf(`.navani .cardinality{font-size:10px;font-weight:bold;fill:%s}`, c.Muted),
		fmt.Sprintf(`.navani .highlighted text{fill:%s}`, c.Highlight),
		fmt.Sprintf(`.navani .empty{font-size:14px;text-anchor:middle;fill:%s}`, c.Muted),
	}, "")
}

func drawRelationship(buf *bytes.Buffer, r *nvrouter.Routed, highlighted bool, theme *nvthemes.Theme) {
	g := newElement("g")
	g.ClassName = "relationship"
	if highlighted {
		g.ClassName += " highlighted"
	}
	if r.Optional {
		g.ClassName += " optional"
	}
	rel := r.Relationship
	g.Data = map[string]string{
		"from": rel.FromTable + "." + rel.FromColumn,
		"to":   rel.ToTable + "." + rel.ToColumn,
	}

	stroke, width, barWidth, casingWidth := theme.Colors.Line, 1.5, 2., 7.
	if highlighted {
		stroke, width, barWidth, casingWidth = theme.Colors.Highlight, 2.5, 2.5, 12.
	}

	var sb strings.Builder
	d := r.Path.SVGPath()

	// The casing keeps crossings readable.
	casing := newElement("path")
	casing.D = d
	casing.Fill = "none"
	casing.Stroke = theme.Colors.Background
	casing.StrokeWidth = casingWidth
	casing.ClassName = "casing"
	sb.WriteString(casing.render())

	line := newElement("path")
	line.D = d
	line.Fill = "none"
	line.Stroke = stroke
	line.StrokeWidth = width
	line.ClassName = "rel-line"
	if r.Optional {
		line.DashArray = "8 4"
	}
	sb.WriteString(line.render())

	for _, end := range []nvrouter.End{r.From, r.To} {
		writeBars(&sb, end.Bars, stroke, barWidth)
		writeLabel(&sb, end.Label, "rel-label")
	}
	writeLabel(&sb, r.Cardinality, "cardinality")

	g.Content = sb.String()
	buf.WriteString(g.render())
}

func writeBars(sb *strings.Builder, bars []geo.Segment, stroke string, width float64) {
	for _, b := range bars {
		bar := newElement("line")
		bar.X1, bar.Y1 = b.Start.X, b.Start.Y
		bar.X2, bar.Y2 = b.End.X, b.End.Y
		bar.Stroke = stroke
		bar.StrokeWidth = width
		bar.ClassName = "bar"
		bar.Style = "stroke-linecap:round"
		sb.WriteString(bar.render())
	}
}

func writeLabel(sb *strings.Builder, l nvrouter.Label, class string) {
	if l.Text == "" {
		return
	}
	text := newElement("text")
	text.X, text.Y = l.Point.X, l.Point.Y
	text.ClassName = class
	text.Style = "text-anchor:" + l.Anchor
	text.Content = escape(l.Text)
	sb.WriteString(text.render())
}

func drawPreview(buf *bytes.Buffer, p *nvrouter.Preview, theme *nvthemes.Theme) {
	g := newElement("g")
	g.ClassName = "draft"
	width := 1.5
	opacity := 0.6
	if p.Active {
		g.ClassName += " active"
		width = 2
		opacity = 1
	}

	var sb strings.Builder
	path := newElement("path")
	path.D = p.Path.SVGPath()
	path.Fill = "none"
	path.Stroke = theme.Colors.Draft
	path.StrokeWidth = width
	path.Opacity = opacity
	path.DashArray = "7 5"
	sb.WriteString(path.render())
	writeBars(&sb, p.StartBars, theme.Colors.Draft, width)
	writeBars(&sb, p.EndBars, theme.Colors.Draft, width)

	g.Content = sb.String()
	buf.WriteString(g.render())
}

func drawTable(buf *bytes.Buffer, t *nvschema.Table, selected, hovered bool, m nvgeom.Measurer, theme *nvthemes.Theme) {
	box := nvgeom.Box(t)
	layout := nvgeom.MeasureLayout(t, m)

	g := newElement("g")
	g.ClassName = "table"
	if selected {
		g.ClassName += " selected"
	}
	if hovered {
		g.ClassName += " hovered"
	}
	g.Data = map[string]string{"table": t.Name}

	var sb strings.Builder
	if t.Note != "" {
		sb.WriteString("<title>" + escape(t.Note) + "</title>")
	}

	body := newElement("rect")
	body.X, body.Y = box.TopLeft.X, box.TopLeft.Y
	body.Width, body.Height = box.Width, box.Height
	body.Rx = tableRadius
	body.Fill = theme.Colors.Surface
	body.Stroke = theme.Colors.Border
	body.StrokeWidth = 1
	if selected {
		body.Stroke = theme.Colors.Highlight
		body.StrokeWidth = 2
	}
	body.ClassName = "body"
	sb.WriteString(body.render())

	header := newElement("rect")
	header.X, header.Y = box.TopLeft.X, box.TopLeft.Y
	header.Width, header.Height = box.Width, nvgeom.HeaderHeight
	header.Rx = tableRadius
	header.Fill = theme.HeaderFill(t.Color)
	header.ClassName = "header"
	sb.WriteString(header.render())

	if t.Color != "" {
		stripe := newElement("rect")
		stripe.X, stripe.Y = box.TopLeft.X, box.TopLeft.Y
		stripe.Width, stripe.Height = box.Width, stripeHeight
		stripe.Fill = t.Color
		stripe.ClassName = "stripe"
		sb.WriteString(stripe.render())
	}

	icon := newElement("text")
	icon.X, icon.Y = box.TopLeft.X+12, box.TopLeft.Y+26
	icon.ClassName = "icon"
	icon.Data = map[string]string{"icon": t.IconOrDefault()}
	if t.Color != "" {
		icon.Style = "fill:" + theme.IconFill(t.Color)
	}
	icon.Content = escape(nvschema.IconGlyph(t.IconOrDefault()))
	sb.WriteString(icon.render())

	name := newElement("text")
	name.X, name.Y = box.TopLeft.X+nvgeom.NameOffset, box.TopLeft.Y+26
	name.ClassName = "table-name"
	name.Content = escape(t.Name)
	sb.WriteString(name.render())

	cb := nvgeom.ConnectBox(t)
	connect := newElement("rect")
	connect.X, connect.Y = cb.TopLeft.X, cb.TopLeft.Y
	connect.Width, connect.Height = cb.Width, cb.Height
	connect.Rx = 6
	connect.Fill = "none"
	connect.Stroke = theme.Colors.Border
	if hovered || selected {
		connect.Stroke = theme.Colors.Highlight
	}
	connect.ClassName = "connect"
	sb.WriteString(connect.render())
	plus := newElement("text")
	plus.X, plus.Y = cb.Center().X, cb.Center().Y+4
	plus.ClassName = "connect-plus"
	plus.Style = "text-anchor:middle"
	plus.Content = "+"
	sb.WriteString(plus.render())

	for i, c := range t.Columns {
		rowTop := box.TopLeft.Y + nvgeom.HeaderHeight + float64(i)*nvgeom.RowHeight
		sb.WriteString(column(box, rowTop, i, c, layout, theme))
	}

	g.Content = sb.String()
	buf.WriteString(g.render())
}

func column(box *geo.Box, rowTop float64, i int, c *nvschema.Column, layout nvgeom.Layout, theme *nvthemes.Theme) string {
	var sb strings.Builder
	baseline := rowTop + 16

	row := newElement("g")
	row.ClassName = "column"
	row.Data = map[string]string{"column": c.Name}

	if c.Note != "" {
		sb.WriteString("<title>" + escape(c.Note) + "</title>")
	}
	if i > 0 {
		sep := newElement("line")
		sep.X1, sep.Y1 = box.TopLeft.X, rowTop
		sep.X2, sep.Y2 = box.Right(), rowTop
		sep.Stroke = theme.Colors.Border
		sep.StrokeWidth = 0.5
		sb.WriteString(sep.render())
	}

	var badge, badgeClass string
	switch {
	case c.PK:
		badge, badgeClass = "PK", "badge badge-pk"
	case c.FK:
		badge, badgeClass = "FK", "badge badge-fk"
	}
	if badge != "" {
		b := newElement("text")
		b.X, b.Y = box.TopLeft.X+8, baseline
		b.ClassName = badgeClass
		b.Content = badge
		sb.WriteString(b.render())
	}

	name := newElement("text")
	name.X, name.Y = box.TopLeft.X+nvgeom.NameOffset, baseline
	name.ClassName = "column-name"
	name.Content = escape(c.Name)
	if c.NotNull && !c.PK {
		name.Content += "*"
	}
	sb.WriteString(name.render())

	typ := newElement("text")
	typ.X, typ.Y = box.TopLeft.X+layout.TypeX, baseline
	typ.ClassName = "column-type"
	typ.Content = escape(c.Type)
	sb.WriteString(typ.render())

	row.Content = sb.String()
	return row.render()
}
