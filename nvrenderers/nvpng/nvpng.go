// nvpng rasterises a diagram into a PNG with a title bar, the way it is
// exported for sharing as an image.
package nvpng

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stdcolor "image/color"
	"image/png"
	"math"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/navani/lib/color"
	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/lib/textmeasure"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvrenderers/nvthemes"
	"oss.terrastruct.com/navani/nvrouter"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

const (
	Pad            = 60.
	TitleBarHeight = 48.

	tableRadius = 6.
	lineWidth   = 1.6
	barWidth    = 2.
)

var ErrNoTables = errors.New("no tables to export")

var (
	titleFont = textmeasure.Font{Size: 16, Bold: true}
	metaFont  = textmeasure.Font{Size: 11}
	nameFont  = textmeasure.Font{Size: 13, Bold: true}
	iconFont  = textmeasure.Font{Size: 12, Bold: true}
	colFont   = textmeasure.Font{Size: 11}
	typeFont  = textmeasure.Font{Size: 10}
	smallFont = textmeasure.Font{Size: 9}
)

type RenderOpts struct {
	Theme *nvthemes.Theme
	// Scale multiplies the pixel size of the image. Defaults to 1.
	Scale  float64
	Router *nvrouter.Options
}

type palette struct {
	background, titleBar, border, text, muted, line, pk, fk stdcolor.RGBA
}

func newPalette(t *nvthemes.Theme) (p palette, err error) {
	for _, c := range []struct {
		dst *stdcolor.RGBA
		hex string
	}{
		{&p.background, t.Colors.Background},
		{&p.titleBar, t.Colors.Header},
		{&p.border, t.Colors.Border},
		{&p.text, t.Colors.Text},
		{&p.muted, t.Colors.Muted},
		{&p.line, t.Colors.Line},
		{&p.pk, t.Colors.PK},
		{&p.fk, t.Colors.FK},
	} {
		*c.dst, err = color.RGBA(c.hex)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

// Render draws every table and relationship of st. ruler provides the faces
// for text and the width of the type column; nil creates one.
func Render(st *nvstate.State, ruler *textmeasure.Ruler, opts *RenderOpts) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to render PNG")

	if len(st.Schema.Tables) == 0 {
		return nil, ErrNoTables
	}
	if ruler == nil {
		ruler, err = textmeasure.NewRuler()
		if err != nil {
			return nil, err
		}
	}
	if opts == nil {
		opts = &RenderOpts{}
	}
	theme := opts.Theme
	if theme == nil {
		theme = &nvthemes.Light
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	pal, err := newPalette(theme)
	if err != nil {
		return nil, err
	}

	routed := nvrouter.Route(st.Schema, opts.Router)
	bounds := nvrouter.Bounds(st.Schema, routed)
	w := bounds.Width + Pad*2
	h := bounds.Height + Pad*2 + TitleBarHeight

	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w*scale)), int(math.Ceil(h*scale)))),
		ruler: ruler,
		scale: scale,
	}
	c.fillRect(pal.background, 0, 0, w, h)

	c.fillRect(pal.titleBar, 0, 0, w, TitleBarHeight)
	c.fillRect(pal.border, 0, TitleBarHeight-1, w, 1)
	name := st.Name
	if name == "" {
		name = nvstate.DefaultName
	}
	c.text(pal.text, titleFont, name, Pad, TitleBarHeight/2+5, alignLeft)
	c.text(pal.muted, metaFont, fmt.Sprintf("%d tables · navani", len(st.Schema.Tables)), w-Pad, TitleBarHeight/2+4, alignRight)

	c.dx = Pad - bounds.TopLeft.X
	c.dy = Pad + TitleBarHeight - bounds.TopLeft.Y

	for _, r := range routed {
		drawRelationship(c, r, pal)
	}
	for _, t := range st.Schema.Tables {
		if err := drawTable(c, t, theme, pal); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, c.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawRelationship(c *canvas, r *nvrouter.Routed, pal palette) {
	var dash []float64
	if r.Optional {
		dash = []float64{8, 4}
	}
	c.polyline(pal.line, r.Path, lineWidth, dash)
	for _, end := range []nvrouter.End{r.From, r.To} {
		for _, b := range end.Bars {
			c.line(pal.line, b.Start, b.End, barWidth)
		}
		c.text(pal.muted, smallFont, end.Label.Text, end.Label.Point.X, end.Label.Point.Y+3, alignOf(end.Label.Anchor))
	}
	card := r.Cardinality
	c.text(pal.muted, smallFont, card.Text, card.Point.X, card.Point.Y+3, alignCenter)
}

func drawTable(c *canvas, t *nvschema.Table, theme *nvthemes.Theme, pal palette) error {
	box := nvgeom.Box(t)
	x, y, w, h := box.TopLeft.X, box.TopLeft.Y, box.Width, box.Height

	surface, err := color.RGBA(theme.Colors.Surface)
	if err != nil {
		return err
	}
	header, err := color.RGBA(theme.HeaderFill(t.Color))
	if err != nil {
		return err
	}

	c.fill(surface, c.roundRect(x, y, w, h, tableRadius, tableRadius))
	c.fill(header, c.roundRect(x, y, w, nvgeom.HeaderHeight, tableRadius, 0))
	c.strokeRoundRect(pal.border, x, y, w, h, tableRadius, 1)

	iconColor, err := color.RGBA(theme.IconFill(t.Color))
	if err != nil {
		return err
	}
	if t.Color != "" {
		accent, err := color.RGBA(t.Color)
		if err != nil {
			return err
		}
		c.line(accent, geo.NewPoint(x+0.5, y+tableRadius), geo.NewPoint(x+0.5, y+h-tableRadius), 3)
	}
	c.fillRect(pal.border, x, y+nvgeom.HeaderHeight-0.5, w, 1)

	c.text(iconColor, iconFont, nvschema.IconGlyph(t.IconOrDefault()), x+10, y+26, alignLeft)
	c.text(pal.text, nameFont, t.Name, x+nvgeom.NameOffset, y+26, alignLeft)

	layout := nvgeom.MeasureLayout(t, c.ruler)
	for i, col := range t.Columns {
		cy := y + nvgeom.HeaderHeight + 16 + float64(i)*nvgeom.RowHeight
		switch {
		case col.PK:
			c.text(pal.pk, smallFont, "PK", x+8, cy, alignLeft)
		case col.FK:
			c.text(pal.fk, smallFont, "FK", x+8, cy, alignLeft)
		}
		c.text(pal.text, colFont, col.Name, x+nvgeom.NameOffset, cy, alignLeft)
		c.text(pal.muted, typeFont, col.Type, x+layout.TypeX, cy, alignLeft)
	}
	return nil
}
