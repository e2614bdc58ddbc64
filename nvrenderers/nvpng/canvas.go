package nvpng

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/lib/textmeasure"
)

// canvas draws in world coordinates onto an RGBA image. Image coordinates
// are (world + offset) * scale.
type canvas struct {
	img    *image.RGBA
	ruler  *textmeasure.Ruler
	scale  float64
	dx, dy float64
}

func (c *canvas) point(p *geo.Point) *geo.Point {
	return geo.NewPoint((p.X+c.dx)*c.scale, (p.Y+c.dy)*c.scale)
}

// fill paints the polygons in image coordinates. Polygons wound in opposite
// directions cut holes into each other.
func (c *canvas) fill(col color.Color, polys ...[]*geo.Point) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range polys {
		for _, p := range poly {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	r := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY))).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		ox, oy := float64(r.Min.X), float64(r.Min.Y)
		z.MoveTo(clip(poly[0].X-ox, r.Dx()), clip(poly[0].Y-oy, r.Dy()))
		for _, p := range poly[1:] {
			z.LineTo(clip(p.X-ox, r.Dx()), clip(p.Y-oy, r.Dy()))
		}
		z.ClosePath()
	}
	z.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

func clip(v float64, max int) float32 {
	return float32(geo.Clamp(v, 0, float64(max)))
}

func (c *canvas) fillRect(col color.Color, x, y, w, h float64) {
	c.fill(col, c.rect(x, y, w, h))
}

func (c *canvas) rect(x, y, w, h float64) []*geo.Point {
	return []*geo.Point{
		c.point(geo.NewPoint(x, y)),
		c.point(geo.NewPoint(x+w, y)),
		c.point(geo.NewPoint(x+w, y+h)),
		c.point(geo.NewPoint(x, y+h)),
	}
}

const cornerSteps = 6

// roundRect outlines a rectangle clockwise with top corners of radius rTop
// and bottom corners of radius rBottom.
func (c *canvas) roundRect(x, y, w, h, rTop, rBottom float64) []*geo.Point {
	var pts []*geo.Point
	corner := func(cx, cy, r, from float64) {
		if r <= 0 {
			pts = append(pts, c.point(geo.NewPoint(cx, cy)))
			return
		}
		for i := 0; i <= cornerSteps; i++ {
			a := from + float64(i)*(math.Pi/2)/cornerSteps
			pts = append(pts, c.point(geo.NewPoint(cx+r*math.Cos(a), cy+r*math.Sin(a))))
		}
	}
	// Angles grow clockwise since y points down.
	if rTop > 0 {
		corner(x+rTop, y+rTop, rTop, math.Pi)
		corner(x+w-rTop, y+rTop, rTop, -math.Pi/2)
	} else {
		corner(x, y, 0, 0)
		corner(x+w, y, 0, 0)
	}
	if rBottom > 0 {
		corner(x+w-rBottom, y+h-rBottom, rBottom, 0)
		corner(x+rBottom, y+h-rBottom, rBottom, math.Pi/2)
	} else {
		corner(x+w, y+h, 0, 0)
		corner(x, y+h, 0, 0)
	}
	return pts
}

func reversed(pts []*geo.Point) []*geo.Point {
	out := make([]*geo.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// strokeRoundRect draws a border of width lw centered on the outline.
func (c *canvas) strokeRoundRect(col color.Color, x, y, w, h, r, lw float64) {
	half := lw / 2
	outer := c.roundRect(x-half, y-half, w+lw, h+lw, r+half, r+half)
	inner := c.roundRect(x+half, y+half, w-lw, h-lw, math.Max(0, r-half), math.Max(0, r-half))
	c.fill(col, outer, reversed(inner))
}

// segment is a quad of width lw around a-b, extended by lw/2 at both ends.
func (c *canvas) segment(a, b *geo.Point, lw float64) []*geo.Point {
	a, b = c.point(a), c.point(b)
	v := a.VectorTo(b)
	if v.Length() == 0 {
		return nil
	}
	half := lw * c.scale / 2
	d := v.Unit().Multiply(half)
	n := v.Unit().LeftNormal().Multiply(half)
	a = a.AddVector(d.Multiply(-1))
	b = b.AddVector(d)
	return []*geo.Point{
		a.AddVector(n),
		b.AddVector(n),
		b.AddVector(n.Multiply(-1)),
		a.AddVector(n.Multiply(-1)),
	}
}

func (c *canvas) line(col color.Color, a, b *geo.Point, lw float64) {
	if quad := c.segment(a, b, lw); quad != nil {
		c.fill(col, quad)
	}
}

// polyline strokes route. A non-empty dash pattern alternates drawn and
// skipped lengths along the whole route.
func (c *canvas) polyline(col color.Color, route geo.Route, lw float64, dash []float64) {
	var quads [][]*geo.Point
	add := func(a, b *geo.Point) {
		if quad := c.segment(a, b, lw); quad != nil {
			quads = append(quads, quad)
		}
	}

	if len(dash) == 0 {
		for _, s := range route.Segments() {
			add(s.Start, s.End)
		}
	} else {
		di, left, on := 0, dash[0], true
		for _, s := range route.Segments() {
			l := s.Length()
			pos := 0.
			for pos < l {
				step := math.Min(left, l-pos)
				if on {
					add(s.Start.Interpolate(s.End, pos/l), s.Start.Interpolate(s.End, (pos+step)/l))
				}
				pos += step
				left -= step
				if left <= 0 {
					di = (di + 1) % len(dash)
					left = dash[di]
					on = !on
				}
			}
		}
	}
	if len(quads) > 0 {
		c.fill(col, quads...)
	}
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

func alignOf(anchor string) align {
	switch anchor {
	case "end":
		return alignRight
	case "middle":
		return alignCenter
	default:
		return alignLeft
	}
}

// text draws s with its baseline at world y.
func (c *canvas) text(col color.Color, f textmeasure.Font, s string, x, y float64, a align) {
	if s == "" {
		return
	}
	f.Size = int(math.Round(float64(f.Size) * c.scale))
	face := c.ruler.Face(f)
	p := c.point(geo.NewPoint(x, y))
	switch a {
	case alignCenter:
		w, _ := c.ruler.MeasurePrecise(f, s)
		p.X -= w / 2
	case alignRight:
		w, _ := c.ruler.MeasurePrecise(f, s)
		p.X -= w
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)},
	}
	d.DrawString(s)
}
