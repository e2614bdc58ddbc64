package geo

import "fmt"

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

// BoxFromCorners normalizes two arbitrary corners into a box.
func BoxFromCorners(a, b *Point) *Box {
	tl := NewPoint(minf(a.X, b.X), minf(a.Y, b.Y))
	return NewBox(tl, absf(a.X-b.X), absf(a.Y-b.Y))
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.TopLeft.Copy(), b.Width, b.Height)
}

func (b *Box) Center() *Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

func (b *Box) Right() float64 {
	return b.TopLeft.X + b.Width
}

func (b *Box) Bottom() float64 {
	return b.TopLeft.Y + b.Height
}

// Contains is inclusive on every edge.
func (b *Box) Contains(p *Point) bool {
	return p.X >= b.TopLeft.X && p.X <= b.Right() && p.Y >= b.TopLeft.Y && p.Y <= b.Bottom()
}

// Pad grows the box by pad on every side.
func (b *Box) Pad(pad float64) *Box {
	return NewBox(NewPoint(b.TopLeft.X-pad, b.TopLeft.Y-pad), b.Width+2*pad, b.Height+2*pad)
}

// Overlap returns the penetration depth on each axis. Both are positive only
// when the boxes intersect.
func (b *Box) Overlap(o *Box) (x, y float64) {
	x = minf(b.Right(), o.Right()) - maxf(b.TopLeft.X, o.TopLeft.X)
	y = minf(b.Bottom(), o.Bottom()) - maxf(b.TopLeft.Y, o.TopLeft.Y)
	return x, y
}

// Intersects reports whether the interiors of two boxes intersect.
func (b *Box) Intersects(o *Box) bool {
	x, y := b.Overlap(o)
	return x > 0 && y > 0
}

// Touches is Intersects including shared edges.
func (b *Box) Touches(o *Box) bool {
	return b.TopLeft.X <= o.Right() && b.Right() >= o.TopLeft.X &&
		b.TopLeft.Y <= o.Bottom() && b.Bottom() >= o.TopLeft.Y
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{TopLeft: %s, Width: %.0f, Height: %.0f}", b.TopLeft.ToString(), b.Width, b.Height)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absf(a float64) float64 {
	if a < 0 {
		return -a
	}
	return a
}
