// Package nvgeom computes table boxes, ports and orthogonal connector paths.
//
// Every function is pure: it reads tables and returns new values.
package nvgeom

import (
	"math"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/nvschema"
)

const (
	DefaultWidth = 220.
	HeaderHeight = 42.
	RowHeight    = 24.
	BodyPadding  = 4.

	// AnchorInset keeps top and bottom ports away from the corners.
	AnchorInset = 20.
	LaneStep    = 10.
)

// Options are the tunable parameters of side selection and path shaping.
type Options struct {
	// GapThreshold is the box gap beyond which an axis is preferred outright.
	GapThreshold float64
	// OverlapTolerance is how deep boxes may overlap on an axis before the
	// axis stops being preferred by dominance.
	OverlapTolerance float64
	// DominanceRatio scales the other axis delta when comparing dominance.
	DominanceRatio float64
	// Clearance is how far a path leaves its port before turning.
	Clearance float64
	// SelfLoop is how far self references loop out of the table.
	SelfLoop float64
}

var DefaultOptions = Options{
	GapThreshold:     20,
	OverlapTolerance: 40,
	DominanceRatio:   0.8,
	Clearance:        22,
	SelfLoop:         64,
}

func opts(o *Options) *Options {
	if o == nil {
		return &DefaultOptions
	}
	return o
}

// Dimensions returns the measured width (or DefaultWidth) and the height
// implied by the column count.
func Dimensions(t *nvschema.Table) (w, h float64) {
	w = t.Width
	if w <= 0 {
		w = DefaultWidth
	}
	h = HeaderHeight + float64(len(t.Columns))*RowHeight + BodyPadding
	return w, h
}

func Box(t *nvschema.Table) *geo.Box {
	w, h := Dimensions(t)
	return geo.NewBox(geo.NewPoint(t.X, t.Y), w, h)
}

func Center(t *nvschema.Table) *geo.Point {
	return Box(t).Center()
}

// Anchor returns the port of column colIndex on side. On left and right the
// port sits at the row's vertical center, clamped to the body. On top and
// bottom ports are spread evenly across the width by column index.
func Anchor(t *nvschema.Table, colIndex int, side geo.Side) *geo.Point {
	w, h := Dimensions(t)
	if colIndex < 0 {
		colIndex = 0
	}

	switch side {
	case geo.Left, geo.Right:
		rowY := t.Y + HeaderHeight + float64(colIndex)*RowHeight + RowHeight/2
		minY := t.Y + HeaderHeight + RowHeight/2
		maxY := t.Y + h - RowHeight/2 - 2
		rowY = geo.Clamp(rowY, minY, maxY)
		if side == geo.Left {
			return geo.NewPoint(t.X, rowY)
		}
		return geo.NewPoint(t.X+w, rowY)
	}

	n := math.Max(1, float64(len(t.Columns)))
	ratio := geo.Clamp((float64(colIndex)+0.5)/n, 0, 1)
	minX := t.X + AnchorInset
	maxX := t.X + w - AnchorInset
	x := minX + (maxX-minX)*ratio
	if side == geo.Top {
		return geo.NewPoint(x, t.Y)
	}
	return geo.NewPoint(x, t.Y+h)
}

// BoundaryAnchor is the midpoint of side.
func BoundaryAnchor(t *nvschema.Table, side geo.Side) *geo.Point {
	w, h := Dimensions(t)
	switch side {
	case geo.Left:
		return geo.NewPoint(t.X, t.Y+h/2)
	case geo.Right:
		return geo.NewPoint(t.X+w, t.Y+h/2)
	case geo.Top:
		return geo.NewPoint(t.X+w/2, t.Y)
	default:
		return geo.NewPoint(t.X+w/2, t.Y+h)
	}
}

// ChooseSideToPoint picks the side of t facing p along the dominant axis.
func ChooseSideToPoint(t *nvschema.Table, p *geo.Point) geo.Side {
	c := Center(t)
	dx := p.X - c.X
	dy := p.Y - c.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return geo.Right
		}
		return geo.Left
	}
	if dy >= 0 {
		return geo.Bottom
	}
	return geo.Top
}

// ChooseSides decides which sides a relationship leaves from and enters.
// Self references always go right to top.
func ChooseSides(from, to *nvschema.Table, o *Options) (fromSide, toSide geo.Side) {
	o = opts(o)
	if from.Name == to.Name {
		return geo.Right, geo.Top
	}

	fw, fh := Dimensions(from)
	tw, th := Dimensions(to)
	fc := Center(from)
	tc := Center(to)
	dx := tc.X - fc.X
	dy := tc.Y - fc.Y

	var hGap, vGap float64
	if dx >= 0 {
		hGap = to.X - (from.X + fw)
	} else {
		hGap = from.X - (to.X + tw)
	}
	if dy >= 0 {
		vGap = to.Y - (from.Y + fh)
	} else {
		vGap = from.Y - (to.Y + th)
	}

	preferH := hGap > o.GapThreshold || (math.Abs(dx) >= math.Abs(dy)*o.DominanceRatio && hGap > -o.OverlapTolerance)
	preferV := vGap > o.GapThreshold || (math.Abs(dy) > math.Abs(dx)*o.DominanceRatio && vGap > -o.OverlapTolerance)

	horizontal := math.Abs(dx) >= math.Abs(dy)
	if preferH != preferV {
		horizontal = preferH
	}

	switch {
	case horizontal && dx >= 0:
		fromSide = geo.Right
	case horizontal:
		fromSide = geo.Left
	case dy >= 0:
		fromSide = geo.Bottom
	default:
		fromSide = geo.Top
	}
	return fromSide, fromSide.GetOpposite()
}

// LaneOffset centers count lanes around the port, step apart.
func LaneOffset(index, count int, step float64) float64 {
	if count <= 1 {
		return 0
	}
	return (float64(index) - float64(count-1)/2) * step
}

// OffsetAlongSide moves p along the tangent of side.
func OffsetAlongSide(p *geo.Point, side geo.Side, distance float64) *geo.Point {
	return p.AddVector(side.Tangent().Multiply(distance))
}

// OffsetAlongNormal moves p outward from side.
func OffsetAlongNormal(p *geo.Point, side geo.Side, distance float64) *geo.Point {
	return p.AddVector(side.Normal().Multiply(distance))
}

// LabelAnchor is the SVG text-anchor suited to a label next to side.
func LabelAnchor(side geo.Side) string {
	switch side {
	case geo.Left:
		return "end"
	case geo.Right:
		return "start"
	default:
		return "middle"
	}
}

// TableAt returns the topmost table whose box contains p, or nil.
func TableAt(tables []*nvschema.Table, p *geo.Point) *nvschema.Table {
	for i := len(tables) - 1; i >= 0; i-- {
		if Box(tables[i]).Contains(p) {
			return tables[i]
		}
	}
	return nil
}

// Overlaps reports whether a and b intersect once each is grown by pad on
// every side.
func Overlaps(a, b *nvschema.Table, pad float64) bool {
	return Box(a).Pad(pad).Intersects(Box(b).Pad(pad))
}

// Bounds returns the box enclosing every table, or nil if there are none.
func Bounds(tables []*nvschema.Table) *geo.Box {
	if len(tables) == 0 {
		return nil
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, t := range tables {
		b := Box(t)
		minX = math.Min(minX, b.TopLeft.X)
		minY = math.Min(minY, b.TopLeft.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	return geo.NewBox(geo.NewPoint(minX, minY), maxX-minX, maxY-minY)
}

// ConnectSize is the side of the square connect affordance drawn at the
// right end of every header.
const ConnectSize = 24.

// ConnectBox is the connect affordance of t. Pressing it starts a new
// relationship.
func ConnectBox(t *nvschema.Table) *geo.Box {
	w, _ := Dimensions(t)
	inset := (HeaderHeight - ConnectSize) / 2
	return geo.NewBox(geo.NewPoint(t.X+w-inset-ConnectSize, t.Y+inset), ConnectSize, ConnectSize)
}

// HeaderBox is the header strip of t.
func HeaderBox(t *nvschema.Table) *geo.Box {
	w, _ := Dimensions(t)
	return geo.NewBox(geo.NewPoint(t.X, t.Y), w, HeaderHeight)
}
