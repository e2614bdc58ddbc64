// Package nvrouter turns the relationships of a schema into drawable
// connectors: paths, cardinality bars, column labels and midpoint text.
//
// Both renderers draw exclusively from Route output so an SVG and a PNG of the
// same schema agree on every point.
package nvrouter

import (
	"fmt"
	"math"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvschema"
)

type Options struct {
	// LaneStep separates parallel connectors sharing a port.
	LaneStep float64
	// MarkerGap is how far the path starts from the table edge, leaving
	// room for the cardinality bars.
	MarkerGap float64
	// BarDistance is where bars sit from the endpoint.
	BarDistance float64
	// BarHalfLength is half the length of a single bar.
	BarHalfLength float64
	// ManyBarOffset spreads the two bars of a "many" end.
	ManyBarOffset float64
	LabelNormal   float64
	LabelTangent  float64
	// MidLabelOffset lifts the cardinality text off the path.
	MidLabelOffset float64

	Geometry *nvgeom.Options
}

var DefaultOptions = Options{
	LaneStep:       nvgeom.LaneStep,
	MarkerGap:      28,
	BarDistance:    10,
	BarHalfLength:  7,
	ManyBarOffset:  4,
	LabelNormal:    26,
	LabelTangent:   10,
	MidLabelOffset: 12,
}

func opts(o *Options) *Options {
	if o == nil {
		return &DefaultOptions
	}
	return o
}

type Label struct {
	Point *geo.Point
	Text  string
	// Anchor is an SVG text-anchor: start, middle or end.
	Anchor string
}

// End is one side of a routed relationship.
type End struct {
	Table  string
	Column string
	Side   geo.Side
	// Port is the lane-adjusted point on the table edge.
	Port *geo.Point
	// One is true when each row on the other end matches at most one row
	// here.
	One   bool
	Bars  []geo.Segment
	Label Label
}

type Routed struct {
	Relationship *nvschema.Relationship
	From         End
	To           End
	// Path starts and ends MarkerGap away from the ports.
	Path geo.Route
	// Optional is true when the source column accepts NULL.
	Optional bool
	Self     bool
	// Cardinality is the midpoint text, e.g. "0..N:1".
	Cardinality Label
}

// Touches reports whether the connector should highlight while table is
// hovered.
func (r *Routed) Touches(table string) bool {
	return table != "" && (r.From.Table == table || r.To.Table == table)
}

type port struct {
	table  string
	column string
	side   geo.Side
}

func (p port) key() string {
	return fmt.Sprintf("%s:%s:%s", p.table, p.column, p.side)
}

type resolved struct {
	rel      *nvschema.Relationship
	fromT    *nvschema.Table
	fromC    *nvschema.Column
	toT      *nvschema.Table
	toC      *nvschema.Column
	fromSide geo.Side
	toSide   geo.Side
}

// Route lays out every resolvable relationship of s in relationship order.
// Relationships with a missing table or column are dropped.
func Route(s *nvschema.Schema, o *Options) []*Routed {
	o = opts(o)

	var rs []resolved
	counts := make(map[string]int)
	for _, r := range s.Relationships {
		fromT, fromC, toT, toC, ok := s.Resolve(r)
		if !ok {
			continue
		}
		fromSide, toSide := nvgeom.ChooseSides(fromT, toT, o.Geometry)
		rs = append(rs, resolved{
			rel:      r,
			fromT:    fromT,
			fromC:    fromC,
			toT:      toT,
			toC:      toC,
			fromSide: fromSide,
			toSide:   toSide,
		})
		counts[port{r.FromTable, r.FromColumn, fromSide}.key()]++
		counts[port{r.ToTable, r.ToColumn, toSide}.key()]++
	}

	next := make(map[string]int)
	lane := func(p port, anchor *geo.Point) *geo.Point {
		k := p.key()
		idx := next[k]
		next[k]++
		return nvgeom.OffsetAlongSide(anchor, p.side, nvgeom.LaneOffset(idx, counts[k], o.LaneStep))
	}

	routed := make([]*Routed, 0, len(rs))
	for _, r := range rs {
		fromAnchor := nvgeom.Anchor(r.fromT, r.fromT.ColumnIndex(r.fromC.Name), r.fromSide)
		toAnchor := nvgeom.Anchor(r.toT, r.toT.ColumnIndex(r.toC.Name), r.toSide)
		fromPort := lane(port{r.rel.FromTable, r.rel.FromColumn, r.fromSide}, fromAnchor)
		toPort := lane(port{r.rel.ToTable, r.rel.ToColumn, r.toSide}, toAnchor)

		self := r.rel.IsSelf()
		path := nvgeom.OrthogonalPolyline(
			nvgeom.OffsetAlongNormal(fromPort, r.fromSide, o.MarkerGap),
			nvgeom.OffsetAlongNormal(toPort, r.toSide, o.MarkerGap),
			r.fromSide, r.toSide, self, o.Geometry,
		)

		rt := &Routed{
			Relationship: r.rel,
			From:         newEnd(r.rel.FromTable, r.rel.FromColumn, r.fromSide, fromPort, r.fromC.One(), o),
			To:           newEnd(r.rel.ToTable, r.rel.ToColumn, r.toSide, toPort, r.toC.One(), o),
			Path:         path,
			Optional:     !r.fromC.NotNull,
			Self:         self,
		}
		rt.Cardinality = midLabel(path, CardinalityText(r.fromC, r.toC), o)
		routed = append(routed, rt)
	}
	return routed
}

func newEnd(table, column string, side geo.Side, p *geo.Point, one bool, o *Options) End {
	normal := side.Normal()
	barAt := p.AddVector(normal.Multiply(o.BarDistance))
	labelAt := p.AddVector(normal.Multiply(o.LabelNormal)).AddVector(side.Tangent().Multiply(o.LabelTangent))
	return End{
		Table:  table,
		Column: column,
		Side:   side,
		Port:   p,
		One:    one,
		Bars:   Bars(barAt, normal, one, o),
		Label: Label{
			Point:  labelAt,
			Text:   column,
			Anchor: nvgeom.LabelAnchor(side),
		},
	}
}

func midLabel(path geo.Route, text string, o *Options) Label {
	p, dir := path.PointAndDirectionAtDistance(path.Length() / 2)
	n := dir.LeftNormal().Unit()
	return Label{
		Point:  p.AddVector(n.Multiply(o.MidLabelOffset)),
		Text:   text,
		Anchor: "middle",
	}
}

// Bars returns the cardinality marks centered on p and crossing dir: one bar
// for a "one" end, two for a "many" end.
func Bars(p *geo.Point, dir geo.Vector, one bool, o *Options) []geo.Segment {
	o = opts(o)
	dir = dir.Unit()
	across := dir.LeftNormal()

	offsets := []float64{0}
	if !one {
		offsets = []float64{-o.ManyBarOffset, o.ManyBarOffset}
	}
	bars := make([]geo.Segment, 0, len(offsets))
	for _, off := range offsets {
		c := p.AddVector(dir.Multiply(off))
		bars = append(bars, geo.NewSegment(
			c.AddVector(across.Multiply(-o.BarHalfLength)),
			c.AddVector(across.Multiply(o.BarHalfLength)),
		))
	}
	return bars
}

// CardinalityText formats both ends as "from:to". The source reads 0..1 or
// 0..N when it accepts NULL.
func CardinalityText(from, to *nvschema.Column) string {
	fromText := "N"
	if from.One() {
		fromText = "1"
	}
	if from.Optional() {
		fromText = "0.." + fromText
	}
	toText := "N"
	if to.One() {
		toText = "1"
	}
	return fromText + ":" + toText
}

// Preview is the dashed connector shown while a relationship is dragged out.
type Preview struct {
	Path geo.Route
	// Active is true when the cursor is over a valid target table.
	Active bool
	// StartBars and EndBars are empty when the path is degenerate.
	StartBars []geo.Segment
	EndBars   []geo.Segment
}

const (
	previewStartGap = 18.
	previewEndGap   = 12.
	previewBarInset = 14.
)

// DraftPreview routes from the draft origin to the target table, or to the
// cursor when there is none. It returns nil when the draft has no cursor yet.
func DraftPreview(fromSide geo.Side, fromPoint, cursor *geo.Point, target *nvschema.Table, o *Options) *Preview {
	o = opts(o)
	if fromPoint == nil || cursor == nil {
		return nil
	}

	var toSide geo.Side
	var toPoint *geo.Point
	if target != nil {
		toSide = nvgeom.ChooseSideToPoint(target, fromPoint)
		toPoint = nvgeom.BoundaryAnchor(target, toSide)
	} else {
		toPoint = cursor
		dx := cursor.X - fromPoint.X
		dy := cursor.Y - fromPoint.Y
		heading := geo.Top
		switch {
		case math.Abs(dx) >= math.Abs(dy) && dx >= 0:
			heading = geo.Right
		case math.Abs(dx) >= math.Abs(dy):
			heading = geo.Left
		case dy >= 0:
			heading = geo.Bottom
		}
		toSide = heading.GetOpposite()
	}

	path := nvgeom.OrthogonalPolyline(
		nvgeom.OffsetAlongNormal(fromPoint, fromSide, previewStartGap),
		nvgeom.OffsetAlongNormal(toPoint, toSide, previewEndGap),
		fromSide, toSide, false, o.Geometry,
	)
	pv := &Preview{
		Path:   path,
		Active: target != nil,
	}
	if len(path) > 1 {
		l := path.Length()
		p, dir := path.PointAndDirectionAtDistance(previewBarInset)
		pv.StartBars = Bars(p, dir, true, o)
		p, dir = path.PointAndDirectionAtDistance(math.Max(0, l-previewBarInset))
		pv.EndBars = Bars(p, dir, false, o)
	}
	return pv
}

// Bounds is the world box covering every table and connector path, or nil
// for an empty schema.
func Bounds(s *nvschema.Schema, routed []*Routed) *geo.Box {
	b := nvgeom.Bounds(s.Tables)
	if b == nil {
		return nil
	}
	tl := b.TopLeft.Copy()
	br := geo.NewPoint(b.Right(), b.Bottom())
	for _, r := range routed {
		rtl, rbr := r.Path.GetBoundingBox()
		tl.X, tl.Y = math.Min(tl.X, rtl.X), math.Min(tl.Y, rtl.Y)
		br.X, br.Y = math.Max(br.X, rbr.X), math.Max(br.Y, rbr.Y)
	}
	return geo.BoxFromCorners(tl, br)
}
