package geo

import (
	"fmt"
	"math"
	"strings"
)

type Route []*Point

func (route Route) Length() float64 {
	l := 0.
	for _, seg := range route.Segments() {
		l += seg.Length()
	}
	return l
}

const minSegmentLength = 0.0001

// PointAndDirectionAtDistance returns the point at distance along the route
// together with the unit direction of the segment it lies on.
// distance is clamped to [0, Length]. A route with fewer than 2 points
// returns its only point (or the origin) heading along +x.
func (route Route) PointAndDirectionAtDistance(distance float64) (*Point, Vector) {
	if len(route) < 2 {
		if len(route) == 1 {
			return route[0].Copy(), NewVector(1, 0)
		}
		return NewPoint(0, 0), NewVector(1, 0)
	}

	total := route.Length()
	remaining := Clamp(distance, 0, total)
	for _, seg := range route.Segments() {
		length := seg.Length()
		if length < minSegmentLength {
			continue
		}
		if remaining <= length {
			return seg.Start.Interpolate(seg.End, remaining/length), seg.Start.VectorTo(seg.End).Unit()
		}
		remaining -= length
	}

	last := route[len(route)-1]
	prev := route[len(route)-2]
	return last.Copy(), prev.VectorTo(last).Unit()
}

// Simplify drops non-finite points, rounds the rest to 2 decimals, skips
// points within eps of their predecessor and collapses axis-aligned
// colinear runs down to their endpoints.
func (route Route) Simplify(eps float64) Route {
	out := make(Route, 0, len(route))
	for _, p := range route {
		if p == nil || !p.IsFinite() {
			continue
		}
		p = p.Round()
		if len(out) > 0 && out[len(out)-1].Near(p, eps) {
			continue
		}
		out = append(out, p)

		for len(out) >= 3 {
			a, b, c := out[len(out)-3], out[len(out)-2], out[len(out)-1]
			sameX := math.Abs(a.X-b.X) < eps && math.Abs(b.X-c.X) < eps
			sameY := math.Abs(a.Y-b.Y) < eps && math.Abs(b.Y-c.Y) < eps
			if !sameX && !sameY {
				break
			}
			out = append(out[:len(out)-2], c)
		}
	}
	return out
}

// Segments returns the consecutive segments of the route.
func (route Route) Segments() []Segment {
	var segs []Segment
	for i := 0; i < len(route)-1; i++ {
		segs = append(segs, NewSegment(route[i], route[i+1]))
	}
	return segs
}

func (route Route) GetBoundingBox() (tl, br *Point) {
	minX := math.Inf(1)
	minY := math.Inf(1)
	maxX := math.Inf(-1)
	maxY := math.Inf(-1)

	for _, p := range route {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return NewPoint(minX, minY), NewPoint(maxX, maxY)
}

// SVGPath renders the route as an SVG path with absolute line commands.
func (route Route) SVGPath() string {
	if len(route) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "M %.2f %.2f", route[0].X, route[0].Y)
	for _, p := range route[1:] {
		fmt.Fprintf(&sb, " L %.2f %.2f", p.X, p.Y)
	}
	return sb.String()
}
