package nvgeom

import (
	"math"

	"oss.terrastruct.com/navani/lib/geo"
)

// simplifyEpsilon is the distance under which two route points are the same.
const simplifyEpsilon = 0.1

// OrthogonalPolyline routes an axis-aligned path from start to end. The path
// leaves start along the normal of fromSide and enters end along the normal
// of toSide, each for Clearance before turning.
//
// Self references loop SelfLoop beyond the departure side, travel across
// and come back down into the entry side.
func OrthogonalPolyline(start, end *geo.Point, fromSide, toSide geo.Side, self bool, o *Options) geo.Route {
	o = opts(o)

	fromNormal := fromSide.Normal()
	startOut := start.AddVector(fromNormal.Multiply(o.Clearance))
	endOut := end.AddVector(toSide.Normal().Multiply(o.Clearance))

	route := geo.Route{start, startOut}

	switch {
	case self && fromSide.IsHorizontal():
		outerX := startOut.X + fromNormal[0]*o.SelfLoop
		topY := math.Min(startOut.Y, endOut.Y) - o.SelfLoop
		route = append(route,
			geo.NewPoint(outerX, startOut.Y),
			geo.NewPoint(outerX, topY),
			geo.NewPoint(endOut.X, topY),
		)
	case self:
		outerY := startOut.Y + fromNormal[1]*o.SelfLoop
		rightX := math.Max(startOut.X, endOut.X) + o.SelfLoop
		route = append(route,
			geo.NewPoint(startOut.X, outerY),
			geo.NewPoint(rightX, outerY),
			geo.NewPoint(rightX, endOut.Y),
		)
	case fromSide.IsHorizontal() && toSide.IsHorizontal():
		midX := (startOut.X + endOut.X) / 2
		route = append(route,
			geo.NewPoint(midX, startOut.Y),
			geo.NewPoint(midX, endOut.Y),
		)
	case fromSide.IsVertical() && toSide.IsVertical():
		midY := (startOut.Y + endOut.Y) / 2
		route = append(route,
			geo.NewPoint(startOut.X, midY),
			geo.NewPoint(endOut.X, midY),
		)
	default:
		cornerA := geo.NewPoint(endOut.X, startOut.Y)
		cornerB := geo.NewPoint(startOut.X, endOut.Y)
		costA := startOut.ManhattanDistance(cornerA) + cornerA.ManhattanDistance(endOut)
		costB := startOut.ManhattanDistance(cornerB) + cornerB.ManhattanDistance(endOut)
		if costA <= costB {
			route = append(route, cornerA)
		} else {
			route = append(route, cornerB)
		}
	}

	route = append(route, endOut, end)
	return route.Simplify(simplifyEpsilon)
}
