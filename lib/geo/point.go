package geo

import (
	"fmt"
	"math"
	"strings"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

func (p1 *Point) Equals(p2 *Point) bool {
	if p1 == nil {
		return p2 == nil
	} else if p2 == nil {
		return false
	}
	return (p1.X == p2.X) && (p1.Y == p2.Y)
}

// Near reports whether both coordinates are within eps of each other.
func (p1 *Point) Near(p2 *Point, eps float64) bool {
	return PrecisionCompare(p1.X, p2.X, eps) == 0 && PrecisionCompare(p1.Y, p2.Y, eps) == 0
}

func (p *Point) Copy() *Point {
	return &Point{X: p.X, Y: p.Y}
}

func (p *Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Round returns p with both coordinates rounded to 2 decimal places.
func (p *Point) Round() *Point {
	return NewPoint(Round2(p.X), Round2(p.Y))
}

type Points []*Point

func (ps Points) Equals(other Points) bool {
	if len(ps) != len(other) {
		return false
	}
	for i := range ps {
		if !ps[i].Equals(other[i]) {
			return false
		}
	}
	return true
}

func (p *Point) ToString() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

func (points Points) ToString() string {
	strs := make([]string, 0, len(points))
	for _, p := range points {
		strs = append(strs, p.ToString())
	}
	return strings.Join(strs, ", ")
}

func (start *Point) AddVector(v Vector) *Point {
	return start.ToVector().Add(v).ToPoint()
}

func (start *Point) VectorTo(endpoint *Point) Vector {
	return endpoint.ToVector().Minus(start.ToVector())
}

func (endpoint *Point) ToVector() Vector {
	return []float64{endpoint.X, endpoint.Y}
}

// Transpose swaps X and Y.
func (p *Point) Transpose() *Point {
	if p == nil {
		return nil
	}
	return NewPoint(p.Y, p.X)
}

// Interpolate returns the point t of the way from a to b.
func (a *Point) Interpolate(b *Point, t float64) *Point {
	return NewPoint(
		a.X*(1.0-t)+b.X*t,
		a.Y*(1.0-t)+b.Y*t,
	)
}

// ManhattanDistance is the axis-aligned travel distance between two points.
func (a *Point) ManhattanDistance(b *Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}
