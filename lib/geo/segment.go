package geo

import "fmt"

// Segment is a straight line from Start to End. Routes are made of them and
// cardinality bars are drawn as them.
type Segment struct {
	Start *Point
	End   *Point
}

func NewSegment(from, to *Point) Segment {
	return Segment{Start: from, End: to}
}

func (s Segment) ToString() string {
	return fmt.Sprintf("%v -> %v", s.Start.ToString(), s.End.ToString())
}

func (s Segment) Length() float64 {
	return EuclideanDistance(s.Start.X, s.Start.Y, s.End.X, s.End.Y)
}

// IsAxisAligned reports whether the segment is horizontal or vertical.
func (s Segment) IsAxisAligned() bool {
	return s.Start.X == s.End.X || s.Start.Y == s.End.Y
}
