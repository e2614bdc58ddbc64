package geo

import (
	"math"
)

// A N-Dimensional Vector with components (x, y, z, ...) based on the origin
type Vector []float64

// New Vector from components
func NewVector(components ...float64) Vector {
	return components
}

func (a Vector) Add(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]+b[i])
	}
	return c
}

func (a Vector) Minus(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]-b[i])
	}
	return c
}

func (a Vector) Multiply(v float64) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]*v)
	}
	return c
}

func (a Vector) Length() float64 {
	sum := 0.0
	for _, comp := range a {
		sum += comp * comp
	}
	return math.Sqrt(sum)
}

// Unit returns a unit vector pointing in the same direction.
// The zero vector has no direction, so it normalizes to (1, 0).
func (a Vector) Unit() Vector {
	l := a.Length()
	if l == 0 || math.IsNaN(l) {
		return NewVector(1, 0)
	}
	c := []float64{}
	for _, comp := range a {
		c = append(c, comp/l)
	}
	return c
}

// LeftNormal rotates a 2D vector 90 degrees counter-clockwise in screen
// space, so (dx, dy) becomes (-dy, dx).
func (a Vector) LeftNormal() Vector {
	return NewVector(-a[1], a[0])
}

func (a Vector) ToPoint() *Point {
	return &Point{a[0], a[1]}
}
