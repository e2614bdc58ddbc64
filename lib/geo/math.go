package geo

import "math"

// EuclideanDistance is exact for axis-aligned pairs, which is every segment
// of an orthogonal route.
func EuclideanDistance(x1, y1, x2, y2 float64) float64 {
	switch {
	case x1 == x2:
		return math.Abs(y1 - y2)
	case y1 == y2:
		return math.Abs(x1 - x2)
	}
	return math.Hypot(x1-x2, y1-y2)
}

// PrecisionCompare orders a and b, treating them as equal when they are
// less than e apart.
func PrecisionCompare(a, b, e float64) int {
	if math.Abs(a-b) < e {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// Round2 rounds to 2 decimal places so routes are stable across machines.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func Clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
