package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteLength(t *testing.T) {
	r := Route{NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 5)}
	assert.Equal(t, 15.0, r.Length())
	assert.Equal(t, 0.0, Route{}.Length())
}

func TestPointAndDirectionAtDistance(t *testing.T) {
	t.Parallel()

	r := Route{NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10)}

	testCases := []struct {
		name     string
		route    Route
		distance float64
		exp      Point
		expDir   Vector
	}{
		{"mid first segment", r, 5, Point{5, 0}, Vector{1, 0}},
		{"on second segment", r, 15, Point{10, 5}, Vector{0, 1}},
		{"negative clamps to start", r, -3, Point{0, 0}, Vector{1, 0}},
		{"past the end clamps", r, 99, Point{10, 10}, Vector{0, 1}},
		{"single point", Route{NewPoint(3, 4)}, 10, Point{3, 4}, Vector{1, 0}},
		{"empty", Route{}, 10, Point{0, 0}, Vector{1, 0}},
		{"zero length segments skipped", Route{NewPoint(1, 1), NewPoint(1, 1), NewPoint(1, 5)}, 2, Point{1, 3}, Vector{0, 1}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, dir := tc.route.PointAndDirectionAtDistance(tc.distance)
			assert.Equal(t, tc.exp, *p)
			assert.Equal(t, tc.expDir, dir)
		})
	}
}

func TestSimplify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   Route
		exp  Route
	}{
		{
			name: "drops duplicates",
			in:   Route{NewPoint(0, 0), NewPoint(0.05, 0), NewPoint(10, 0), NewPoint(10, 10)},
			exp:  Route{NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10)},
		},
		{
			name: "collapses colinear runs",
			in:   Route{NewPoint(0, 0), NewPoint(5, 0), NewPoint(8, 0), NewPoint(10, 0), NewPoint(10, 10)},
			exp:  Route{NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10)},
		},
		{
			name: "skips non-finite",
			in:   Route{NewPoint(0, 0), NewPoint(math.NaN(), 3), NewPoint(0, 10)},
			exp:  Route{NewPoint(0, 0), NewPoint(0, 10)},
		},
		{
			name: "rounds",
			in:   Route{NewPoint(0.123, 0.456), NewPoint(5.556, 9.999)},
			exp:  Route{NewPoint(0.12, 0.46), NewPoint(5.56, 10)},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.in.Simplify(0.1)
			assert.True(t, Points(got).Equals(Points(tc.exp)), "got %s", Points(got).ToString())
		})
	}
}

func TestSVGPath(t *testing.T) {
	r := Route{NewPoint(0, 0), NewPoint(10.5, 0)}
	assert.Equal(t, "M 0.00 0.00 L 10.50 0.00", r.SVGPath())
	assert.Equal(t, "", Route{}.SVGPath())
}
