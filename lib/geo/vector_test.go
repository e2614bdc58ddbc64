package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtendHorizontalLineSegment(t *testing.T) {
	p1 := &Point{0, 0}
	p2 := &Point{1, 0}

	v := p1.VectorTo(p2)
	v = v.Multiply(1.5)
	p2New := p1.AddVector(v)
	assert.Equal(t, Point{1.5, 0}, *p2New)

	v = p2.VectorTo(p1)
	v = v.Multiply(1.5)
	p1New := p2.AddVector(v)
	assert.Equal(t, Point{-0.5, 0}, *p1New)
}

func TestUnit(t *testing.T) {
	assert.Equal(t, Vector{0.6, 0.8}, NewVector(3, 4).Unit())
	assert.Equal(t, Vector{0, -1}, NewVector(0, -7).Unit())
}

func TestUnitZero(t *testing.T) {
	assert.Equal(t, Vector{1, 0}, NewVector(0, 0).Unit())
}

func TestLeftNormal(t *testing.T) {
	assert.Equal(t, Vector{0, 1}, NewVector(1, 0).LeftNormal())
	assert.Equal(t, Vector{-1, 0}, NewVector(0, 1).LeftNormal())
}
