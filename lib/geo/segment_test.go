package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	t.Parallel()

	horizontal := NewSegment(NewPoint(0, 10), NewPoint(40, 10))
	assert.True(t, horizontal.IsAxisAligned())
	assert.Equal(t, 40., horizontal.Length())

	diagonal := NewSegment(NewPoint(0, 0), NewPoint(30, 40))
	assert.False(t, diagonal.IsAxisAligned())
	assert.Equal(t, 50., diagonal.Length())
	assert.Equal(t, "(0, 0) -> (30, 40)", diagonal.ToString())
}
