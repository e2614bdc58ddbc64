package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideVectors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		side    Side
		normal  Vector
		tangent Vector
	}{
		{Left, Vector{-1, 0}, Vector{0, 1}},
		{Right, Vector{1, 0}, Vector{0, 1}},
		{Top, Vector{0, -1}, Vector{1, 0}},
		{Bottom, Vector{0, 1}, Vector{1, 0}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.side.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.normal, tc.side.Normal())
			assert.Equal(t, tc.tangent, tc.side.Tangent())
			assert.Equal(t, tc.side, tc.side.GetOpposite().GetOpposite())
		})
	}
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("bottom")
	require.NoError(t, err)
	assert.Equal(t, Bottom, s)

	_, err = ParseSide("diagonal")
	assert.Error(t, err)

	b, err := Top.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "top", string(b))
}
