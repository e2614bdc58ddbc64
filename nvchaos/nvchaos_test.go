package nvchaos_test

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/lib/textmeasure"
	"oss.terrastruct.com/navani/nvchaos"
	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvlib"
	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvrenderers/nvpng"
	"oss.terrastruct.com/navani/nvrenderers/nvsvg"
	"oss.terrastruct.com/navani/nvrouter"
)

// usage: NAVANI_CHAOS_N=500 NAVANI_CHAOS_MAXI=60 go test ./nvchaos
//
// NAVANI_CHAOS_MAXI bounds the number of edits behind each schema and
// NAVANI_CHAOS_N is the number of schemas. Seeds are 0..N-1 so a failure is
// replayed by its subtest name.
func TestChaos(t *testing.T) {
	t.Parallel()

	n := envInt(t, "NAVANI_CHAOS_N", 25)
	maxi := envInt(t, "NAVANI_CHAOS_MAXI", 30)

	for seed := 0; seed < n; seed++ {
		seed := int64(seed)
		t.Run(strconv.FormatInt(seed, 10), func(t *testing.T) {
			t.Parallel()
			testSeed(t, seed, maxi, seed < 3)
		})
	}
}

func testSeed(t *testing.T, seed int64, maxi int, png bool) {
	ctx := log.WithTB(context.Background(), t, nil)
	ruler, err := textmeasure.NewRuler()
	require.NoError(t, err)

	st, err := nvchaos.Gen(seed, maxi)
	require.NoError(t, err)
	require.NoError(t, st.Schema.Validate())
	require.NotEmpty(t, st.Schema.Tables)

	dsl := nvformat.Format(st.Schema, nil)
	s1, err := nvparser.Parse(dsl)
	require.NoError(t, err, dsl)
	require.NoError(t, s1.Validate(), dsl)
	assert.Len(t, s1.Tables, len(st.Schema.Tables))
	assert.ElementsMatch(t, st.Schema.Relationships, s1.Relationships, dsl)
	assert.Equal(t, st.Schema.Icons(), s1.Icons())
	assert.Equal(t, st.Schema.Colors(), s1.Colors())

	// Parsing marks every reference not null, so the text settles after one
	// cycle.
	dsl2 := nvformat.Format(s1, nil)
	s2, err := nvparser.Parse(dsl2)
	require.NoError(t, err)
	assert.Equal(t, dsl2, nvformat.Format(s2, nil))

	d, err := nvlib.Compile(ctx, dsl, &nvlib.CompileOptions{Ruler: ruler})
	require.NoError(t, err)
	assert.True(t, d.LaidOut)

	again := nvrouter.Route(d.State.Schema, nil)
	assert.Equal(t, d.Routed, again)

	svg, err := nvsvg.Render(d.State, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, svg)

	if png {
		b, err := nvpng.Render(d.State, ruler, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, b)
	}
}

func TestGenDeterministic(t *testing.T) {
	t.Parallel()

	a, err := nvchaos.GenDSL(42, 40)
	require.NoError(t, err)
	b, err := nvchaos.GenDSL(42, 40)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "Table ")
}

func envInt(t *testing.T, key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		t.Fatalf("failed to atoi $%s: %v", key, err)
	}
	return n
}
