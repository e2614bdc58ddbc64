package nvrouter_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvrouter"
	"oss.terrastruct.com/navani/nvschema"
)

func idCol() *nvschema.Column {
	return &nvschema.Column{Name: "id", Type: "int", PK: true, NotNull: true}
}

func fkCol(name, table string, notNull bool) *nvschema.Column {
	return &nvschema.Column{Name: name, Type: "int", NotNull: notNull, FK: true, RefTable: table, RefColumn: "id"}
}

func usersPosts(notNull bool) *nvschema.Schema {
	users := &nvschema.Table{Name: "users", Columns: []*nvschema.Column{idCol(), {Name: "email", Type: "varchar"}}}
	posts := &nvschema.Table{Name: "posts", X: 500, Columns: []*nvschema.Column{idCol(), fkCol("user_id", "users", notNull)}}
	return &nvschema.Schema{
		Tables: []*nvschema.Table{users, posts},
		Relationships: []*nvschema.Relationship{
			{FromTable: "posts", FromColumn: "user_id", ToTable: "users", ToColumn: "id"},
		},
	}
}

func TestRoute(t *testing.T) {
	t.Parallel()

	routed := nvrouter.Route(usersPosts(true), nil)
	require.Len(t, routed, 1)
	r := routed[0]

	assert.Equal(t, geo.Left, r.From.Side)
	assert.Equal(t, geo.Right, r.To.Side)
	assert.Equal(t, geo.NewPoint(500, 78), r.From.Port)
	assert.Equal(t, geo.NewPoint(220, 54), r.To.Port)
	assert.False(t, r.From.One)
	assert.True(t, r.To.One)
	assert.False(t, r.Optional)
	assert.False(t, r.Self)

	// The path leaves a gap for the bars at both ends.
	assert.Equal(t, geo.NewPoint(472, 78), r.Path[0])
	assert.Equal(t, geo.NewPoint(248, 54), r.Path[len(r.Path)-1])
	for _, s := range r.Path.Segments() {
		assert.True(t, s.IsAxisAligned(), s.ToString())
	}

	assert.Equal(t, nvrouter.Label{Point: geo.NewPoint(474, 88), Text: "user_id", Anchor: "end"}, r.From.Label)
	assert.Equal(t, nvrouter.Label{Point: geo.NewPoint(246, 64), Text: "id", Anchor: "start"}, r.To.Label)
	assert.Equal(t, "N:1", r.Cardinality.Text)
	assert.Equal(t, "middle", r.Cardinality.Anchor)

	require.Len(t, r.From.Bars, 2)
	require.Len(t, r.To.Bars, 1)
	assert.Equal(t, geo.Segment{Start: geo.NewPoint(230, 47), End: geo.NewPoint(230, 61)}, r.To.Bars[0])

	assert.True(t, r.Touches("users"))
	assert.True(t, r.Touches("posts"))
	assert.False(t, r.Touches(""))
	assert.False(t, r.Touches("comments"))
}

func TestRouteOptional(t *testing.T) {
	t.Parallel()

	routed := nvrouter.Route(usersPosts(false), nil)
	require.Len(t, routed, 1)
	assert.True(t, routed[0].Optional)
	assert.Equal(t, "0..N:1", routed[0].Cardinality.Text)
}

func TestCardinalityText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		from *nvschema.Column
		to   *nvschema.Column
		exp  string
	}{
		{"many_required", &nvschema.Column{NotNull: true}, idCol(), "N:1"},
		{"many_optional", &nvschema.Column{}, idCol(), "0..N:1"},
		{"one_required", &nvschema.Column{NotNull: true, Unique: true}, idCol(), "1:1"},
		{"one_optional", &nvschema.Column{Unique: true}, idCol(), "0..1:1"},
		{"pk_source", &nvschema.Column{PK: true}, idCol(), "1:1"},
		{"many_target", &nvschema.Column{NotNull: true}, &nvschema.Column{}, "N:N"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, nvrouter.CardinalityText(tc.from, tc.to))
		})
	}
}

func TestRouteLanes(t *testing.T) {
	t.Parallel()

	s := &nvschema.Schema{
		Tables: []*nvschema.Table{
			{Name: "users", Columns: []*nvschema.Column{idCol(), {Name: "email", Type: "text"}}},
		},
	}
	for i, y := range []float64{0, 200, -200} {
		name := string(rune('a' + i))
		s.Tables = append(s.Tables, &nvschema.Table{
			Name: name, X: 500, Y: y,
			Columns: []*nvschema.Column{idCol(), fkCol("user_id", "users", true)},
		})
		s.Relationships = append(s.Relationships, &nvschema.Relationship{
			FromTable: name, FromColumn: "user_id", ToTable: "users", ToColumn: "id",
		})
	}

	routed := nvrouter.Route(s, nil)
	require.Len(t, routed, 3)

	anchor := nvgeom.Anchor(s.Tables[0], 0, geo.Right)
	var offsets []float64
	for _, r := range routed {
		require.Equal(t, geo.Right, r.To.Side)
		assert.Equal(t, anchor.X, r.To.Port.X)
		offsets = append(offsets, r.To.Port.Y-anchor.Y)
	}
	assert.Equal(t, []float64{-nvgeom.LaneStep, 0, nvgeom.LaneStep}, offsets)

	// Source ports are alone on their side and stay on the anchor.
	for i, r := range routed {
		assert.Equal(t, nvgeom.Anchor(s.Tables[i+1], 1, geo.Left), r.From.Port)
	}
}

func TestRouteDeterministic(t *testing.T) {
	t.Parallel()

	s := usersPosts(false)
	a := nvrouter.Route(s, nil)
	b := nvrouter.Route(s, nil)
	require.Len(t, a, len(b))
	for i := range a {
		assert.Equal(t, a[i].Path.SVGPath(), b[i].Path.SVGPath())
		assert.Equal(t, a[i], b[i])
	}
}

func TestRouteSelf(t *testing.T) {
	t.Parallel()

	emp := &nvschema.Table{Name: "employees", X: 40, Y: 40, Columns: []*nvschema.Column{
		idCol(),
		{Name: "name", Type: "varchar"},
		fkCol("manager_id", "employees", false),
	}}
	s := &nvschema.Schema{
		Tables: []*nvschema.Table{emp},
		Relationships: []*nvschema.Relationship{
			{FromTable: "employees", FromColumn: "manager_id", ToTable: "employees", ToColumn: "id"},
		},
	}

	routed := nvrouter.Route(s, nil)
	require.Len(t, routed, 1)
	r := routed[0]
	assert.True(t, r.Self)
	assert.Equal(t, geo.Right, r.From.Side)
	assert.Equal(t, geo.Top, r.To.Side)

	inner := nvgeom.Box(emp).Pad(-1)
	for _, seg := range r.Path.Segments() {
		assert.False(t, entersBox(inner, seg), seg.ToString())
		assert.False(t, inner.Contains(seg.Start), seg.ToString())
	}
}

func TestRouteDropsUnresolved(t *testing.T) {
	t.Parallel()

	s := usersPosts(true)
	s.Relationships = append(s.Relationships,
		&nvschema.Relationship{FromTable: "posts", FromColumn: "user_id", ToTable: "users", ToColumn: "missing"},
		&nvschema.Relationship{FromTable: "ghost", FromColumn: "user_id", ToTable: "users", ToColumn: "id"},
	)
	routed := nvrouter.Route(s, nil)
	require.Len(t, routed, 1)
	assert.Equal(t, "id", routed[0].To.Column)
	// Dropped relationships do not take a lane.
	assert.Equal(t, geo.NewPoint(220, 54), routed[0].To.Port)
}

func TestBars(t *testing.T) {
	t.Parallel()

	one := nvrouter.Bars(geo.NewPoint(0, 0), geo.NewVector(1, 0), true, nil)
	assert.Equal(t, []geo.Segment{
		{Start: geo.NewPoint(0, -7), End: geo.NewPoint(0, 7)},
	}, one)

	many := nvrouter.Bars(geo.NewPoint(0, 0), geo.NewVector(2, 0), false, nil)
	assert.Equal(t, []geo.Segment{
		{Start: geo.NewPoint(-4, -7), End: geo.NewPoint(-4, 7)},
		{Start: geo.NewPoint(4, -7), End: geo.NewPoint(4, 7)},
	}, many)
}

func TestDraftPreview(t *testing.T) {
	t.Parallel()

	from := geo.NewPoint(220, 47)

	t.Run("cursor", func(t *testing.T) {
		t.Parallel()
		pv := nvrouter.DraftPreview(geo.Right, from, geo.NewPoint(500, 47), nil, nil)
		require.NotNil(t, pv)
		assert.False(t, pv.Active)
		assert.Equal(t, geo.Route{geo.NewPoint(238, 47), geo.NewPoint(488, 47)}, pv.Path)
		require.Len(t, pv.StartBars, 1)
		require.Len(t, pv.EndBars, 2)
		assert.Equal(t, 252., pv.StartBars[0].Start.X)
		assert.Equal(t, 470., pv.EndBars[0].Start.X)
		assert.Equal(t, 478., pv.EndBars[1].Start.X)
	})

	t.Run("target", func(t *testing.T) {
		t.Parallel()
		target := &nvschema.Table{Name: "posts", X: 500, Columns: []*nvschema.Column{idCol(), {Name: "title"}}}
		pv := nvrouter.DraftPreview(geo.Right, from, geo.NewPoint(560, 200), target, nil)
		require.NotNil(t, pv)
		assert.True(t, pv.Active)
		// The preview snaps to the facing side of the target, not the cursor.
		assert.Equal(t, geo.NewPoint(488, 47), pv.Path[len(pv.Path)-1])
	})

	t.Run("no_cursor", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, nvrouter.DraftPreview(geo.Right, from, nil, nil, nil))
	})
}

func TestBounds(t *testing.T) {
	t.Parallel()

	assert.Nil(t, nvrouter.Bounds(nvschema.New(), nil))

	s := usersPosts(true)
	b := nvrouter.Bounds(s, nvrouter.Route(s, nil))
	assert.Equal(t, geo.NewPoint(0, 0), b.TopLeft)
	assert.Equal(t, 720., b.Right())
	assert.Equal(t, 94., b.Bottom())

	// A self reference loops above and to the right of its table.
	self := &nvschema.Schema{
		Tables: []*nvschema.Table{{Name: "nodes", Columns: []*nvschema.Column{
			idCol(),
			fkCol("parent_id", "nodes", false),
		}}},
		Relationships: []*nvschema.Relationship{
			{FromTable: "nodes", FromColumn: "parent_id", ToTable: "nodes", ToColumn: "id"},
		},
	}
	b = nvrouter.Bounds(self, nvrouter.Route(self, nil))
	assert.Less(t, b.TopLeft.Y, 0.)
	assert.Greater(t, b.Right(), 220.)
}

// entersBox reports whether the axis-aligned segment s passes through the
// interior of b.
func entersBox(b *geo.Box, s geo.Segment) bool {
	minX, maxX := math.Min(s.Start.X, s.End.X), math.Max(s.Start.X, s.End.X)
	minY, maxY := math.Min(s.Start.Y, s.End.Y), math.Max(s.Start.Y, s.End.Y)
	return maxX > b.TopLeft.X && minX < b.Right() && maxY > b.TopLeft.Y && minY < b.Bottom()
}
