package nvinteract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvinteract"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

func newState() *nvstate.State {
	st := nvstate.New()
	st.Schema = &nvschema.Schema{
		Tables: []*nvschema.Table{
			{Name: "users", Columns: []*nvschema.Column{
				{Name: "id", Type: "int", PK: true, NotNull: true},
				{Name: "email", Type: "varchar"},
			}},
			{Name: "posts", X: 500, Columns: []*nvschema.Column{
				{Name: "id", Type: "int", PK: true, NotNull: true},
				{Name: "title", Type: "varchar"},
			}},
		},
	}
	return st
}

type harness struct {
	t   *testing.T
	ctx context.Context
	c   *nvinteract.Controller
	st  *nvstate.State
}

func newHarness(t *testing.T) *harness {
	st := newState()
	return &harness{
		t:   t,
		ctx: log.WithTB(context.Background(), t, nil),
		c:   nvinteract.New(st, nil),
		st:  st,
	}
}

func (h *harness) send(e nvinteract.Event) nvinteract.Effect {
	h.t.Helper()
	eff, err := h.c.Handle(h.ctx, e)
	require.NoError(h.t, err)
	return eff
}

func (h *harness) down(id int, x, y float64) nvinteract.Effect {
	h.t.Helper()
	return h.send(nvinteract.Event{Kind: nvinteract.PointerDown, GestureID: id, Point: geo.NewPoint(x, y)})
}

func (h *harness) move(id int, x, y float64) nvinteract.Effect {
	h.t.Helper()
	return h.send(nvinteract.Event{Kind: nvinteract.PointerMove, GestureID: id, Point: geo.NewPoint(x, y)})
}

func (h *harness) up(id int, x, y float64) nvinteract.Effect {
	h.t.Helper()
	return h.send(nvinteract.Event{Kind: nvinteract.PointerUp, GestureID: id, Point: geo.NewPoint(x, y)})
}

func (h *harness) key(k string) nvinteract.Effect {
	h.t.Helper()
	return h.send(nvinteract.Event{Kind: nvinteract.Key, Key: k})
}

func TestHitTest(t *testing.T) {
	t.Parallel()

	st := newState()
	testCases := []struct {
		name   string
		p      *geo.Point
		target nvinteract.Target
		table  string
	}{
		{"header", geo.NewPoint(10, 10), nvinteract.TargetHeader, "users"},
		{"connect", geo.NewPoint(200, 20), nvinteract.TargetConnect, "users"},
		{"body", geo.NewPoint(10, 60), nvinteract.TargetBody, "users"},
		{"other_table", geo.NewPoint(600, 60), nvinteract.TargetBody, "posts"},
		{"canvas", geo.NewPoint(400, 400), nvinteract.TargetCanvas, ""},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			target, table := nvinteract.HitTest(st, tc.p)
			assert.Equal(t, tc.target, target)
			assert.Equal(t, tc.table, table)
		})
	}
}

func TestDrag(t *testing.T) {
	h := newHarness(t)
	users := h.st.Schema.Table("users")

	h.down(1, 10, 10)
	assert.Equal(t, nvinteract.Dragging, h.c.Mode())

	eff := h.move(1, 110, 30)
	assert.True(t, eff.Moved)
	assert.Equal(t, 100., users.X)
	assert.Equal(t, 20., users.Y)

	// Events from other gestures are ignored while one is active.
	h.down(2, 600, 10)
	h.move(2, 900, 900)
	h.up(2, 900, 900)
	assert.Equal(t, nvinteract.Dragging, h.c.Mode())
	assert.Equal(t, 100., users.X)

	eff = h.up(1, 110, 30)
	assert.True(t, eff.Moved)
	assert.Equal(t, nvinteract.Idle, h.c.Mode())
	assert.Empty(t, h.st.Selection)
	assert.Equal(t, 500., h.st.Schema.Table("posts").X)
}

func TestDragResolvesOverlapOnRelease(t *testing.T) {
	h := newHarness(t)
	users, posts := h.st.Schema.Table("users"), h.st.Schema.Table("posts")

	h.down(1, 510, 10)
	h.move(1, 20, 10)
	assert.Equal(t, 10., posts.X)
	assert.Equal(t, 0., posts.Y)
	assert.Equal(t, 0., users.Y)

	h.up(1, 20, 10)
	assert.Equal(t, -83., users.Y)
	assert.Equal(t, 83., posts.Y)
	assert.False(t, nvgeom.Overlaps(users, posts, 35))
}

func TestGroupDrag(t *testing.T) {
	h := newHarness(t)
	h.st.Selection = []string{"users", "posts"}
	h.st.Viewport.Zoom = 0.5

	// posts' header is at world (510, 10), screen (255, 5).
	h.down(1, 255, 5)
	h.move(1, 255, 55)
	assert.Equal(t, 100., h.st.Schema.Table("users").Y)
	assert.Equal(t, 100., h.st.Schema.Table("posts").Y)
	assert.Equal(t, 500., h.st.Schema.Table("posts").X)

	h.send(nvinteract.Event{Kind: nvinteract.PointerCancel, GestureID: 1})
	assert.Equal(t, nvinteract.Idle, h.c.Mode())
	assert.Equal(t, []string{"users", "posts"}, h.st.Selection)
}

func TestClickSelects(t *testing.T) {
	h := newHarness(t)

	h.down(1, 10, 10)
	h.up(1, 12, 11)
	assert.Equal(t, []string{"users"}, h.st.Selection)

	h.send(nvinteract.Event{Kind: nvinteract.PointerDown, GestureID: 2, Point: geo.NewPoint(600, 60)})
	assert.Equal(t, nvinteract.Pressing, h.c.Mode())
	h.send(nvinteract.Event{Kind: nvinteract.PointerUp, GestureID: 2, Point: geo.NewPoint(600, 60), Mods: nvinteract.Modifiers{Meta: true}})
	assert.Equal(t, []string{"users", "posts"}, h.st.Selection)

	// Additive click toggles.
	h.send(nvinteract.Event{Kind: nvinteract.PointerDown, GestureID: 3, Point: geo.NewPoint(10, 60)})
	h.send(nvinteract.Event{Kind: nvinteract.PointerUp, GestureID: 3, Point: geo.NewPoint(10, 60), Mods: nvinteract.Modifiers{Ctrl: true}})
	assert.Equal(t, []string{"posts"}, h.st.Selection)

	// A press that travels is not a click.
	h.down(4, 10, 60)
	h.move(4, 40, 60)
	h.up(4, 40, 60)
	assert.Equal(t, []string{"posts"}, h.st.Selection)
	assert.Equal(t, 0., h.st.Schema.Table("users").X)
}

func TestDraft(t *testing.T) {
	h := newHarness(t)

	eff := h.down(1, 200, 20)
	assert.True(t, eff.Render)
	require.Equal(t, nvinteract.Drafting, h.c.Mode())
	d := h.st.Draft
	require.NotNil(t, d)
	assert.Equal(t, "users", d.FromTable)
	assert.Equal(t, geo.Right, d.FromSide)
	assert.Equal(t, geo.NewPoint(220, 47), d.FromPoint)

	h.move(1, 600, 60)
	assert.Equal(t, "posts", d.TargetTable)
	pv := h.c.Preview()
	require.NotNil(t, pv)
	assert.True(t, pv.Active)

	// The origin is never a target.
	h.move(1, 50, 50)
	assert.Equal(t, "", d.TargetTable)
	assert.False(t, h.c.Preview().Active)

	h.move(1, 600, 60)
	eff = h.up(1, 600, 60)
	assert.Empty(t, eff.Notice)
	assert.Nil(t, h.st.Draft)
	assert.Nil(t, h.c.Preview())
	assert.Equal(t, nvinteract.Idle, h.c.Mode())

	e := h.st.Editor
	require.NotNil(t, e)
	assert.Equal(t, nvstate.EditorCreate, e.Mode)
	assert.Equal(t, "posts", e.FromTable)
	assert.Equal(t, "users", e.ToTable)
	assert.Equal(t, "id", e.ToColumn)
	assert.Equal(t, "users_id", e.Name)
	assert.Equal(t, geo.NewPoint(600, 60), e.Anchor)
}

func TestDraftDiscarded(t *testing.T) {
	t.Run("canvas", func(t *testing.T) {
		h := newHarness(t)
		h.down(1, 200, 20)
		eff := h.up(1, 400, 400)
		assert.Equal(t, "Connection canceled", eff.Notice)
		assert.Nil(t, h.st.Draft)
		assert.Nil(t, h.st.Editor)
	})

	t.Run("origin", func(t *testing.T) {
		h := newHarness(t)
		h.down(1, 200, 20)
		eff := h.up(1, 50, 50)
		assert.Equal(t, "Connection canceled", eff.Notice)
		assert.Nil(t, h.st.Editor)
	})

	t.Run("cancel", func(t *testing.T) {
		h := newHarness(t)
		h.down(1, 200, 20)
		h.move(1, 600, 60)
		eff := h.send(nvinteract.Event{Kind: nvinteract.PointerCancel, GestureID: 1, Point: geo.NewPoint(600, 60)})
		assert.Empty(t, eff.Notice)
		assert.Nil(t, h.st.Draft)
		assert.Nil(t, h.st.Editor)
	})

	t.Run("escape", func(t *testing.T) {
		h := newHarness(t)
		h.down(1, 200, 20)
		h.key("Escape")
		assert.Nil(t, h.st.Draft)
		assert.Equal(t, nvinteract.Idle, h.c.Mode())
		// The pointer going up afterwards is a no-op.
		eff := h.up(1, 600, 60)
		assert.Empty(t, eff.Notice)
		assert.Nil(t, h.st.Editor)
	})

	t.Run("new_draft", func(t *testing.T) {
		h := newHarness(t)
		h.down(1, 200, 20)
		// posts' connect affordance.
		h.down(2, 700, 20)
		require.NotNil(t, h.st.Draft)
		assert.Equal(t, "posts", h.st.Draft.FromTable)
		assert.Equal(t, 2, h.st.Draft.GestureID)
	})
}

func TestMarquee(t *testing.T) {
	h := newHarness(t)

	h.down(1, -50, -50)
	assert.Equal(t, nvinteract.Marquee, h.c.Mode())
	h.move(1, -48, -48)
	assert.Nil(t, h.c.MarqueeRect())
	h.move(1, 300, 120)
	require.NotNil(t, h.c.MarqueeRect())
	h.up(1, 300, 120)
	assert.Equal(t, []string{"users"}, h.st.Selection)

	h.down(2, 450, -50)
	h.move(2, 800, 200)
	h.send(nvinteract.Event{Kind: nvinteract.PointerUp, GestureID: 2, Point: geo.NewPoint(800, 200), Mods: nvinteract.Modifiers{Ctrl: true}})
	assert.Equal(t, []string{"users", "posts"}, h.st.Selection)

	// Non-additive marquee replaces the selection.
	h.down(3, 450, -50)
	h.move(3, 800, 200)
	h.up(3, 800, 200)
	assert.Equal(t, []string{"posts"}, h.st.Selection)

	// A click on empty canvas clears it.
	h.down(4, 400, 400)
	h.up(4, 402, 401)
	assert.Empty(t, h.st.Selection)
}

func TestEscapeMarquee(t *testing.T) {
	h := newHarness(t)
	h.st.Selection = []string{"users"}

	h.down(1, 400, 400)
	h.move(1, -50, -50)
	require.NotNil(t, h.c.MarqueeRect())
	assert.True(t, h.key("Escape").Render)
	assert.Equal(t, nvinteract.Idle, h.c.Mode())
	assert.Nil(t, h.c.MarqueeRect())

	// The release of the escaped gesture is ignored.
	h.up(1, -50, -50)
	assert.Equal(t, []string{"users"}, h.st.Selection)
}

func TestEscapeDrag(t *testing.T) {
	h := newHarness(t)
	users, posts := h.st.Schema.Table("users"), h.st.Schema.Table("posts")
	h.st.Selection = []string{"users", "posts"}

	h.down(1, 10, 10)
	h.move(1, 290, 290)
	assert.Equal(t, 280., users.X)
	assert.Equal(t, 780., posts.X)

	assert.True(t, h.key("Escape").Render)
	assert.Equal(t, nvinteract.Idle, h.c.Mode())
	assert.Equal(t, 0., users.X)
	assert.Equal(t, 0., users.Y)
	assert.Equal(t, 500., posts.X)
	assert.Equal(t, []string{"users", "posts"}, h.st.Selection)

	h.move(1, 400, 400)
	h.up(1, 400, 400)
	assert.Equal(t, 0., users.X)
	assert.Equal(t, 500., posts.X)
}

func TestMarqueeZoomed(t *testing.T) {
	h := newHarness(t)
	h.st.Viewport.Zoom = 0.5
	h.st.Viewport.PanX = 100

	// World x in [300, 600] only reaches posts.
	h.down(1, 250, -10)
	h.move(1, 400, 100)
	h.up(1, 400, 100)
	assert.Equal(t, []string{"posts"}, h.st.Selection)
}

func TestPan(t *testing.T) {
	h := newHarness(t)

	h.send(nvinteract.Event{Kind: nvinteract.PointerDown, GestureID: 1, Point: geo.NewPoint(100, 100), Button: nvinteract.ButtonMiddle})
	assert.Equal(t, nvinteract.Panning, h.c.Mode())
	h.move(1, 130, 90)
	h.move(1, 140, 90)
	assert.Equal(t, 40., h.st.Viewport.PanX)
	assert.Equal(t, -10., h.st.Viewport.PanY)
	h.up(1, 140, 90)
	assert.Equal(t, nvinteract.Idle, h.c.Mode())

	// Right button does nothing.
	h.send(nvinteract.Event{Kind: nvinteract.PointerDown, GestureID: 2, Point: geo.NewPoint(100, 100), Button: nvinteract.ButtonRight})
	assert.Equal(t, nvinteract.Idle, h.c.Mode())
}

func TestPinch(t *testing.T) {
	h := newHarness(t)
	touch := func(kind nvinteract.Kind, id int, x, y float64) {
		h.send(nvinteract.Event{Kind: kind, GestureID: id, Point: geo.NewPoint(x, y), Touch: true})
	}

	touch(nvinteract.PointerDown, 1, 100, 100)
	assert.Equal(t, nvinteract.Panning, h.c.Mode())
	touch(nvinteract.PointerDown, 2, 300, 100)
	assert.Equal(t, nvinteract.Pinching, h.c.Mode())

	touch(nvinteract.PointerMove, 2, 500, 100)
	vp := h.st.Viewport
	assert.Equal(t, 2., vp.Zoom)
	assert.Equal(t, -100., vp.PanX)
	assert.Equal(t, -100., vp.PanY)

	// Lifting one finger keeps panning with the other.
	touch(nvinteract.PointerUp, 2, 500, 100)
	assert.Equal(t, nvinteract.Panning, h.c.Mode())
	touch(nvinteract.PointerMove, 1, 110, 100)
	assert.Equal(t, -90., h.st.Viewport.PanX)
	touch(nvinteract.PointerUp, 1, 110, 100)
	assert.Equal(t, nvinteract.Idle, h.c.Mode())
}

func TestWheel(t *testing.T) {
	h := newHarness(t)

	h.send(nvinteract.Event{Kind: nvinteract.Wheel, DeltaY: 100, Point: geo.NewPoint(0, 0)})
	assert.InDelta(t, 0.9, h.st.Viewport.Zoom, 1e-9)
	h.send(nvinteract.Event{Kind: nvinteract.Wheel, DeltaY: -100, Point: geo.NewPoint(0, 0)})
	assert.InDelta(t, 1, h.st.Viewport.Zoom, 1e-9)

	for i := 0; i < 30; i++ {
		h.send(nvinteract.Event{Kind: nvinteract.Wheel, DeltaY: 1, Point: geo.NewPoint(0, 0)})
	}
	assert.Equal(t, nvstate.MinZoom, h.st.Viewport.Zoom)
}

func TestHover(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.move(0, 10, 60).Render)
	assert.Equal(t, "users", h.st.Hover)
	assert.False(t, h.move(0, 12, 60).Render)
	h.move(0, 400, 400)
	assert.Equal(t, "", h.st.Hover)

	// Hover is frozen during a gesture.
	h.down(1, 10, 10)
	h.move(1, 600, 60)
	assert.Equal(t, "", h.st.Hover)
}

func TestKeys(t *testing.T) {
	h := newHarness(t)

	h.st.Selection = []string{"posts"}
	h.st.Editor = &nvstate.Editor{FromTable: "posts", ToTable: "users"}
	h.down(1, 200, 20)
	require.NotNil(t, h.st.Draft)
	h.up(1, 400, 400)

	h.down(2, 200, 20)
	h.key("Escape")
	assert.Nil(t, h.st.Draft)
	assert.Equal(t, []string{"posts"}, h.st.Selection)

	h.st.Editor = &nvstate.Editor{FromTable: "posts", ToTable: "users"}
	h.key("Escape")
	assert.Nil(t, h.st.Editor)
	assert.Equal(t, []string{"posts"}, h.st.Selection)

	h.key("Escape")
	assert.Empty(t, h.st.Selection)
	assert.False(t, h.key("Escape").Render)

	h.st.Selection = []string{"posts"}
	eff := h.key("Delete")
	assert.True(t, eff.SchemaChanged)
	assert.Equal(t, []string{"posts"}, eff.Deleted)
	assert.Nil(t, h.st.Schema.Table("posts"))
	assert.False(t, h.key("Backspace").SchemaChanged)

	h.key("+")
	assert.InDelta(t, 1.1, h.st.Viewport.Zoom, 1e-9)
	h.key("-")
	h.key("-")
	assert.InDelta(t, 0.9, h.st.Viewport.Zoom, 1e-9)

	h.key("f")
	assert.Equal(t, 1., h.st.Viewport.Zoom)
	// users is 220x94 centered in 1280x800.
	assert.Equal(t, 530., h.st.Viewport.PanX)
	assert.Equal(t, 353., h.st.Viewport.PanY)
}
