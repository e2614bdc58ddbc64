package nvstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

func TestSelect(t *testing.T) {
	st := nvstate.New()

	st.Select("a", false)
	st.Select("b", true)
	st.Select("c", true)
	assert.Equal(t, []string{"a", "b", "c"}, st.Selection)

	st.Select("b", true)
	assert.Equal(t, []string{"a", "c"}, st.Selection)

	st.Select("d", false)
	assert.Equal(t, []string{"d"}, st.Selection)

	st.AddToSelection("d", "e")
	assert.Equal(t, []string{"d", "e"}, st.Selection)

	st.ClearSelection()
	assert.Empty(t, st.Selection)
	assert.False(t, st.IsSelected("d"))
}

func TestSelectedTables(t *testing.T) {
	st := nvstate.New()
	st.Schema.Tables = []*nvschema.Table{{Name: "a"}, {Name: "b"}}
	st.Selection = []string{"b", "gone", "a"}

	tables := st.SelectedTables()
	if assert.Len(t, tables, 2) {
		assert.Equal(t, "b", tables[0].Name)
		assert.Equal(t, "a", tables[1].Name)
	}
}

func TestOpenEditorReplaces(t *testing.T) {
	st := nvstate.New()
	st.OpenEditor(&nvstate.Editor{FromTable: "a", ToTable: "b"})
	st.OpenEditor(&nvstate.Editor{FromTable: "c", ToTable: "d"})
	assert.Equal(t, "c", st.Editor.FromTable)
	assert.True(t, st.Editor.Bound("d"))
	assert.False(t, st.Editor.Bound("a"))

	st.Reset()
	assert.Nil(t, st.Editor)
}

func TestConsumePending(t *testing.T) {
	st := nvstate.New()
	st.PendingIcons = map[string]string{"a": "fa-user"}
	icons, colors := st.ConsumePending()
	assert.Equal(t, map[string]string{"a": "fa-user"}, icons)
	assert.Nil(t, colors)
	assert.Nil(t, st.PendingIcons)
}

func TestViewportRoundTrip(t *testing.T) {
	v := nvstate.Viewport{PanX: 30, PanY: -12, Zoom: 1.5}
	p := geo.NewPoint(100, 200)
	w := v.ScreenToWorld(p)
	assert.True(t, p.Near(v.WorldToScreen(w), 1e-9))
}

func TestSetZoomAnchored(t *testing.T) {
	v := nvstate.NewViewport()
	v.PanX, v.PanY = 40, 60

	anchor := geo.NewPoint(300, 200)
	before := v.ScreenToWorld(anchor)
	v.SetZoom(1.7, anchor)
	assert.Equal(t, 1.7, v.Zoom)
	assert.True(t, before.Near(v.ScreenToWorld(anchor), 1e-9))

	v.SetZoom(5, nil)
	assert.Equal(t, nvstate.MaxZoom, v.Zoom)
	v.SetZoom(0.01, nil)
	assert.Equal(t, nvstate.MinZoom, v.Zoom)
}

func TestWheel(t *testing.T) {
	v := nvstate.NewViewport()
	v.Wheel(-1, geo.NewPoint(0, 0))
	assert.InDelta(t, 1.1, v.Zoom, 1e-9)
	v.Wheel(1, geo.NewPoint(0, 0))
	v.Wheel(1, geo.NewPoint(0, 0))
	assert.InDelta(t, 0.9, v.Zoom, 1e-9)
}

func TestFitToScreen(t *testing.T) {
	v := nvstate.Viewport{Zoom: 1, Width: 1000, Height: 600}

	// Small content is centered without zooming in.
	v.FitToScreen(geo.NewBox(geo.NewPoint(100, 50), 200, 100))
	assert.Equal(t, 1., v.Zoom)
	assert.Equal(t, 300., v.PanX)
	assert.Equal(t, 200., v.PanY)

	// Wide content is zoomed out to fit inside the padding.
	v.FitToScreen(geo.NewBox(geo.NewPoint(0, 0), 1720, 100))
	assert.Equal(t, 0.5, v.Zoom)
	assert.Equal(t, 70., v.PanX)

	before := v
	v.FitToScreen(nil)
	assert.Equal(t, before, v)
}
