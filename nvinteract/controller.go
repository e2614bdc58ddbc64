// Package nvinteract turns pointer, wheel and key events into model
// mutations and viewport changes.
//
// A gesture starts with a PointerDown and is owned by its GestureID until
// the matching PointerUp or PointerCancel. Events carrying another id are
// ignored while a gesture is active, with one exception: a second touch
// while panning by touch starts a pinch.
package nvinteract

import (
	"context"
	"fmt"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvlayout"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvrouter"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

type Mode int

const (
	Idle Mode = iota
	// Dragging moves one table, or the whole selection when the pressed
	// table is part of a multi-selection.
	Dragging
	// Pressing is a press on a table body. It selects on release.
	Pressing
	Drafting
	Marquee
	Panning
	Pinching
)

var modeNames = [...]string{"idle", "dragging", "pressing", "drafting", "marquee", "panning", "pinching"}

func (m Mode) String() string {
	if m < Idle || m > Pinching {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

type Options struct {
	// DragThreshold is how far in screen pixels a press may travel and
	// still count as a click. It also arms the marquee.
	DragThreshold float64
	Layout        *nvlayout.Options
	Router        *nvrouter.Options
}

var DefaultOptions = Options{
	DragThreshold: 5,
}

type origin struct {
	t    *nvschema.Table
	x, y float64
}

type Controller struct {
	st *nvstate.State
	o  *Options

	mode    Mode
	gesture int
	touch   bool
	table   string
	start   *geo.Point
	last    *geo.Point
	// armed is set once the pointer has left the click threshold.
	armed   bool
	origins []origin

	pointers  map[int]*geo.Point
	pinchDist float64
	pinchZoom float64
	pinchMid  *geo.Point
}

func New(st *nvstate.State, o *Options) *Controller {
	if o == nil {
		o = &DefaultOptions
	}
	return &Controller{st: st, o: o}
}

func (c *Controller) State() *nvstate.State {
	return c.st
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// Reset abandons the current gesture without applying it and cancels any
// draft. Callers use it when the schema is replaced underneath a gesture.
func (c *Controller) Reset() {
	c.st.CancelDraft()
	c.idle()
}

func (c *Controller) idle() {
	c.mode = Idle
	c.gesture = 0
	c.touch = false
	c.table = ""
	c.start = nil
	c.last = nil
	c.armed = false
	c.origins = nil
	c.pointers = nil
}

func (c *Controller) setMode(ctx context.Context, m Mode, e Event) {
	log.Debug(ctx, "gesture", slog.F("from", c.mode.String()), slog.F("to", m.String()), slog.F("id", e.GestureID))
	c.mode = m
	c.gesture = e.GestureID
	c.touch = e.Touch
	c.start = e.Point
	c.last = e.Point
	c.armed = false
}

// Handle applies e. The returned error is from a model mutation the event
// triggered; the gesture state is consistent either way.
func (c *Controller) Handle(ctx context.Context, e Event) (Effect, error) {
	switch e.Kind {
	case PointerDown:
		return c.down(ctx, e)
	case PointerMove:
		return c.move(e), nil
	case PointerUp:
		return c.up(ctx, e, false)
	case PointerCancel:
		return c.up(ctx, e, true)
	case Wheel:
		c.st.Viewport.Wheel(e.DeltaY, e.Point)
		return Effect{Render: true}, nil
	case Key:
		return c.key(ctx, e)
	}
	return Effect{}, fmt.Errorf("unknown event kind %v", e.Kind)
}

func (c *Controller) down(ctx context.Context, e Event) (Effect, error) {
	if e.Target == TargetAuto {
		e.Target, e.Table = HitTest(c.st, e.Point)
	}

	switch {
	case c.mode == Drafting && e.GestureID != c.gesture && e.Target == TargetConnect && e.Button == ButtonLeft:
		c.Reset()
	case c.mode == Panning && c.touch && e.Touch && e.GestureID != c.gesture:
		c.startPinch(ctx, e)
		return Effect{}, nil
	}
	if c.mode != Idle {
		return Effect{}, nil
	}

	if e.Button == ButtonMiddle {
		c.setMode(ctx, Panning, e)
		return Effect{}, nil
	}
	if e.Button != ButtonLeft {
		return Effect{}, nil
	}

	switch e.Target {
	case TargetCanvas:
		if e.Touch {
			c.setMode(ctx, Panning, e)
		} else {
			c.setMode(ctx, Marquee, e)
		}
		return Effect{}, nil
	case TargetConnect:
		return c.startDraft(ctx, e)
	case TargetHeader:
		return c.startDrag(ctx, e), nil
	case TargetBody:
		c.setMode(ctx, Pressing, e)
		c.table = e.Table
		return Effect{}, nil
	}
	return Effect{}, nil
}

func (c *Controller) startDraft(ctx context.Context, e Event) (Effect, error) {
	t := c.st.Schema.Table(e.Table)
	if t == nil {
		return Effect{}, fmt.Errorf("table %q: %w", e.Table, nvoracle.ErrNotFound)
	}
	c.st.CloseEditor()

	world := c.st.Viewport.ScreenToWorld(e.Point)
	side := nvgeom.ChooseSideToPoint(t, world)
	c.st.Draft = &nvstate.Draft{
		GestureID: e.GestureID,
		FromTable: t.Name,
		FromSide:  side,
		FromPoint: nvgeom.BoundaryAnchor(t, side),
		Current:   world,
	}
	c.setMode(ctx, Drafting, e)
	c.table = t.Name
	return Effect{Render: true}, nil
}

func (c *Controller) startDrag(ctx context.Context, e Event) Effect {
	t := c.st.Schema.Table(e.Table)
	if t == nil {
		return Effect{}
	}
	c.setMode(ctx, Dragging, e)
	c.table = t.Name

	if c.st.IsSelected(t.Name) && len(c.st.Selection) > 1 {
		for _, sel := range c.st.SelectedTables() {
			c.origins = append(c.origins, origin{sel, sel.X, sel.Y})
		}
	} else {
		c.origins = []origin{{t, t.X, t.Y}}
	}
	return Effect{}
}

func (c *Controller) startPinch(ctx context.Context, e Event) {
	first, firstID := c.last, c.gesture
	c.setMode(ctx, Pinching, e)
	c.pointers = map[int]*geo.Point{
		firstID:     first,
		e.GestureID: e.Point,
	}
	c.pinchDist = first.VectorTo(e.Point).Length()
	c.pinchZoom = c.st.Viewport.Zoom
	c.pinchMid = first.Interpolate(e.Point, 0.5)
}

func (c *Controller) beyondThreshold(p *geo.Point) bool {
	return math.Abs(p.X-c.start.X) > c.o.DragThreshold || math.Abs(p.Y-c.start.Y) > c.o.DragThreshold
}

func (c *Controller) move(e Event) Effect {
	if c.mode == Idle {
		return c.hover(e)
	}
	if c.mode == Pinching {
		return c.pinch(e)
	}
	if e.GestureID != c.gesture {
		return Effect{}
	}
	if !c.armed && c.beyondThreshold(e.Point) {
		c.armed = true
	}

	switch c.mode {
	case Dragging:
		z := c.st.Viewport.Zoom
		dx := (e.Point.X - c.start.X) / z
		dy := (e.Point.Y - c.start.Y) / z
		for _, o := range c.origins {
			o.t.X = o.x + dx
			o.t.Y = o.y + dy
		}
		c.last = e.Point
		return Effect{Render: true, Moved: true}
	case Drafting:
		d := c.st.Draft
		if d == nil {
			return Effect{}
		}
		d.Current = c.st.Viewport.ScreenToWorld(e.Point)
		d.TargetTable = c.validTarget(d.Current)
		c.last = e.Point
		return Effect{Render: true}
	case Marquee:
		c.last = e.Point
		return Effect{Render: c.armed}
	case Panning:
		c.st.Viewport.PanBy(e.Point.X-c.last.X, e.Point.Y-c.last.Y)
		c.last = e.Point
		return Effect{Render: true}
	}
	c.last = e.Point
	return Effect{}
}

// validTarget is the table under the world point w unless it is the draft
// origin.
func (c *Controller) validTarget(w *geo.Point) string {
	t := nvgeom.TableAt(c.st.Schema.Tables, w)
	if t == nil || t.Name == c.table {
		return ""
	}
	return t.Name
}

func (c *Controller) hover(e Event) Effect {
	if e.Point == nil {
		return Effect{}
	}
	name := ""
	if t := nvgeom.TableAt(c.st.Schema.Tables, c.st.Viewport.ScreenToWorld(e.Point)); t != nil {
		name = t.Name
	}
	if name == c.st.Hover {
		return Effect{}
	}
	c.st.Hover = name
	return Effect{Render: true}
}

func (c *Controller) pinch(e Event) Effect {
	if _, ok := c.pointers[e.GestureID]; !ok {
		return Effect{}
	}
	c.pointers[e.GestureID] = e.Point
	var pts []*geo.Point
	for _, p := range c.pointers {
		pts = append(pts, p)
	}
	if len(pts) < 2 || c.pinchDist == 0 {
		return Effect{}
	}

	dist := pts[0].VectorTo(pts[1]).Length()
	mid := pts[0].Interpolate(pts[1], 0.5)
	c.st.Viewport.PanBy(mid.X-c.pinchMid.X, mid.Y-c.pinchMid.Y)
	c.pinchMid = mid
	c.st.Viewport.SetZoom(c.pinchZoom*dist/c.pinchDist, mid)
	return Effect{Render: true}
}

func (c *Controller) up(ctx context.Context, e Event, canceled bool) (Effect, error) {
	if c.mode == Pinching {
		return c.liftPinch(ctx, e), nil
	}
	if c.mode == Idle || e.GestureID != c.gesture {
		return Effect{}, nil
	}
	if e.Point == nil {
		e.Point = c.last
	}
	mode := c.mode
	defer func() {
		log.Debug(ctx, "gesture", slog.F("from", mode.String()), slog.F("to", Idle.String()), slog.F("id", e.GestureID), slog.F("canceled", canceled))
	}()

	switch mode {
	case Dragging:
		table, armed := c.table, c.armed
		c.idle()
		passes := nvlayout.ResolveOverlaps(c.st.Schema.Tables, c.o.Layout)
		if !armed && !canceled {
			c.st.Select(table, e.Mods.additive())
		}
		return Effect{Render: true, Moved: armed || passes > 0}, nil
	case Pressing:
		table := c.table
		armed := c.armed
		c.idle()
		if canceled || armed {
			return Effect{}, nil
		}
		c.st.Select(table, e.Mods.additive())
		return Effect{Render: true}, nil
	case Drafting:
		return c.finishDraft(e, canceled)
	case Marquee:
		return c.finishMarquee(e, canceled), nil
	case Panning:
		c.idle()
		return Effect{}, nil
	}
	c.idle()
	return Effect{}, nil
}

func (c *Controller) finishDraft(e Event, canceled bool) (Effect, error) {
	from := c.table
	target := ""
	if e.Point != nil {
		target = c.validTarget(c.st.Viewport.ScreenToWorld(e.Point))
	}
	c.st.CancelDraft()
	c.idle()

	eff := Effect{Render: true}
	if canceled {
		return eff, nil
	}
	if target == "" {
		eff.Notice = "Connection canceled"
		return eff, nil
	}
	// The table dragged onto receives the FK column referencing the table
	// the draft started from.
	if err := nvoracle.OpenCreateEditor(c.st, target, from); err != nil {
		return eff, err
	}
	c.st.Editor.Anchor = e.Point
	return eff, nil
}

func (c *Controller) finishMarquee(e Event, canceled bool) Effect {
	armed := c.armed
	start := c.start
	c.idle()
	if canceled {
		return Effect{Render: armed}
	}
	if !armed {
		if len(c.st.Selection) == 0 {
			return Effect{}
		}
		c.st.ClearSelection()
		return Effect{Render: true}
	}

	rect := c.st.Viewport.ScreenRectToWorld(start, e.Point)
	var selected []string
	for _, t := range c.st.Schema.Tables {
		if nvgeom.Box(t).Intersects(rect) {
			selected = append(selected, t.Name)
		}
	}
	if len(selected) > 0 {
		if e.Mods.additive() {
			c.st.AddToSelection(selected...)
		} else {
			c.st.Selection = selected
		}
	}
	return Effect{Render: true}
}

func (c *Controller) liftPinch(ctx context.Context, e Event) Effect {
	if _, ok := c.pointers[e.GestureID]; !ok {
		return Effect{}
	}
	delete(c.pointers, e.GestureID)
	for id, p := range c.pointers {
		c.idle()
		c.setMode(ctx, Panning, Event{GestureID: id, Point: p, Touch: true})
		return Effect{}
	}
	c.idle()
	return Effect{}
}

// abortDrag puts every dragged table back where the gesture found it.
func (c *Controller) abortDrag(ctx context.Context) {
	for _, o := range c.origins {
		o.t.X = o.x
		o.t.Y = o.y
	}
	log.Debug(ctx, "gesture", slog.F("from", c.mode.String()), slog.F("to", Idle.String()), slog.F("escaped", true))
	c.idle()
}

// MarqueeRect is the marquee being dragged in screen coordinates, or nil.
func (c *Controller) MarqueeRect() *geo.Box {
	if c.mode != Marquee || !c.armed {
		return nil
	}
	return geo.BoxFromCorners(c.start, c.last)
}

// Preview is the connector of the current draft, or nil.
func (c *Controller) Preview() *nvrouter.Preview {
	d := c.st.Draft
	if d == nil {
		return nil
	}
	var target *nvschema.Table
	if d.TargetTable != "" {
		target = c.st.Schema.Table(d.TargetTable)
	}
	return nvrouter.DraftPreview(d.FromSide, d.FromPoint, d.Current, target, c.o.Router)
}

func (c *Controller) key(ctx context.Context, e Event) (Effect, error) {
	switch e.Key {
	case "Escape":
		switch {
		case c.mode == Dragging:
			c.abortDrag(ctx)
		case c.mode == Marquee:
			log.Debug(ctx, "gesture", slog.F("from", c.mode.String()), slog.F("to", Idle.String()), slog.F("escaped", true))
			c.idle()
		case c.st.Draft != nil:
			c.Reset()
		case c.st.Editor != nil:
			c.st.CloseEditor()
		case len(c.st.Selection) > 0:
			c.st.ClearSelection()
		default:
			return Effect{}, nil
		}
		return Effect{Render: true}, nil
	case "Delete", "Backspace":
		if len(c.st.Selection) == 0 {
			return Effect{}, nil
		}
		deleted, err := nvoracle.DeleteSelected(c.st)
		if c.mode != Idle && c.table != "" && c.st.Schema.Table(c.table) == nil {
			c.Reset()
		}
		eff := Effect{Render: true, SchemaChanged: len(deleted) > 0, Deleted: deleted}
		if err != nil {
			return eff, err
		}
		log.Debug(ctx, "deleted tables", slog.F("tables", deleted))
		return eff, nil
	case "f":
		c.st.Viewport.FitToScreen(nvgeom.Bounds(c.st.Schema.Tables))
		return Effect{Render: true}, nil
	case "+", "=":
		c.st.Viewport.SetZoom(c.st.Viewport.Zoom+nvstate.ZoomStep, nil)
		return Effect{Render: true}, nil
	case "-":
		c.st.Viewport.SetZoom(c.st.Viewport.Zoom-nvstate.ZoomStep, nil)
		return Effect{Render: true}, nil
	}
	return Effect{}, nil
}
