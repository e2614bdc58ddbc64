package nvstate

import (
	"math"

	"oss.terrastruct.com/navani/lib/geo"
)

const (
	MinZoom  = 0.25
	MaxZoom  = 2.
	ZoomStep = 0.1

	// FitPadding is the screen margin kept around content by FitToScreen.
	FitPadding = 70.
)

// Viewport maps world coordinates to screen coordinates:
// screen = world*Zoom + Pan.
type Viewport struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`

	// Width and Height are the size of the canvas on screen.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewViewport() Viewport {
	return Viewport{Zoom: 1, Width: 1280, Height: 800}
}

func (v *Viewport) ScreenToWorld(p *geo.Point) *geo.Point {
	return geo.NewPoint((p.X-v.PanX)/v.Zoom, (p.Y-v.PanY)/v.Zoom)
}

func (v *Viewport) WorldToScreen(p *geo.Point) *geo.Point {
	return geo.NewPoint(p.X*v.Zoom+v.PanX, p.Y*v.Zoom+v.PanY)
}

// ScreenRectToWorld converts the rectangle spanned by two screen points.
func (v *Viewport) ScreenRectToWorld(a, b *geo.Point) *geo.Box {
	return geo.BoxFromCorners(v.ScreenToWorld(a), v.ScreenToWorld(b))
}

// SetZoom clamps zoom into [MinZoom, MaxZoom]. With a non-nil anchor the
// world point under anchor stays under it.
func (v *Viewport) SetZoom(zoom float64, anchor *geo.Point) {
	next := geo.Clamp(zoom, MinZoom, MaxZoom)
	if anchor == nil {
		v.Zoom = next
		return
	}
	world := v.ScreenToWorld(anchor)
	v.Zoom = next
	v.PanX = anchor.X - world.X*v.Zoom
	v.PanY = anchor.Y - world.Y*v.Zoom
}

// Wheel zooms one step in for a negative deltaY and out otherwise.
func (v *Viewport) Wheel(deltaY float64, anchor *geo.Point) {
	step := ZoomStep
	if deltaY > 0 {
		step = -step
	}
	v.SetZoom(v.Zoom+step, anchor)
}

func (v *Viewport) PanBy(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// FitToScreen centers content in the canvas, zooming out until it fits
// inside FitPadding. It never zooms in past 1. A nil content box is a no-op.
func (v *Viewport) FitToScreen(content *geo.Box) {
	if content == nil {
		return
	}
	w := math.Max(1, content.Width)
	h := math.Max(1, content.Height)

	scaleX := (v.Width - FitPadding*2) / w
	scaleY := (v.Height - FitPadding*2) / h
	v.Zoom = geo.Clamp(math.Min(math.Min(scaleX, scaleY), 1), MinZoom, MaxZoom)
	v.PanX = (v.Width-w*v.Zoom)/2 - content.TopLeft.X*v.Zoom
	v.PanY = (v.Height-h*v.Zoom)/2 - content.TopLeft.Y*v.Zoom
}
