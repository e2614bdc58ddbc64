package nvinteract

import (
	"fmt"

	"oss.terrastruct.com/navani/lib/geo"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvstate"
)

type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerCancel
	Wheel
	Key
)

var kindNames = [...]string{"pointerdown", "pointermove", "pointerup", "pointercancel", "wheel", "key"}

func (k Kind) String() string {
	if k < PointerDown || k > Key {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Target is the part of the diagram a pointer event landed on.
type Target int

const (
	// TargetAuto asks the controller to hit test the event point itself.
	TargetAuto Target = iota
	TargetCanvas
	TargetHeader
	// TargetConnect is the connect affordance in a header.
	TargetConnect
	TargetBody
)

var targetNames = [...]string{"auto", "canvas", "header", "connect", "body"}

func (t Target) String() string {
	if t < TargetAuto || t > TargetBody {
		return fmt.Sprintf("Target(%d)", int(t))
	}
	return targetNames[t]
}

type Modifiers struct {
	Ctrl  bool
	Meta  bool
	Shift bool
}

func (m Modifiers) additive() bool {
	return m.Ctrl || m.Meta
}

// Event is a single input event. Point is in screen coordinates.
type Event struct {
	Kind      Kind
	GestureID int
	Point     *geo.Point
	Button    Button
	// Touch marks events from a touch screen. Touch presses on the canvas
	// pan instead of starting a marquee, and a second touch pinches.
	Touch bool
	Mods  Modifiers

	// Target and Table are filled in by HitTest when Target is TargetAuto.
	Target Target
	Table  string

	// DeltaY is the wheel delta.
	DeltaY float64
	// Key is the key name as reported by browsers, e.g. "Escape".
	Key string
}

// HitTest resolves the target under the screen point p. Tables drawn last
// win.
func HitTest(st *nvstate.State, p *geo.Point) (Target, string) {
	w := st.Viewport.ScreenToWorld(p)
	t := nvgeom.TableAt(st.Schema.Tables, w)
	if t == nil {
		return TargetCanvas, ""
	}
	switch {
	case nvgeom.ConnectBox(t).Contains(w):
		return TargetConnect, t.Name
	case nvgeom.HeaderBox(t).Contains(w):
		return TargetHeader, t.Name
	}
	return TargetBody, t.Name
}

// Effect tells the caller what an event changed.
type Effect struct {
	// Render is set when anything visible changed.
	Render bool
	// SchemaChanged is set when tables, columns or relationships changed
	// and the DSL text must be regenerated.
	SchemaChanged bool
	// Moved is set when table positions changed.
	Moved bool
	// Deleted lists the tables removed by the event.
	Deleted []string
	// Notice is a short message for the user, e.g. "Connection canceled".
	Notice string
}
