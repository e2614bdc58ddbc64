package nvsvg

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/net/html"
)

// element is a helper for creating XML elements. Unset numeric attributes
// are left out of the output.
type element struct {
	tag string

	X      float64
	X1     float64
	X2     float64
	Y      float64
	Y1     float64
	Y2     float64
	Width  float64
	Height float64
	R      float64
	Rx     float64
	Cx     float64
	Cy     float64

	D         string
	Transform string

	Fill        string
	Stroke      string
	StrokeWidth float64
	DashArray   string
	Opacity     float64

	ClassName string
	Style     string
	// Data holds data-* attributes, rendered in key order.
	Data map[string]string

	// Content is inserted verbatim. Use escape for text.
	Content string
}

func newElement(tag string) *element {
	return &element{
		tag:         tag,
		X:           math.MaxFloat64,
		X1:          math.MaxFloat64,
		X2:          math.MaxFloat64,
		Y:           math.MaxFloat64,
		Y1:          math.MaxFloat64,
		Y2:          math.MaxFloat64,
		Width:       math.MaxFloat64,
		Height:      math.MaxFloat64,
		R:           math.MaxFloat64,
		Rx:          math.MaxFloat64,
		Cx:          math.MaxFloat64,
		Cy:          math.MaxFloat64,
		StrokeWidth: math.MaxFloat64,
		Opacity:     math.MaxFloat64,
	}
}

func (el *element) render() string {
	var sb strings.Builder
	sb.WriteString("<" + el.tag)

	for _, a := range []struct {
		name string
		v    float64
	}{
		{"x", el.X},
		{"x1", el.X1},
		{"x2", el.X2},
		{"y", el.Y},
		{"y1", el.Y1},
		{"y2", el.Y2},
		{"width", el.Width},
		{"height", el.Height},
		{"r", el.R},
		{"rx", el.Rx},
		{"cx", el.Cx},
		{"cy", el.Cy},
	} {
		if a.v != math.MaxFloat64 {
			fmt.Fprintf(&sb, ` %s="%s"`, a.name, num(a.v))
		}
	}

	if len(el.D) > 0 {
		fmt.Fprintf(&sb, ` d="%s"`, el.D)
	}
	if len(el.Transform) > 0 {
		fmt.Fprintf(&sb, ` transform="%s"`, el.Transform)
	}
	if len(el.Fill) > 0 {
		fmt.Fprintf(&sb, ` fill="%s"`, escape(el.Fill))
	}
	if len(el.Stroke) > 0 {
		fmt.Fprintf(&sb, ` stroke="%s"`, escape(el.Stroke))
	}
	if el.StrokeWidth != math.MaxFloat64 {
		fmt.Fprintf(&sb, ` stroke-width="%s"`, num(el.StrokeWidth))
	}
	if len(el.DashArray) > 0 {
		fmt.Fprintf(&sb, ` stroke-dasharray="%s"`, el.DashArray)
	}
	if el.Opacity != math.MaxFloat64 {
		fmt.Fprintf(&sb, ` opacity="%s"`, num(el.Opacity))
	}
	if len(el.ClassName) > 0 {
		fmt.Fprintf(&sb, ` class="%s"`, escape(el.ClassName))
	}
	if len(el.Style) > 0 {
		fmt.Fprintf(&sb, ` style="%s"`, escape(el.Style))
	}
	for _, k := range sortedKeys(el.Data) {
		fmt.Fprintf(&sb, ` data-%s="%s"`, k, escape(el.Data[k]))
	}

	if len(el.Content) > 0 {
		fmt.Fprintf(&sb, ">%s</%s>", el.Content, el.tag)
		return sb.String()
	}
	sb.WriteString(" />")
	return sb.String()
}

func escape(s string) string {
	return html.EscapeString(s)
}

// num formats v with at most two decimals and no trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
