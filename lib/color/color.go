// Package color blends and converts the CSS colors used by the renderers.
package color

import (
	"fmt"
	stdcolor "image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

const (
	Empty = ""
	None  = "none"

	// HeaderAlpha is the opacity of a table's accent color over its header.
	HeaderAlpha = float64(0x20) / 0xff
)

func Parse(colorString string) (colorful.Color, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return colorful.Color{}, err
	}
	return colorful.Color{R: c.R, G: c.G, B: c.B}, nil
}

// Blend paints fg over bg with opacity alpha and returns the hex result.
func Blend(fg, bg string, alpha float64) (string, error) {
	f, err := Parse(fg)
	if err != nil {
		return "", err
	}
	b, err := Parse(bg)
	if err != nil {
		return "", err
	}
	return b.BlendRgb(f, alpha).Clamped().Hex(), nil
}

func Darken(colorString string) (string, error) {
	c, err := Parse(colorString)
	if err != nil {
		return "", err
	}
	h, s, l := c.Hsl()
	// decrease luminance by 10%
	return colorful.Hsl(h, s, l-.1).Clamped().Hex(), nil
}

// RGBA converts a CSS color into an image color. Alpha is not
// premultiplied, so callers should pass opaque colors.
func RGBA(colorString string) (stdcolor.RGBA, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return stdcolor.RGBA{}, fmt.Errorf("invalid color %q: %w", colorString, err)
	}
	return stdcolor.RGBA{R: to255(c.R), G: to255(c.G), B: to255(c.B), A: to255(c.A)}, nil
}

func to255(v float64) uint8 {
	return uint8(v*255 + 0.5)
}

func LuminanceCategory(colorString string) (string, error) {
	l, err := Luminance(colorString)
	if err != nil {
		return "", err
	}

	switch {
	case l >= .88:
		return "bright", nil
	case l >= .55:
		return "normal", nil
	case l >= .30:
		return "dark", nil
	default:
		return "darker", nil
	}
}

func Luminance(colorString string) (float64, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return 0, err
	}

	l := float64(
		float64(0.299)*float64(c.R) +
			float64(0.587)*float64(c.G) +
			float64(0.114)*float64(c.B),
	)
	return l, nil
}
