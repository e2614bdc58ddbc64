// nvthemes defines the light and dark palettes shared by the renderers
package nvthemes

import (
	"fmt"
	"strings"

	"oss.terrastruct.com/navani/lib/color"
)

type Theme struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Colors ColorPalette `json:"colors"`
}

type ColorPalette struct {
	Background string `json:"background"`
	// Surface fills table bodies.
	Surface string `json:"surface"`
	Header  string `json:"header"`
	Border  string `json:"border"`
	Text    string `json:"text"`
	Muted   string `json:"muted"`

	Line string `json:"line"`
	// Highlight strokes relationships of the hovered table and the outline
	// of selected tables.
	Highlight string `json:"highlight"`
	Draft     string `json:"draft"`
	Marquee   string `json:"marquee"`

	PK string `json:"pk"`
	FK string `json:"fk"`
}

var Light = Theme{
	ID:   0,
	Name: "light",
	Colors: ColorPalette{
		Background: "#ffffff",
		Surface:    "#ffffff",
		Header:     "#f8fafc",
		Border:     "#cbd5e1",
		Text:       "#0f172a",
		Muted:      "#64748b",
		Line:       "#94a3b8",
		Highlight:  "#3b82f6",
		Draft:      "#3b82f6",
		Marquee:    "#3b82f6",
		PK:         "#d97706",
		FK:         "#7c3aed",
	},
}

var Dark = Theme{
	ID:   1,
	Name: "dark",
	Colors: ColorPalette{
		Background: "#0f172a",
		Surface:    "#1e293b",
		Header:     "#334155",
		Border:     "#475569",
		Text:       "#f1f5f9",
		Muted:      "#94a3b8",
		Line:       "#64748b",
		Highlight:  "#60a5fa",
		Draft:      "#60a5fa",
		Marquee:    "#60a5fa",
		PK:         "#fbbf24",
		FK:         "#a78bfa",
	},
}

var Catalog = []Theme{Light, Dark}

// Find looks a theme up by name, case-insensitively. "" is Light.
func Find(name string) (*Theme, error) {
	if name == "" {
		t := Light
		return &t, nil
	}
	for _, t := range Catalog {
		if strings.EqualFold(t.Name, name) {
			t := t
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unknown theme %q", name)
}

// HeaderFill is the header color of a table with the given accent: the
// accent at color.HeaderAlpha over the theme's header color.
func (t *Theme) HeaderFill(accent string) string {
	if accent == "" {
		return t.Colors.Header
	}
	blended, err := color.Blend(accent, t.Colors.Header, color.HeaderAlpha)
	if err != nil {
		return t.Colors.Header
	}
	return blended
}

// IsDark reports whether the background is dark.
func (t *Theme) IsDark() bool {
	cat, err := color.LuminanceCategory(t.Colors.Background)
	return err == nil && (cat == "dark" || cat == "darker")
}

// IconFill is the color of the header icon of a table with the given
// accent. Light accents are darkened on light themes.
func (t *Theme) IconFill(accent string) string {
	if accent == "" {
		return t.Colors.Muted
	}
	cat, err := color.LuminanceCategory(accent)
	if err != nil {
		return t.Colors.Muted
	}
	if t.IsDark() || (cat != "bright" && cat != "normal") {
		return accent
	}
	darker, err := color.Darken(accent)
	if err != nil {
		return accent
	}
	return darker
}
