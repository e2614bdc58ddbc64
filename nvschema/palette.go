package nvschema

import (
	"regexp"
)

// Icons are the symbolic tags a table may carry. The renderers map them to
// glyphs; the model only stores the tag.
var Icons = []string{
	"fa-table",
	"fa-users",
	"fa-user",
	"fa-shopping-cart",
	"fa-box",
	"fa-file-alt",
	"fa-comment",
	"fa-tags",
	"fa-cog",
	"fa-lock",
	"fa-credit-card",
	"fa-envelope",
	"fa-image",
	"fa-map-marker-alt",
	"fa-calendar",
	"fa-chart-bar",
	"fa-bell",
	"fa-star",
	"fa-folder",
	"fa-database",
}

// Colors is the accent palette. The empty string means no accent.
var Colors = []string{
	"",
	"#ef4444",
	"#f97316",
	"#eab308",
	"#22c55e",
	"#06b6d4",
	"#3b82f6",
	"#8b5cf6",
	"#ec4899",
	"#64748b",
}

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func IsIcon(s string) bool {
	for _, icon := range Icons {
		if icon == s {
			return true
		}
	}
	return false
}

// IsColor accepts any #rrggbb value, not only the palette, since the DSL
// allows arbitrary hex colors.
func IsColor(s string) bool {
	return s == "" || hexColorRegex.MatchString(s)
}

// IconGlyph is a short textual stand-in for an icon tag, used where no icon
// font is available.
func IconGlyph(icon string) string {
	switch icon {
	case "fa-users", "fa-user":
		return "@"
	case "fa-shopping-cart", "fa-credit-card":
		return "$"
	case "fa-box", "fa-folder", "fa-database":
		return "#"
	case "fa-comment", "fa-envelope", "fa-bell":
		return "~"
	case "fa-lock", "fa-cog":
		return "*"
	case "fa-star":
		return "+"
	default:
		return "="
	}
}
