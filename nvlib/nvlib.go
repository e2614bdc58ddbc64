package nvlib

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvlayout"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvrouter"
	"oss.terrastruct.com/navani/nvstate"
)

type CompileOptions struct {
	// Ruler measures table widths. nil keeps the default width.
	Ruler  nvgeom.Measurer
	Layout *nvlayout.Options
	Router *nvrouter.Options

	// State is reparsed in place when set, keeping positions, styles and the
	// viewport of tables that survive.
	State *nvstate.State
}

type Diagram struct {
	State  *nvstate.State
	Routed []*nvrouter.Routed
	// LaidOut is true when every table was at the origin and got placed.
	LaidOut bool
	// Passes is the number of overlap resolution passes that moved tables.
	Passes int
}

// Compile parses input into a positioned, routed diagram.
//
// A text without tables yields nvparser.ErrNoTables and leaves opts.State
// untouched.
func Compile(ctx context.Context, input string, opts *CompileOptions) (*Diagram, error) {
	if opts == nil {
		opts = &CompileOptions{}
	}
	st := opts.State
	if st == nil {
		st = nvstate.New()
	}

	if err := nvoracle.ApplyParse(st, input); err != nil {
		return nil, err
	}
	d := &Diagram{State: st}

	tables := st.Schema.Tables
	if nvlayout.NeedsLayout(tables) {
		nvlayout.AutoLayout(tables, st.Schema.Relationships, opts.Layout)
		d.LaidOut = true
		log.Debug(ctx, "auto layout", slog.F("tables", len(tables)), slog.F("layers", layerCount(nvlayout.Layers(tables, st.Schema.Relationships))))
	}

	Measure(st, opts.Ruler)
	d.Passes = nvlayout.ResolveOverlaps(tables, opts.Layout)
	if d.Passes > 0 {
		log.Debug(ctx, "resolved overlaps", slog.F("passes", d.Passes))
	}

	if d.LaidOut {
		st.Viewport.FitToScreen(nvgeom.Bounds(tables))
	}

	d.Routed = nvrouter.Route(st.Schema, opts.Router)
	log.Debug(ctx, "routed", slog.F("relationships", len(st.Schema.Relationships)), slog.F("routed", len(d.Routed)))
	return d, nil
}

// Measure sets the width of every table from m. A nil m resets tables to the
// default width.
func Measure(st *nvstate.State, m nvgeom.Measurer) {
	for _, t := range st.Schema.Tables {
		t.Width = nvgeom.MeasureLayout(t, m).Width
	}
}

func layerCount(layers map[string]int) int {
	n := 0
	for _, l := range layers {
		if l+1 > n {
			n = l + 1
		}
	}
	return n
}
