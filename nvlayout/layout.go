// Package nvlayout positions tables: a layered placement for fresh diagrams
// and an iterative push-apart pass that removes overlaps.
package nvlayout

import (
	"math"

	"oss.terrastruct.com/navani/lib/go2"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvschema"
)

type Options struct {
	// ColumnSpacing is the horizontal distance between layers.
	ColumnSpacing float64
	// RowSpacing is the vertical gap between tables of one layer.
	RowSpacing float64
	// Padding is the margin kept around every table by ResolveOverlaps.
	Padding float64
	// MaxPasses bounds ResolveOverlaps.
	MaxPasses int
}

var DefaultOptions = Options{
	ColumnSpacing: 500,
	RowSpacing:    80,
	Padding:       35,
	MaxPasses:     60,
}

func opts(o *Options) *Options {
	if o == nil {
		return &DefaultOptions
	}
	return o
}

// NeedsLayout reports whether tables have never been positioned.
func NeedsLayout(tables []*nvschema.Table) bool {
	if len(tables) == 0 {
		return false
	}
	for _, t := range tables {
		if t.X != 0 || t.Y != 0 {
			return false
		}
	}
	return true
}

// Layers assigns every table a layer. Tables that reference nothing are in
// layer 0 and every other table sits one layer right of the deepest table it
// references. Tables caught in reference cycles take the layer of the first
// placed table that reaches them.
func Layers(tables []*nvschema.Table, rels []*nvschema.Relationship) map[string]int {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	// refsOut[a] holds the tables a references, refsIn[b] the tables
	// referencing b. Both keep first-seen order.
	refsOut := make(map[string][]string)
	refsIn := make(map[string][]string)
	for _, r := range rels {
		if r.IsSelf() || !known[r.FromTable] || !known[r.ToTable] {
			continue
		}
		if !go2.Contains(refsOut[r.FromTable], r.ToTable) {
			refsOut[r.FromTable] = append(refsOut[r.FromTable], r.ToTable)
			refsIn[r.ToTable] = append(refsIn[r.ToTable], r.FromTable)
		}
	}

	layers := make(map[string]int, len(tables))
	var placed []string
	remaining := make(map[string]int, len(tables))

	var queue []string
	for _, t := range tables {
		remaining[t.Name] = len(refsOut[t.Name])
		if remaining[t.Name] == 0 {
			layers[t.Name] = 0
			queue = append(queue, t.Name)
		}
	}
	if len(queue) == 0 && len(tables) > 0 {
		layers[tables[0].Name] = 0
		placed = append(placed, tables[0].Name)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		placed = append(placed, n)
		for _, child := range refsIn[n] {
			if l := layers[n] + 1; l > layers[child] {
				layers[child] = l
			}
			remaining[child]--
			if remaining[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	isPlaced := make(map[string]bool, len(placed))
	for _, n := range placed {
		isPlaced[n] = true
	}
	queue = append(queue, placed...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, child := range refsIn[n] {
			if isPlaced[child] {
				continue
			}
			isPlaced[child] = true
			layers[child] = layers[n] + 1
			queue = append(queue, child)
		}
	}

	for _, t := range tables {
		if !isPlaced[t.Name] {
			layers[t.Name] = 0
		}
	}
	return layers
}

// AutoLayout places each layer in its own column, tables stacked in table
// order and centered around y=0.
func AutoLayout(tables []*nvschema.Table, rels []*nvschema.Relationship, o *Options) {
	o = opts(o)
	if len(tables) == 0 {
		return
	}
	layers := Layers(tables, rels)

	maxLayer := 0
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}
	groups := make([][]*nvschema.Table, maxLayer+1)
	for _, t := range tables {
		l := layers[t.Name]
		groups[l] = append(groups[l], t)
	}

	for l, group := range groups {
		if len(group) == 0 {
			continue
		}
		total := float64(len(group)-1) * o.RowSpacing
		for _, t := range group {
			_, h := nvgeom.Dimensions(t)
			total += h
		}

		x := float64(l) * o.ColumnSpacing
		y := -total / 2
		for _, t := range group {
			_, h := nvgeom.Dimensions(t)
			t.X = x
			t.Y = y
			y += h + o.RowSpacing
		}
	}
}

// ResolveOverlaps pushes apart every pair of tables whose padded boxes
// overlap, along the axis of least overlap, until a pass moves nothing or
// MaxPasses is reached. It returns the number of passes that moved tables.
//
// Residual overlap is possible when MaxPasses runs out.
func ResolveOverlaps(tables []*nvschema.Table, o *Options) int {
	o = opts(o)
	passes := 0
	for iter := 0; iter < o.MaxPasses; iter++ {
		moved := false
		for i := 0; i < len(tables); i++ {
			for j := i + 1; j < len(tables); j++ {
				if pushApart(tables[i], tables[j], o.Padding) {
					moved = true
				}
			}
		}
		if !moved {
			break
		}
		passes++
	}
	return passes
}

func pushApart(a, b *nvschema.Table, pad float64) bool {
	ra := nvgeom.Box(a).Pad(pad)
	rb := nvgeom.Box(b).Pad(pad)
	if !ra.Intersects(rb) {
		return false
	}
	// Penetration depth from either side, which for nested boxes is the
	// distance needed to clear the nearer edge.
	overlapX := math.Min(ra.Right()-rb.TopLeft.X, rb.Right()-ra.TopLeft.X)
	overlapY := math.Min(ra.Bottom()-rb.TopLeft.Y, rb.Bottom()-ra.TopLeft.Y)

	if overlapX < overlapY {
		push := overlapX/2 + 1
		if a.X <= b.X {
			a.X -= push
			b.X += push
		} else {
			a.X += push
			b.X -= push
		}
	} else {
		push := overlapY/2 + 1
		if a.Y <= b.Y {
			a.Y -= push
			b.Y += push
		} else {
			a.Y += push
			b.Y -= push
		}
	}
	return true
}
